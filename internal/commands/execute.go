package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Filter  func(FilterArgs) (Result, error)
	Done    func(TaskRef) (Result, error)
	Undo    func(TaskRef) (Result, error)
	Delete  func(TaskRef) (Result, error)
	Tag     func(TagArgs) (Result, error)
	Search  func(SearchArgs) (Result, error)
	Refresh func() (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Filter(*cmd.Filter)
	case TypeDone, TypeUndo, TypeDelete:
		h := map[Type]func(TaskRef) (Result, error){
			TypeDone:   handlers.Done,
			TypeUndo:   handlers.Undo,
			TypeDelete: handlers.Delete,
		}[cmd.Type]
		if h == nil {
			return Result{}, missing(cmd.Type)
		}
		return h(*cmd.Task)
	case TypeTag:
		if handlers.Tag == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Tag(*cmd.Tag)
	case TypeSearch:
		if handlers.Search == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Search(*cmd.Search)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
