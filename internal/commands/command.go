package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/tasktag/internal/color"
	"github.com/sandeepkv93/tasktag/internal/model"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeFilter  Type = "filter"
	TypeDone    Type = "done"
	TypeUndo    Type = "undo"
	TypeDelete  Type = "delete"
	TypeTag     Type = "tag"
	TypeSearch  Type = "search"
	TypeRefresh Type = "refresh"
)

// Types lists every palette command, in the order help shows them.
var Types = []Type{TypeAdd, TypeFilter, TypeDone, TypeUndo, TypeDelete, TypeTag, TypeSearch, TypeRefresh}

// Usage is a one-line synopsis of t.
func (t Type) Usage() string {
	switch t {
	case TypeAdd:
		return "/add <title> [p:low|medium|high] [due:YYYY-MM-DD]"
	case TypeFilter:
		return "/filter <all|pending|in_progress|completed>"
	case TypeDone:
		return "/done <id>"
	case TypeUndo:
		return "/undo <id>"
	case TypeDelete:
		return "/delete <id>"
	case TypeTag:
		return "/tag <name> [#color]"
	case TypeSearch:
		return "/search <query>"
	case TypeRefresh:
		return "/refresh"
	default:
		return ""
	}
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Title    string
	Priority model.Priority
	DueDate  *model.Date
}

type FilterArgs struct {
	Filter tasklist.Filter
}

// TaskRef names one task by id. Done, Undo and Delete share it.
type TaskRef struct {
	ID int64
}

type TagArgs struct {
	Name string
	// Color is the raw input; empty means the default color.
	Color string
}

type SearchArgs struct {
	Query string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Filter *FilterArgs
	Task   *TaskRef
	Tag    *TagArgs
	Search *SearchArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeDone, TypeUndo, TypeDelete:
		return parseTaskRef(input, Type(head), args)
	case TypeTag:
		return parseTag(input, args)
	case TypeSearch:
		// An empty query clears the search.
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Query: strings.Join(args, " ")}}, nil
	case TypeRefresh:
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{Priority: model.PriorityMedium}
	var words []string
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "p:"):
			p := model.Priority(strings.TrimPrefix(lower, "p:"))
			if !p.IsValid() {
				return Command{}, invalid("unknown priority %q", arg[2:])
			}
			out.Priority = p
		case strings.HasPrefix(lower, "due:"):
			d, err := model.ParseDate(arg[4:])
			if err != nil {
				return Command{}, invalid("due date must be YYYY-MM-DD")
			}
			out.DueDate = &d
		default:
			words = append(words, arg)
		}
	}
	out.Title = strings.TrimSpace(strings.Join(words, " "))
	if out.Title == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("filter requires one of all, pending, in_progress, completed")
	}
	f := tasklist.Filter(strings.ToLower(args[0]))
	switch f {
	case tasklist.FilterAll, tasklist.FilterPending, tasklist.FilterInProgress, tasklist.FilterCompleted:
	default:
		return Command{}, invalid("unknown filter %q", args[0])
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Filter: f}}, nil
}

func parseTaskRef(raw string, t Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires a task id", t)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return Command{}, invalid("%q is not a task id", args[0])
	}
	return Command{Type: t, Raw: raw, Task: &TaskRef{ID: id}}, nil
}

func parseTag(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("tag requires a name")
	}
	out := TagArgs{Name: strings.Join(args, " ")}
	if len(args) > 1 {
		last := args[len(args)-1]
		if color.IsValidInput(last) && strings.HasPrefix(last, "#") {
			out.Name = strings.Join(args[:len(args)-1], " ")
			out.Color = last
		}
	}
	if err := (model.Tag{Name: out.Name}).Validate(); err != nil {
		return Command{}, invalid("tag name must be at most %d characters", model.MaxTagNameLength)
	}
	return Command{Type: TypeTag, Raw: raw, Tag: &out}, nil
}
