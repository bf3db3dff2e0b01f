package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/commands"
	"github.com/sandeepkv93/tasktag/internal/forms"
	"github.com/sandeepkv93/tasktag/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	m.commandInput = editInput(m.commandInput, msg)
	m.Palette.Input = m.commandInput.Value()
	return m, nil
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var out tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task := model.NewTask()
			task.Title = a.Title
			task.Priority = a.Priority
			task.DueDate = a.DueDate
			out = m.saveTaskCmd(0, task.Input())
			return commands.Result{Message: fmt.Sprintf("adding task: %s", a.Title)}, nil
		},
		Filter: func(f commands.FilterArgs) (commands.Result, error) {
			out = m.setFilter(f.Filter)
			m.Screen = ScreenTasks
			return commands.Result{Message: "filter: " + m.Filter.Label()}, nil
		},
		Done: func(r commands.TaskRef) (commands.Result, error) {
			return m.paletteSetCompleted(r.ID, true, &out)
		},
		Undo: func(r commands.TaskRef) (commands.Result, error) {
			return m.paletteSetCompleted(r.ID, false, &out)
		},
		Delete: func(r commands.TaskRef) (commands.Result, error) {
			task, ok := findTask(m.Tasks, r.ID)
			if !ok {
				return commands.Result{}, noTask(r.ID)
			}
			out = m.deleteTaskCmd(task.ID)
			return commands.Result{Message: fmt.Sprintf("deleting task #%d", task.ID)}, nil
		},
		Tag: func(a commands.TagArgs) (commands.Result, error) {
			form := forms.TagForm{Name: a.Name, Color: a.Color}
			if err := form.Validate().Err(); err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			payload := form.Payload()
			out = m.saveTagCmd(0, payload)
			return commands.Result{Message: fmt.Sprintf("adding tag %s %s", payload.Name, payload.Color)}, nil
		},
		Search: func(s commands.SearchArgs) (commands.Result, error) {
			out = m.setTagSearch(s.Query)
			m.Screen = ScreenTags
			if m.TagSearch == "" {
				return commands.Result{Message: "tag search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("searching tags: %s", m.TagSearch)}, nil
		},
		Refresh: func() (commands.Result, error) {
			return commands.Result{Message: "refreshing"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	if cmd.Type == commands.TypeRefresh {
		return m.refetchAll()
	}
	return m, out
}

func (m Model) paletteSetCompleted(id int64, completed bool, out *tea.Cmd) (commands.Result, error) {
	task, ok := findTask(m.Tasks, id)
	if !ok {
		return commands.Result{}, noTask(id)
	}
	*out = m.setCompletedCmd(task, completed)
	verb := "completing"
	if !completed {
		verb = "reopening"
	}
	return commands.Result{Message: fmt.Sprintf("%s task #%d", verb, id)}, nil
}

func noTask(id int64) error {
	return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task #%d", id)}
}
