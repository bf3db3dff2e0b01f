package update

import (
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Confirm != nil {
		return m.handleConfirmKey(msg)
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}

	switch m.Screen {
	case ScreenLogin:
		return m.handleLoginKey(msg)
	case ScreenTaskForm:
		return m.handleTaskFormKey(msg)
	case ScreenTagForm:
		return m.handleTagFormKey(msg)
	}

	switch keyStr {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Tasks:
		m.Screen = ScreenTasks
		return m, nil
	case m.Keys.Tags:
		m.Screen = ScreenTags
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case "r":
		return m.refetchAll()
	case "L":
		if m.session == nil {
			return m, nil
		}
		m.Status = StatusBar{Text: "signing out..."}
		return m, m.logoutCmd()
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.Screen {
	case ScreenTasks:
		return m.handleTasksKey(msg)
	case ScreenTags:
		return m.handleTagsKey(msg)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	c := *m.Confirm
	m.Confirm = nil
	switch msg.String() {
	case "y", "Y":
		switch c.Kind {
		case ConfirmDeleteTask:
			m.Status = StatusBar{Text: "deleting task..."}
			return m, m.deleteTaskCmd(c.ID)
		case ConfirmDeleteTag:
			m.Status = StatusBar{Text: "deleting tag..."}
			return m, m.deleteTagCmd(c.ID)
		}
	}
	m.Status = StatusBar{Text: "delete cancelled"}
	return m, nil
}

// editInput applies a key press to a single-line input. Typed text is
// appended at the end, matching how the palette reads keys.
func editInput(in textinput.Model, msg tea.KeyMsg) textinput.Model {
	if text := keyText(msg); text != "" {
		in.SetValue(in.Value() + text)
		in.CursorEnd()
		return in
	}
	if msg.Type == tea.KeyBackspace {
		v := in.Value()
		if v != "" {
			_, size := utf8.DecodeLastRuneInString(v)
			in.SetValue(v[:len(v)-size])
		}
		return in
	}
	in, _ = in.Update(msg)
	return in
}
