package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/tasktag/internal/commands"
	"github.com/sandeepkv93/tasktag/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	for _, t := range commands.Types {
		plain = append(plain, "- "+t.Usage())
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.Screen),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Tasks, Action: "switch to Tasks"},
		{Key: m.Keys.Tags, Action: "switch to Tags"},
		{Key: "/", Action: "open command palette"},
		{Key: "r", Action: "refresh"},
		{Key: "L", Action: "sign out"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.Screen {
	case ScreenTasks:
		return []KeyBinding{
			{Key: "tab", Action: "next status filter"},
			{Key: "j/k", Action: "move selection"},
			{Key: "space", Action: "toggle completed"},
			{Key: "n", Action: "new task"},
			{Key: "e/enter", Action: "edit task"},
			{Key: "x", Action: "delete task"},
		}
	case ScreenTags:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "n", Action: "new tag"},
			{Key: "e/enter", Action: "edit tag"},
			{Key: "x", Action: "delete tag"},
			{Key: "esc", Action: "clear search"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
