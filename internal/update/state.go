package update

import (
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/storage"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
)

// loadViewStateCmd reads the last filter and tag search. Read failures
// fall back to the defaults.
func (m Model) loadViewStateCmd() tea.Cmd {
	if m.settings == nil {
		return nil
	}
	s := m.settings
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		out := ViewStateLoadedMsg{Filter: tasklist.FilterAll}
		if raw, err := s.GetSetting(ctx, storage.SettingTaskFilter); err != nil {
			log.Printf("update: load task filter: %v", err)
		} else {
			out.Filter = tasklist.ParseFilter(raw)
		}
		if raw, err := s.GetSetting(ctx, storage.SettingTagSearch); err != nil {
			log.Printf("update: load tag search: %v", err)
		} else {
			out.TagSearch = strings.TrimSpace(raw)
		}
		return out
	}
}

func (m *Model) setFilter(f tasklist.Filter) tea.Cmd {
	m.Filter = tasklist.ParseFilter(string(f))
	m.TaskCursor = 0
	return m.saveSettingCmd(storage.SettingTaskFilter, string(m.Filter))
}

func (m *Model) setTagSearch(q string) tea.Cmd {
	m.TagSearch = strings.TrimSpace(q)
	m.TagCursor = 0
	return m.saveSettingCmd(storage.SettingTagSearch, m.TagSearch)
}
