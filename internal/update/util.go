package update

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/api"
	"github.com/sandeepkv93/tasktag/internal/model"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
)

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func isUnauthorized(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}

// keyText is the text a key press would type, or "" for control keys.
func keyText(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyRunes:
		return string(msg.Runes)
	case tea.KeySpace:
		return " "
	default:
		return ""
	}
}

func (m Model) visibleTasks() []model.Task {
	return tasklist.Project(m.Tasks, m.Filter)
}

func (m Model) visibleTags() []model.Tag {
	return tasklist.SearchTags(m.Tags, m.TagSearch)
}

func (m Model) selectedTask() (model.Task, bool) {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	return tasks[clamp(m.TaskCursor, len(tasks))], true
}

func (m Model) selectedTag() (model.Tag, bool) {
	tags := m.visibleTags()
	if len(tags) == 0 {
		return model.Tag{}, false
	}
	return tags[clamp(m.TagCursor, len(tags))], true
}

func findTask(tasks []model.Task, id int64) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func findTag(tags []model.Tag, id int64) (model.Tag, bool) {
	for _, t := range tags {
		if t.ID == id {
			return t, true
		}
	}
	return model.Tag{}, false
}
