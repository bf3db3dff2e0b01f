package update

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/model"
)

func (m Model) restoreCmd() tea.Cmd {
	if m.session == nil {
		return nil
	}
	sess := m.session
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		st, err := sess.Restore(ctx)
		return SessionRestoredMsg{State: st, Err: err}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		st, err := sess.Login(ctx, email, password)
		return LoginResultMsg{State: st, Err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		return LoggedOutMsg{Err: sess.Logout(ctx)}
	}
}

func (m Model) fetchTasksCmd() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		tasks, err := b.ListTasks(ctx)
		return TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

func (m Model) fetchTagsCmd() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		tags, err := b.ListTags(ctx)
		return TagsLoadedMsg{Tags: tags, Err: err}
	}
}

func (m Model) saveTaskCmd(id int64, in model.TaskInput) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		if id == 0 {
			task, err := b.CreateTask(ctx, in)
			return TaskSavedMsg{Task: task, Created: true, Err: err}
		}
		task, err := b.UpdateTask(ctx, id, in)
		return TaskSavedMsg{Task: task, Err: err}
	}
}

func (m Model) toggleTaskCmd(task model.Task) tea.Cmd {
	return m.setCompletedCmd(task, task.Status != model.StatusCompleted)
}

func (m Model) setCompletedCmd(task model.Task, completed bool) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		out, err := b.SetTaskCompleted(ctx, task, completed)
		return TaskSavedMsg{Task: out, Toggled: true, Err: err}
	}
}

func (m Model) deleteTaskCmd(id int64) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		return TaskDeletedMsg{ID: id, Err: b.DeleteTask(ctx, id)}
	}
}

func (m Model) saveTagCmd(id int64, in model.TagInput) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		if id == 0 {
			tag, err := b.CreateTag(ctx, in)
			return TagSavedMsg{Tag: tag, Created: true, Err: err}
		}
		tag, err := b.UpdateTag(ctx, id, in)
		return TagSavedMsg{Tag: tag, Err: err}
	}
}

func (m Model) deleteTagCmd(id int64) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		return TagDeletedMsg{ID: id, Err: b.DeleteTag(ctx, id)}
	}
}

func (m Model) saveSettingCmd(key, value string) tea.Cmd {
	if m.settings == nil {
		return nil
	}
	s := m.settings
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		if err := s.SetSetting(ctx, key, value); err != nil {
			log.Printf("update: save setting %s: %v", key, err)
		}
		return nil
	}
}
