package update

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/api"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
	"github.com/sandeepkv93/tasktag/internal/views"
)

func (m Model) handleTasksKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	tasks := m.visibleTasks()
	switch msg.String() {
	case "tab":
		cmd := m.setFilter(m.Filter.Next())
		m.Status = StatusBar{Text: "filter: " + m.Filter.Label()}
		return m, cmd
	case "j", "down":
		m.TaskCursor = clamp(m.TaskCursor+1, len(tasks))
	case "k", "up":
		m.TaskCursor = clamp(m.TaskCursor-1, len(tasks))
	case "g", "home":
		m.TaskCursor = 0
	case "G", "end":
		m.TaskCursor = clamp(len(tasks)-1, len(tasks))
	case " ":
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		return m, m.toggleTaskCmd(task)
	case "n":
		return m.openTaskForm(nil), nil
	case "e", "enter":
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		return m.openTaskForm(&task), nil
	case "x", "delete":
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.Confirm = &ConfirmState{
			Kind:   ConfirmDeleteTask,
			ID:     task.ID,
			Prompt: fmt.Sprintf("Delete task %q?", task.Title),
		}
	}
	return m, nil
}

func (m Model) onTaskSaved(msg TaskSavedMsg) (Model, tea.Cmd) {
	m.TaskForm.Submitting = false
	if msg.Err != nil {
		if isUnauthorized(msg.Err) {
			return m.sessionExpired()
		}
		fallback := "Failed to update task"
		switch {
		case msg.Toggled:
			fallback = "Failed to update task status"
		case msg.Created:
			fallback = "Failed to create task"
		}
		if m.Screen == ScreenTaskForm && !msg.Toggled {
			m.TaskForm.Error = api.MessageOr(msg.Err, fallback)
			m.TaskForm.Errors = fieldErrorsFrom(msg.Err, "title", "description", "status", "priority", "due_date", "tag_ids")
		}
		return m.mutationFailed(msg.Err, fallback)
	}

	text := "Task updated successfully"
	switch {
	case msg.Toggled:
		text = fmt.Sprintf("Task marked as %s", msg.Task.Status.Label())
	case msg.Created:
		text = "Task created successfully"
	}
	m.Status = StatusBar{Text: text}
	m.notify("Task", text, "info")
	if m.Screen == ScreenTaskForm {
		m.TaskForm = TaskFormState{}
		m.Screen = ScreenTasks
	}
	return m.refetchTasks()
}

// fieldErrorsFrom pulls the server's per-field messages out of err.
func fieldErrorsFrom(err error, fields ...string) map[string]string {
	out := map[string]string{}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return out
	}
	for _, f := range fields {
		if msg := apiErr.FieldError(f); msg != "" {
			out[f] = msg
		}
	}
	return out
}

// maxRevealRows caps the fan-in; rows past it appear with the last one.
const maxRevealRows = 12

// startReveal schedules one tick per row so the first page of tasks fans in.
func (m *Model) startReveal() tea.Cmd {
	m.revealGen++
	n := min(len(m.visibleTasks()), maxRevealRows)
	if n < 2 {
		m.Revealed = 0
		return nil
	}
	m.Revealed = 1
	gen := m.revealGen
	cmds := make([]tea.Cmd, 0, n-1)
	for i := 1; i < n; i++ {
		count := i + 1
		cmds = append(cmds, tea.Tick(tasklist.StaggerDelay(i), func(time.Time) tea.Msg {
			return RowRevealedMsg{Gen: gen, Count: count}
		}))
	}
	return tea.Batch(cmds...)
}

func (m Model) renderTasksView() string {
	data := views.TaskListData{Filter: m.Filter, Error: m.TasksErr}
	if m.LoadingTasks && len(m.Tasks) == 0 {
		data.Loading = m.spinner.View()
	}
	for i, t := range m.visibleTasks() {
		if m.Revealed > 0 && i >= m.Revealed {
			break
		}
		data.Rows = append(data.Rows, views.TaskRowData{Task: t, Selected: i == m.TaskCursor})
	}
	return views.RenderTaskList(data)
}

func (m Model) renderTaskDetail() string {
	if _, ok := m.selectedTask(); !ok {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	return m.detail.View()
}

// syncDetail re-renders the detail pane when the selected task changes.
// The last rendered key is cached.
func (m *Model) syncDetail() {
	task, ok := m.selectedTask()
	if !ok || m.Screen != ScreenTasks {
		return
	}
	due := ""
	if task.DueDate != nil {
		due = task.DueDate.String()
	}
	key := fmt.Sprintf("%d|%s|%s|%s|%s|%s|%v", task.ID, task.Status, task.Priority, task.Title, task.DescriptionText(), due, task.Tags)
	if key == m.detailFor {
		return
	}
	m.detailFor = key
	m.detail.SetContent(views.RenderTaskDetail(views.TaskDetailData{
		Task:          &task,
		DescriptionMD: views.RenderMarkdown(task.DescriptionText(), m.theme),
	}))
	m.detail.GotoTop()
}
