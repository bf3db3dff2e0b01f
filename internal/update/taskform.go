package update

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/forms"
	"github.com/sandeepkv93/tasktag/internal/model"
	"github.com/sandeepkv93/tasktag/internal/views"
)

// openTaskForm switches to the task form, seeded from task or empty for a
// new one.
func (m Model) openTaskForm(task *model.Task) Model {
	f := forms.NewTaskForm(task)
	m.TaskForm = TaskFormState{
		Status:   model.Status(f.Status),
		Priority: model.Priority(f.Priority),
		Tags:     f.Tags,
	}
	if task != nil {
		m.TaskForm.EditingID = task.ID
	}
	m.titleInput.SetValue(f.Title)
	m.titleInput.CursorEnd()
	m.descArea.SetValue(f.Description)
	m.dueInput.SetValue(f.DueDate)
	m.Screen = ScreenTaskForm
	m.focusTaskField()
	return m
}

func (m *Model) focusTaskField() {
	m.titleInput.Blur()
	m.descArea.Blur()
	m.dueInput.Blur()
	switch m.TaskForm.Focus {
	case taskFieldTitle:
		m.titleInput.Focus()
	case taskFieldDescription:
		m.descArea.Focus()
	case taskFieldDue:
		m.dueInput.Focus()
	}
}

func (m Model) taskFormValues() forms.TaskForm {
	return forms.TaskForm{
		Title:       m.titleInput.Value(),
		Description: m.descArea.Value(),
		Status:      string(m.TaskForm.Status),
		Priority:    string(m.TaskForm.Priority),
		DueDate:     m.dueInput.Value(),
		Tags:        m.TaskForm.Tags,
	}
}

func (m Model) handleTaskFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.TaskForm.Submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.TaskForm = TaskFormState{}
		m.Screen = ScreenTasks
		m.Status = StatusBar{Text: "edit cancelled"}
		return m, nil
	case "ctrl+s":
		return m.submitTaskForm()
	case "tab":
		m.TaskForm.Focus = (m.TaskForm.Focus + 1) % taskFieldCount
		m.focusTaskField()
		return m, nil
	case "shift+tab":
		m.TaskForm.Focus = (m.TaskForm.Focus + taskFieldCount - 1) % taskFieldCount
		m.focusTaskField()
		return m, nil
	}

	switch m.TaskForm.Focus {
	case taskFieldTitle:
		if msg.Type == tea.KeyEnter {
			return m.submitTaskForm()
		}
		m.titleInput = editInput(m.titleInput, msg)
	case taskFieldDescription:
		if text := keyText(msg); text != "" {
			m.descArea.InsertString(text)
		} else {
			m.descArea, _ = m.descArea.Update(msg)
		}
	case taskFieldStatus:
		m.TaskForm.Status = cycle(model.Statuses, m.TaskForm.Status, msg)
	case taskFieldPriority:
		m.TaskForm.Priority = cycle(model.Priorities, m.TaskForm.Priority, msg)
	case taskFieldDue:
		if msg.Type == tea.KeyEnter {
			return m.submitTaskForm()
		}
		m.dueInput = editInput(m.dueInput, msg)
	case taskFieldTags:
		return m.handleTagPickerKey(msg), nil
	}
	return m, nil
}

func (m Model) handleTagPickerKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		m.TaskForm.TagCursor = clamp(m.TaskForm.TagCursor+1, len(m.Tags))
	case "k", "up":
		m.TaskForm.TagCursor = clamp(m.TaskForm.TagCursor-1, len(m.Tags))
	case " ", "enter":
		if len(m.Tags) == 0 {
			return m
		}
		tag := m.Tags[clamp(m.TaskForm.TagCursor, len(m.Tags))]
		form := m.taskFormValues()
		form.ToggleTag(tag)
		m.TaskForm.Tags = form.Tags
	}
	return m
}

// cycle moves through options with left/right (or h/l), wrapping.
func cycle[T comparable](options []T, current T, msg tea.KeyMsg) T {
	i := slices.Index(options, current)
	switch msg.String() {
	case "right", "l", " ":
		return options[(i+1)%len(options)]
	case "left", "h":
		if i <= 0 {
			return options[len(options)-1]
		}
		return options[i-1]
	}
	return current
}

func (m Model) submitTaskForm() (Model, tea.Cmd) {
	values := m.taskFormValues()
	m.TaskForm.Errors = values.Validate()
	m.TaskForm.Error = ""
	if len(m.TaskForm.Errors) > 0 {
		return m, nil
	}
	task, err := values.Task()
	if err != nil {
		m.TaskForm.Error = err.Error()
		return m, nil
	}
	if m.backend == nil {
		return m, nil
	}
	m.TaskForm.Submitting = true
	return m, m.withSpinner(m.saveTaskCmd(m.TaskForm.EditingID, task.Input()))
}

func (m Model) renderTaskFormView() string {
	title := "new task"
	if m.TaskForm.EditingID != 0 {
		title = "edit task"
	}
	f := m.TaskForm
	data := views.FormData{
		Title: title,
		Fields: []views.FieldView{
			{Label: "title", View: m.titleInput.View(), Error: f.Errors["title"], Focused: f.Focus == taskFieldTitle},
			{Label: "description", View: "\n" + m.descArea.View(), Error: f.Errors["description"], Focused: f.Focus == taskFieldDescription},
			{Label: "status", View: "< " + views.StatusBadge(f.Status) + " >", Error: f.Errors["status"], Focused: f.Focus == taskFieldStatus},
			{Label: "priority", View: "< " + f.Priority.Label() + " >", Error: f.Errors["priority"], Focused: f.Focus == taskFieldPriority},
			{Label: "due date", View: m.dueInput.View(), Error: f.Errors["due_date"], Focused: f.Focus == taskFieldDue},
			{Label: "tags", View: "", Error: f.Errors["tag_ids"], Focused: f.Focus == taskFieldTags},
		},
		Extra: views.RenderTagPicker(m.Tags, f.Tags, f.TagCursor, f.Focus == taskFieldTags),
		Error: f.Error,
		Hint:  "tab next field | h/l change option | space toggle tag | ctrl+s save | esc cancel",
	}
	if f.Submitting {
		data.Submitted = m.spinner.View() + " saving..."
	}
	return views.RenderForm(data)
}

// renderTaskPreview shows the description as it will render.
func (m Model) renderTaskPreview() string {
	md := views.RenderMarkdown(m.descArea.Value(), m.theme)
	if md == "" {
		return ""
	}
	return "preview:\n" + md
}
