package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/api"
	"github.com/sandeepkv93/tasktag/internal/color"
	"github.com/sandeepkv93/tasktag/internal/forms"
	"github.com/sandeepkv93/tasktag/internal/model"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
	"github.com/sandeepkv93/tasktag/internal/views"
)

func (m Model) handleTagsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	tags := m.visibleTags()
	switch msg.String() {
	case "j", "down":
		m.TagCursor = clamp(m.TagCursor+1, len(tags))
	case "k", "up":
		m.TagCursor = clamp(m.TagCursor-1, len(tags))
	case "n":
		return m.openTagForm(nil), nil
	case "e", "enter":
		tag, ok := m.selectedTag()
		if !ok {
			return m, nil
		}
		return m.openTagForm(&tag), nil
	case "x", "delete":
		tag, ok := m.selectedTag()
		if !ok {
			return m, nil
		}
		n := tasklist.CountTasksForTag(m.Tasks, tag.ID)
		prompt := fmt.Sprintf("Delete tag %q?", tag.Name)
		if n > 0 {
			prompt = fmt.Sprintf("Delete tag %q? It is used by %d task(s).", tag.Name, n)
		}
		m.Confirm = &ConfirmState{Kind: ConfirmDeleteTag, ID: tag.ID, Prompt: prompt}
	case "esc":
		if m.TagSearch != "" {
			return m, m.setTagSearch("")
		}
	}
	return m, nil
}

func (m Model) openTagForm(tag *model.Tag) Model {
	m.TagForm = TagFormState{}
	m.tagNameInput.SetValue("")
	m.tagColorInput.SetValue(color.Fallback)
	if tag != nil {
		m.TagForm.EditingID = tag.ID
		m.tagNameInput.SetValue(tag.Name)
		m.tagColorInput.SetValue(color.NormalizeString(tag.Color))
	}
	m.Screen = ScreenTagForm
	m.focusTagField()
	return m
}

func (m *Model) focusTagField() {
	if m.TagForm.Focus == tagFieldName {
		m.tagNameInput.Focus()
		m.tagColorInput.Blur()
		return
	}
	m.tagNameInput.Blur()
	m.tagColorInput.Focus()
}

func (m Model) handleTagFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.TagForm.Submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.TagForm = TagFormState{}
		m.Screen = ScreenTags
		m.Status = StatusBar{Text: "edit cancelled"}
		return m, nil
	case "enter", "ctrl+s":
		return m.submitTagForm()
	case "tab", "shift+tab", "up", "down":
		if m.TagForm.Focus == tagFieldColor {
			m.canonicalizeTagColor()
		}
		m.TagForm.Focus = (m.TagForm.Focus + 1) % tagFieldCount
		m.focusTagField()
		return m, nil
	}

	if m.TagForm.Focus == tagFieldName {
		m.tagNameInput = editInput(m.tagNameInput, msg)
		return m, nil
	}
	// Keys that would turn a typeable color into an impossible one are dropped.
	next := editInput(m.tagColorInput, msg)
	if color.IsValidInput(m.tagColorInput.Value()) && !color.IsValidInput(next.Value()) {
		return m, nil
	}
	m.tagColorInput = next
	return m, nil
}

// canonicalizeTagColor rewrites a non-empty color that is not yet six hex
// digits into its submitted form.
func (m *Model) canonicalizeTagColor() {
	v := m.tagColorInput.Value()
	if v == "" || color.IsCanonical(v) {
		return
	}
	m.tagColorInput.SetValue(color.Submission(v))
	m.tagColorInput.CursorEnd()
}

func (m Model) submitTagForm() (Model, tea.Cmd) {
	form := forms.TagForm{Name: m.tagNameInput.Value(), Color: m.tagColorInput.Value()}
	m.TagForm.Errors = form.Validate()
	m.TagForm.Error = ""
	if len(m.TagForm.Errors) > 0 || m.backend == nil {
		return m, nil
	}
	m.TagForm.Submitting = true
	return m, m.withSpinner(m.saveTagCmd(m.TagForm.EditingID, form.Payload()))
}

func (m Model) onTagSaved(msg TagSavedMsg) (Model, tea.Cmd) {
	m.TagForm.Submitting = false
	if msg.Err != nil {
		if isUnauthorized(msg.Err) {
			return m.sessionExpired()
		}
		fallback := "Failed to update tag"
		if msg.Created {
			fallback = "Failed to create tag"
		}
		if m.Screen == ScreenTagForm {
			m.TagForm.Error = api.MessageOr(msg.Err, fallback)
			m.TagForm.Errors = fieldErrorsFrom(msg.Err, "name", "color")
		}
		return m.mutationFailed(msg.Err, fallback)
	}
	text := "Tag updated successfully"
	if msg.Created {
		text = "Tag created successfully"
	}
	m.Status = StatusBar{Text: text}
	m.notify("Tag", text, "info")
	if m.Screen == ScreenTagForm {
		m.TagForm = TagFormState{}
		m.Screen = ScreenTags
	}
	return m.refetchAll()
}

func (m Model) renderTagsView() string {
	tags := m.visibleTags()
	counts := tasklist.TagCounts(m.Tasks, tags)
	data := views.TagListData{Search: m.TagSearch, Error: m.TagsErr}
	if m.LoadingTags && len(m.Tags) == 0 {
		data.Loading = m.spinner.View()
	}
	for i, t := range tags {
		data.Rows = append(data.Rows, views.TagRowData{Tag: t, Count: counts[t.ID], Selected: i == m.TagCursor})
	}
	return views.RenderTagList(data)
}

func (m Model) renderTagFormView() string {
	title := "new tag"
	if m.TagForm.EditingID != 0 {
		title = "edit tag"
	}
	f := m.TagForm
	data := views.FormData{
		Title: title,
		Fields: []views.FieldView{
			{Label: "name", View: m.tagNameInput.View(), Error: f.Errors["name"], Focused: f.Focus == tagFieldName},
			{Label: "color", View: m.tagColorInput.View(), Error: f.Errors["color"], Focused: f.Focus == tagFieldColor},
		},
		Extra: "preview: " + views.ColorSwatch(m.tagColorInput.Value()) + "  " +
			views.TagBadge(model.Tag{Name: nonEmpty(m.tagNameInput.Value(), "tag"), Color: m.tagColorInput.Value()}),
		Error: f.Error,
		Hint:  "tab next field | enter save | esc cancel",
	}
	if f.Submitting {
		data.Submitted = m.spinner.View() + " saving..."
	}
	return views.RenderForm(data)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
