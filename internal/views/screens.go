package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sandeepkv93/tasktag/internal/color"
	"github.com/sandeepkv93/tasktag/internal/model"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
)

var (
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("12"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	selectedStyle  = lipgloss.NewStyle().Bold(true)
	doneTitleStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	fieldErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

var statusColors = map[model.Status]string{
	model.StatusPending:    "11",
	model.StatusInProgress: "12",
	model.StatusCompleted:  "10",
}

var priorityMarks = map[model.Priority]string{
	model.PriorityLow:    "!",
	model.PriorityMedium: "!!",
	model.PriorityHigh:   "!!!",
}

type TabData struct {
	Filter tasklist.Filter
	Count  int
}

type TaskRowData struct {
	Task     model.Task
	Selected bool
}

type TagRowData struct {
	Tag      model.Tag
	Count    int
	Selected bool
}

type TaskListData struct {
	Rows    []TaskRowData
	Filter  tasklist.Filter
	Loading string
	Error   string
}

type TagListData struct {
	Rows    []TagRowData
	Search  string
	Loading string
	Error   string
}

type TaskDetailData struct {
	Task          *model.Task
	DescriptionMD string
}

type FieldView struct {
	Label   string
	View    string
	Error   string
	Focused bool
}

type FormData struct {
	Title     string
	Fields    []FieldView
	Extra     string
	Error     string
	Submitted string
	Hint      string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTabs(tabs []TabData, active tasklist.Filter) string {
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		label := fmt.Sprintf("%s (%d)", tab.Filter.Label(), tab.Count)
		if tab.Filter == active {
			parts = append(parts, activeTabStyle.Render("["+label+"]"))
			continue
		}
		parts = append(parts, tabStyle.Render(" "+label+" "))
	}
	return strings.Join(parts, " ")
}

func StatusBadge(s model.Status) string {
	c, ok := statusColors[s]
	if !ok {
		c = "8"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("[" + s.Label() + "]")
}

func PriorityIndicator(p model.Priority) string {
	mark, ok := priorityMarks[p]
	if !ok {
		return "   "
	}
	style := lipgloss.NewStyle()
	if p == model.PriorityHigh {
		style = style.Foreground(lipgloss.Color("9"))
	}
	return style.Render(fmt.Sprintf("%-3s", mark))
}

// TagBadge draws the tag name on its own color. A malformed color from the
// server falls back to the default.
func TagBadge(tag model.Tag) string {
	return badgeStyle(tag.Color).Render(tag.Name)
}

func badgeStyle(c string) lipgloss.Style {
	safe := color.Safe(c)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(safe)).
		Foreground(lipgloss.Color(color.ContrastText(safe))).
		Padding(0, 1)
}

func tagBadges(tags []model.Tag) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagBadge(t))
	}
	return strings.Join(out, " ")
}

// ColorSwatch previews what a color input will look like once saved.
func ColorSwatch(input string) string {
	safe := color.Safe(input)
	block := lipgloss.NewStyle().Background(lipgloss.Color(safe)).Render("      ")
	return fmt.Sprintf("%s %s", block, safe)
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	if data.Loading != "" {
		b.WriteString(data.Loading + " loading tasks...")
		return b.String()
	}
	if data.Error != "" {
		b.WriteString(fieldErrStyle.Render("error: " + data.Error))
		return b.String()
	}
	if len(data.Rows) == 0 {
		if data.Filter == tasklist.FilterAll || data.Filter == "" {
			b.WriteString(mutedStyle.Render("(no tasks yet, press n to add one)"))
		} else {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("(no %s tasks)", strings.ToLower(data.Filter.Label()))))
		}
		return b.String()
	}
	for _, row := range data.Rows {
		b.WriteString(renderTaskRow(row) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderTaskRow(row TaskRowData) string {
	t := row.Task
	cursor := " "
	if row.Selected {
		cursor = ">"
	}
	check := "[ ]"
	title := t.Title
	if t.Status == model.StatusCompleted {
		check = "[x]"
		title = doneTitleStyle.Render(title)
	} else if row.Selected {
		title = selectedStyle.Render(title)
	}
	line := fmt.Sprintf("%s %s #%d %s %s %s", cursor, check, t.ID, PriorityIndicator(t.Priority), title, StatusBadge(t.Status))
	if t.DueDate != nil {
		line += mutedStyle.Render(" due:" + t.DueDate.String())
	}
	if len(t.Tags) > 0 {
		line += " " + tagBadges(t.Tags)
	}
	return line
}

func RenderTaskDetail(data TaskDetailData) string {
	if data.Task == nil {
		return "details:\n(no selection)"
	}
	t := data.Task
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("id: %d\n", t.ID))
	b.WriteString(fmt.Sprintf("title: %s\n", t.Title))
	b.WriteString(fmt.Sprintf("status: %s\n", StatusBadge(t.Status)))
	b.WriteString(fmt.Sprintf("priority: %s\n", t.Priority.Label()))
	if t.DueDate != nil {
		b.WriteString(fmt.Sprintf("due: %s\n", t.DueDate.String()))
	}
	if len(t.Tags) > 0 {
		b.WriteString("tags: " + tagBadges(t.Tags) + "\n")
	}
	if data.DescriptionMD != "" {
		b.WriteString("\n" + data.DescriptionMD)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderTagList(data TagListData) string {
	var b strings.Builder
	b.WriteString("tags:\n")
	if data.Search != "" {
		b.WriteString(mutedStyle.Render("search: "+data.Search) + "\n")
	}
	if data.Loading != "" {
		b.WriteString(data.Loading + " loading tags...")
		return b.String()
	}
	if data.Error != "" {
		b.WriteString(fieldErrStyle.Render("error: " + data.Error))
		return b.String()
	}
	if len(data.Rows) == 0 {
		if data.Search != "" {
			b.WriteString(mutedStyle.Render("(no tags match)"))
		} else {
			b.WriteString(mutedStyle.Render("(no tags yet, press n to add one)"))
		}
		return b.String()
	}
	for _, row := range data.Rows {
		cursor := " "
		if row.Selected {
			cursor = ">"
		}
		noun := "tasks"
		if row.Count == 1 {
			noun = "task"
		}
		b.WriteString(fmt.Sprintf("%s %s %s %d %s\n", cursor, TagBadge(row.Tag), mutedStyle.Render(color.Safe(row.Tag.Color)), row.Count, noun))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderForm(data FormData) string {
	var b strings.Builder
	b.WriteString(data.Title + ":\n")
	for _, f := range data.Fields {
		marker := " "
		if f.Focused {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s: %s\n", marker, f.Label, f.View))
		if f.Error != "" {
			b.WriteString("    " + fieldErrStyle.Render(f.Error) + "\n")
		}
	}
	if data.Extra != "" {
		b.WriteString(data.Extra + "\n")
	}
	if data.Error != "" {
		b.WriteString(fieldErrStyle.Render("error: "+data.Error) + "\n")
	}
	if data.Submitted != "" {
		b.WriteString(data.Submitted + "\n")
	}
	if data.Hint != "" {
		b.WriteString(mutedStyle.Render(data.Hint))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderTagPicker lists tags for the task form; chosen ones are checked.
func RenderTagPicker(tags []model.Tag, chosen []model.Tag, cursor int, focused bool) string {
	if len(tags) == 0 {
		return mutedStyle.Render("(no tags)")
	}
	lines := make([]string, 0, len(tags))
	for i, tag := range tags {
		mark := "[ ]"
		if model.HasTag(chosen, tag.ID) {
			mark = "[x]"
		}
		pointer := " "
		if focused && i == cursor {
			pointer = ">"
		}
		lines = append(lines, fmt.Sprintf("   %s %s %s", pointer, mark, TagBadge(tag)))
	}
	return strings.Join(lines, "\n")
}

func RenderConfirm(prompt string) string {
	if prompt == "" {
		return ""
	}
	return promptStyle.Render(prompt + " [y/N]")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
