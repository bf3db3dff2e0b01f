package update

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/api"
	"github.com/sandeepkv93/tasktag/internal/auth"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
	"github.com/sandeepkv93/tasktag/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadViewStateCmd()}
	if m.session != nil {
		cmds = append(cmds, m.restoreCmd(), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncDetail()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = typed.Width, typed.Height
		m.detail.Width = max(typed.Width/2-8, 20)
		m.detail.Height = max(typed.Height-12, 6)
		m.detailFor = ""
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case SwitchScreenMsg:
		return m.switchScreen(typed.Screen)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case ViewStateLoadedMsg:
		m.Filter = typed.Filter
		m.TagSearch = typed.TagSearch
		return m, nil
	case SessionRestoredMsg:
		m.Restoring = false
		if typed.Err != nil {
			log.Printf("update: restore session: %v", typed.Err)
			m.Status = StatusBar{Text: "Could not restore session", IsError: true}
		}
		return m.applySession(typed.State)
	case LoginResultMsg:
		m.Login.Submitting = false
		if typed.Err != nil {
			m.Login.Error = api.MessageOr(typed.Err, "Login failed")
			m.passwordInput.SetValue("")
			return m, nil
		}
		m.Login = LoginState{}
		m.passwordInput.SetValue("")
		m.notify("Auth", "Signed in", "info")
		return m.applySession(typed.State)
	case LoggedOutMsg:
		if typed.Err != nil {
			log.Printf("update: logout: %v", typed.Err)
		}
		m.resetData()
		m.Screen = ScreenLogin
		m.Status = StatusBar{Text: "Signed out"}
		return m, nil
	case TasksLoadedMsg:
		m.LoadingTasks = false
		if typed.Err != nil {
			if isUnauthorized(typed.Err) {
				return m.sessionExpired()
			}
			log.Printf("update: load tasks: %v", typed.Err)
			m.TasksErr = "Failed to load tasks"
			return m, nil
		}
		m.TasksErr = ""
		first := len(m.Tasks) == 0
		m.Tasks = typed.Tasks
		m.TaskCursor = clamp(m.TaskCursor, len(m.visibleTasks()))
		if first {
			cmd := m.startReveal()
			return m, cmd
		}
		return m, nil
	case RowRevealedMsg:
		if typed.Gen == m.revealGen && m.Revealed != 0 {
			m.Revealed = typed.Count
			if m.Revealed >= min(len(m.visibleTasks()), maxRevealRows) {
				m.Revealed = 0
			}
		}
		return m, nil
	case TagsLoadedMsg:
		m.LoadingTags = false
		if typed.Err != nil {
			if isUnauthorized(typed.Err) {
				return m.sessionExpired()
			}
			log.Printf("update: load tags: %v", typed.Err)
			m.TagsErr = "Failed to load tags"
			return m, nil
		}
		m.TagsErr = ""
		m.Tags = typed.Tags
		m.TagCursor = clamp(m.TagCursor, len(m.visibleTags()))
		return m, nil
	case TaskSavedMsg:
		return m.onTaskSaved(typed)
	case TaskDeletedMsg:
		if typed.Err != nil {
			return m.mutationFailed(typed.Err, "Failed to delete task")
		}
		m.notify("Task", "Task deleted successfully", "info")
		m.Status = StatusBar{Text: "Task deleted successfully"}
		return m.refetchTasks()
	case TagSavedMsg:
		return m.onTagSaved(typed)
	case TagDeletedMsg:
		if typed.Err != nil {
			return m.mutationFailed(typed.Err, "Failed to delete tag")
		}
		m.notify("Tag", "Tag deleted successfully", "info")
		m.Status = StatusBar{Text: "Tag deleted successfully"}
		return m.refetchAll()
	}
	return m, nil
}

func (m Model) applySession(st auth.State) (Model, tea.Cmd) {
	if !st.Authenticated {
		m.resetData()
		m.Screen = ScreenLogin
		m.emailInput.Focus()
		return m, nil
	}
	m.User = st.User
	m.Screen = ScreenTasks
	return m.refetchAll()
}

func (m *Model) resetData() {
	m.User = nil
	m.Tasks = nil
	m.Tags = nil
	m.TaskCursor, m.TagCursor = 0, 0
	m.Confirm = nil
	m.LoadingTasks, m.LoadingTags = false, false
}

// busy reports whether anything is waiting on the network.
func (m Model) busy() bool {
	return m.Restoring || m.LoadingTasks || m.LoadingTags || m.Login.Submitting ||
		m.TaskForm.Submitting || m.TagForm.Submitting
}

func (m Model) withSpinner(cmd tea.Cmd) tea.Cmd {
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) refetchTasks() (Model, tea.Cmd) {
	m.LoadingTasks = true
	return m, m.withSpinner(m.fetchTasksCmd())
}

// refetchAll reloads tags and tasks. Tag edits change the tags embedded in
// tasks, so both lists go stale together.
func (m Model) refetchAll() (Model, tea.Cmd) {
	m.LoadingTasks, m.LoadingTags = true, true
	return m, m.withSpinner(tea.Batch(m.fetchTasksCmd(), m.fetchTagsCmd()))
}

// sessionExpired handles a 401 from any call.
func (m Model) sessionExpired() (Model, tea.Cmd) {
	m.resetData()
	m.Screen = ScreenLogin
	m.TaskForm.Submitting, m.TagForm.Submitting = false, false
	m.Status = StatusBar{Text: "Session expired, please sign in again", IsError: true}
	m.notify("Auth", m.Status.Text, "error")
	return m, nil
}

func (m Model) mutationFailed(err error, fallback string) (Model, tea.Cmd) {
	if isUnauthorized(err) {
		return m.sessionExpired()
	}
	log.Printf("update: %s: %v", strings.ToLower(fallback), err)
	text := api.MessageOr(err, fallback)
	m.LastError = err
	m.Status = StatusBar{Text: text, IsError: true}
	m.notify("Error", text, "error")
	return m, nil
}

func (m Model) switchScreen(s Screen) (Model, tea.Cmd) {
	if m.User == nil {
		m.Screen = ScreenLogin
		return m, nil
	}
	switch s {
	case ScreenTasks, ScreenTags:
		m.Screen = s
	case ScreenTaskForm:
		return m.openTaskForm(nil), nil
	case ScreenTagForm:
		return m.openTagForm(nil), nil
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	header := "tasktag | " + string(m.Screen)
	if m.User != nil {
		header += " | " + m.User.Name + " <" + m.User.Email + ">"
		if !m.User.Verified() {
			header += " (email not verified)"
		}
	}

	tabs := ""
	left, right := "", ""
	switch m.Screen {
	case ScreenLogin:
		left = m.renderLoginView()
	case ScreenTasks:
		tabs = m.renderTabs()
		left = m.renderTasksView()
		right = m.renderTaskDetail()
	case ScreenTags:
		left = m.renderTagsView()
	case ScreenTaskForm:
		left = m.renderTaskFormView()
		right = m.renderTaskPreview()
	case ScreenTagForm:
		left = m.renderTagFormView()
	}
	right = joinNonEmpty(right, views.RenderConfirm(m.confirmPrompt()), m.renderCommandPalette(), m.renderHelpIfVisible())

	return views.RenderApp(views.AppData{
		Header:       header,
		Tabs:         tabs,
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer:       m.footer(),
		Width:        m.Width,
	})
}

func (m Model) renderTabs() string {
	tabs := make([]views.TabData, 0, len(tasklist.Filters))
	for _, f := range tasklist.Filters {
		tabs = append(tabs, views.TabData{Filter: f, Count: len(tasklist.FilterByStatus(m.Tasks, f))})
	}
	return views.RenderTabs(tabs, m.Filter)
}

func (m Model) footer() string {
	switch m.Screen {
	case ScreenLogin:
		return "keys: tab next field | enter sign in | ctrl+c quit"
	case ScreenTaskForm, ScreenTagForm:
		return "keys: tab next field | ctrl+s save | esc cancel"
	default:
		return fmt.Sprintf("keys: %s tasks | %s tags | / cmd | %s help | %s quit", m.Keys.Tasks, m.Keys.Tags, m.Keys.Help, m.Keys.Quit)
	}
}

func (m Model) confirmPrompt() string {
	if m.Confirm == nil {
		return ""
	}
	return m.Confirm.Prompt
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
