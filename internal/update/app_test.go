package update

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/api"
	"github.com/sandeepkv93/tasktag/internal/api/apitest"
	"github.com/sandeepkv93/tasktag/internal/auth"
	"github.com/sandeepkv93/tasktag/internal/color"
	"github.com/sandeepkv93/tasktag/internal/model"
	"github.com/sandeepkv93/tasktag/internal/storage"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
)

type fixture struct {
	srv  *apitest.Server
	repo *storage.SQLiteRepository
	sess *auth.Session
	opts Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.AddUser("Ada", "ada@example.com", "password123")
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "tasktag.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	sess := auth.NewSession(repo, auth.WithAPIURL(srv.URL))
	client, err := api.New(srv.URL, api.WithTokenSource(sess), api.WithUnauthorizedHandler(sess))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	sess.Bind(client)
	return &fixture{
		srv:  srv,
		repo: repo,
		sess: sess,
		opts: Options{Backend: client, Session: sess, Settings: repo},
	}
}

// start runs Init to completion, leaving the model on the login screen
// unless a session was stored.
func (f *fixture) start(t *testing.T) Model {
	t.Helper()
	m := NewModel(f.opts)
	return drain(t, m, m.Init())
}

func (f *fixture) signedIn(t *testing.T) Model {
	t.Helper()
	m := f.start(t)
	m = press(t, m, runes("ada@example.com"))
	m = press(t, m, keyMsg(tea.KeyTab))
	m = press(t, m, runes("password123"))
	m = press(t, m, keyMsg(tea.KeyEnter))
	if m.Screen != ScreenTasks || m.User == nil {
		t.Fatalf("expected signed-in tasks screen, got %q (login error %q)", m.Screen, m.Login.Error)
	}
	return m
}

// drain runs cmd and every command it produces, feeding each message back
// through Update. Spinner ticks and quit are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatalf("command queue did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return drain(t, next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func (f *fixture) seedTask(title string, status model.Status) model.Task {
	return f.srv.AddTask(model.Task{Title: title, Status: status, Priority: model.PriorityMedium})
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(Options{})
	if m.Screen != ScreenLogin {
		t.Fatalf("expected login screen, got %q", m.Screen)
	}
	if m.Filter != tasklist.FilterAll {
		t.Fatalf("expected all filter, got %q", m.Filter)
	}
	if m.Restoring {
		t.Fatalf("no session means nothing to restore")
	}
	if m.Keys.Quit != "q" || m.Keys.Tasks != "1" || m.Keys.Tags != "2" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if !strings.Contains(m.View(), "sign in") {
		t.Fatalf("expected login form in view, got:\n%s", m.View())
	}
}

func TestInitWithoutStoredSessionShowsLogin(t *testing.T) {
	f := newFixture(t)
	m := f.start(t)
	if m.Screen != ScreenLogin || m.Restoring {
		t.Fatalf("expected idle login screen, got %q restoring=%v", m.Screen, m.Restoring)
	}
}

func TestRestoreOpensTasks(t *testing.T) {
	f := newFixture(t)
	f.seedTask("Write report", model.StatusPending)
	if _, err := f.sess.Login(context.Background(), "ada@example.com", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	m := f.start(t)
	if m.Screen != ScreenTasks {
		t.Fatalf("expected tasks screen after restore, got %q", m.Screen)
	}
	if m.User == nil || m.User.Name != "Ada" {
		t.Fatalf("expected restored user, got %+v", m.User)
	}
	if len(m.Tasks) != 1 || m.LoadingTasks || m.LoadingTags {
		t.Fatalf("expected loaded tasks, got %d loading=%v/%v", len(m.Tasks), m.LoadingTasks, m.LoadingTags)
	}
}

func TestLoginValidationAndFailure(t *testing.T) {
	f := newFixture(t)
	m := f.start(t)

	m = press(t, m, keyMsg(tea.KeyEnter))
	if m.Login.Errors["email"] == "" || m.Login.Errors["password"] == "" {
		t.Fatalf("expected field errors, got %+v", m.Login.Errors)
	}

	m = press(t, m, runes("ada@example.com"))
	m = press(t, m, keyMsg(tea.KeyTab))
	m = press(t, m, runes("nope"))
	m = press(t, m, keyMsg(tea.KeyEnter))
	if m.Screen != ScreenLogin {
		t.Fatalf("expected to stay on login, got %q", m.Screen)
	}
	if m.Login.Error != "Invalid credentials" {
		t.Fatalf("expected server message, got %q", m.Login.Error)
	}
	if m.passwordInput.Value() != "" {
		t.Fatalf("password must be cleared after failure")
	}
}

func TestLoginLoadsTasksAndTags(t *testing.T) {
	f := newFixture(t)
	f.srv.AddTag("work", "#0EA5E9")
	f.seedTask("Write report", model.StatusPending)

	m := f.signedIn(t)
	if len(m.Tasks) != 1 || len(m.Tags) != 1 {
		t.Fatalf("expected data loaded, got %d tasks %d tags", len(m.Tasks), len(m.Tags))
	}
	view := m.View()
	for _, want := range []string{"Ada <ada@example.com>", "All (1)", "Write report"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestFilterTabPersists(t *testing.T) {
	f := newFixture(t)
	f.seedTask("a", model.StatusPending)
	f.seedTask("b", model.StatusCompleted)
	m := f.signedIn(t)

	m = press(t, m, keyMsg(tea.KeyTab))
	if m.Filter != tasklist.FilterPending {
		t.Fatalf("expected pending filter, got %q", m.Filter)
	}
	if got := len(m.visibleTasks()); got != 1 {
		t.Fatalf("expected one pending task visible, got %d", got)
	}
	raw, err := f.repo.GetSetting(context.Background(), storage.SettingTaskFilter)
	if err != nil || raw != "pending" {
		t.Fatalf("expected stored filter, got %q err=%v", raw, err)
	}

	again := f.start(t)
	if again.Filter != tasklist.FilterPending {
		t.Fatalf("expected filter restored on start, got %q", again.Filter)
	}
}

func TestSpaceTogglesCompletion(t *testing.T) {
	f := newFixture(t)
	task := f.seedTask("Write report", model.StatusPending)
	m := f.signedIn(t)

	m = press(t, m, keyMsg(tea.KeySpace))
	if m.Status.Text != "Task marked as Completed" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	got, ok := findTask(m.Tasks, task.ID)
	if !ok || got.Status != model.StatusCompleted {
		t.Fatalf("expected refetched completed task, got %+v", got)
	}

	m = press(t, m, keyMsg(tea.KeySpace))
	got, _ = findTask(m.Tasks, task.ID)
	if got.Status != model.StatusPending {
		t.Fatalf("expected task reopened, got %q", got.Status)
	}
}

func TestTaskFormCreates(t *testing.T) {
	f := newFixture(t)
	m := f.signedIn(t)

	m = press(t, m, runes("n"))
	if m.Screen != ScreenTaskForm {
		t.Fatalf("expected task form, got %q", m.Screen)
	}
	m = press(t, m, keyMsg(tea.KeyCtrlS))
	if m.TaskForm.Errors["title"] == "" {
		t.Fatalf("expected title error, got %+v", m.TaskForm.Errors)
	}

	m = press(t, m, runes("Buy milk"))
	m = press(t, m, keyMsg(tea.KeyCtrlS))
	if m.Screen != ScreenTasks {
		t.Fatalf("expected back on tasks, got %q (form error %q)", m.Screen, m.TaskForm.Error)
	}
	if m.Status.Text != "Task created successfully" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	tasks := f.srv.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Status != model.StatusPending {
		t.Fatalf("unexpected server tasks: %+v", tasks)
	}
}

func TestTaskFormEscCancels(t *testing.T) {
	f := newFixture(t)
	f.seedTask("Write report", model.StatusPending)
	m := f.signedIn(t)

	m = press(t, m, runes("e"))
	if m.TaskForm.EditingID == 0 || m.titleInput.Value() != "Write report" {
		t.Fatalf("expected form seeded from selected task, got id=%d title=%q", m.TaskForm.EditingID, m.titleInput.Value())
	}
	m = press(t, m, keyMsg(tea.KeyEsc))
	if m.Screen != ScreenTasks || m.Status.Text != "edit cancelled" {
		t.Fatalf("expected cancel, got %q %q", m.Screen, m.Status.Text)
	}
}

func TestTagFormRejectsImpossibleColorKeys(t *testing.T) {
	f := newFixture(t)
	m := f.signedIn(t)

	m = press(t, m, runes("2"))
	m = press(t, m, runes("n"))
	m = press(t, m, runes("work"))
	m = press(t, m, keyMsg(tea.KeyTab))
	m = clearInput(t, m)
	m = press(t, m, runes("#0e"))
	m = press(t, m, runes("g"))
	if got := m.tagColorInput.Value(); got != "#0e" {
		t.Fatalf("expected g rejected, got %q", got)
	}
	m = press(t, m, runes("a5e9"))
	m = press(t, m, keyMsg(tea.KeyEnter))

	if m.Screen != ScreenTags || m.Status.Text != "Tag created successfully" {
		t.Fatalf("expected saved tag, got %q %q (form error %q)", m.Screen, m.Status.Text, m.TagForm.Error)
	}
	tags := f.srv.Tags()
	if len(tags) != 1 || tags[0].Name != "work" || tags[0].Color != "#0EA5E9" {
		t.Fatalf("unexpected server tags: %+v", tags)
	}
	if len(m.Tags) != 1 {
		t.Fatalf("expected tags refetched, got %d", len(m.Tags))
	}
}

func clearInput(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 8; i++ {
		m = press(t, m, keyMsg(tea.KeyBackspace))
	}
	return m
}

func TestNewTagStartsWithDefaultColor(t *testing.T) {
	f := newFixture(t)
	m := f.signedIn(t)

	m = press(t, m, runes("2"))
	m = press(t, m, runes("n"))
	if got := m.tagColorInput.Value(); got != color.Fallback {
		t.Fatalf("expected default color %s, got %q", color.Fallback, got)
	}
	m = press(t, m, runes("home"))
	m = press(t, m, keyMsg(tea.KeyEnter))
	tags := f.srv.Tags()
	if len(tags) != 1 || tags[0].Color != color.Fallback {
		t.Fatalf("unexpected server tags: %+v", tags)
	}
}

func TestEditTagNormalizesStoredColor(t *testing.T) {
	f := newFixture(t)
	f.srv.AddTag("work", "#abc")
	m := f.signedIn(t)

	m = press(t, m, runes("2"))
	m = press(t, m, runes("e"))
	if m.Screen != ScreenTagForm {
		t.Fatalf("expected tag form, got %q", m.Screen)
	}
	if got := m.tagColorInput.Value(); got != "#AABBCC" {
		t.Fatalf("expected #AABBCC, got %q", got)
	}
}

func TestLeavingColorFieldCanonicalizes(t *testing.T) {
	f := newFixture(t)
	m := f.signedIn(t)

	m = press(t, m, runes("2"))
	m = press(t, m, runes("n"))
	m = press(t, m, keyMsg(tea.KeyTab))
	m = clearInput(t, m)
	m = press(t, m, runes("#12"))
	m = press(t, m, keyMsg(tea.KeyTab))
	if got := m.tagColorInput.Value(); got != "#120000" {
		t.Fatalf("expected #120000 after leaving the field, got %q", got)
	}
	if m.TagForm.Focus != tagFieldName {
		t.Fatalf("expected focus back on name")
	}

	m = press(t, m, keyMsg(tea.KeyTab))
	m = clearInput(t, m)
	m = press(t, m, keyMsg(tea.KeyTab))
	if got := m.tagColorInput.Value(); got != "" {
		t.Fatalf("empty color should stay empty, got %q", got)
	}
}

func TestNonHexTagColorCanBeEdited(t *testing.T) {
	f := newFixture(t)
	f.srv.AddTag("work", "red")
	m := f.signedIn(t)

	m = press(t, m, runes("2"))
	m = press(t, m, runes("e"))
	m = press(t, m, keyMsg(tea.KeyTab))
	if got := m.tagColorInput.Value(); got != "red" {
		t.Fatalf("expected stored color kept for editing, got %q", got)
	}
	m = press(t, m, keyMsg(tea.KeyBackspace))
	if got := m.tagColorInput.Value(); got != "re" {
		t.Fatalf("expected backspace to apply, got %q", got)
	}
	m = press(t, m, keyMsg(tea.KeyTab))
	if got := m.tagColorInput.Value(); got != color.Fallback {
		t.Fatalf("expected fallback after leaving the field, got %q", got)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	f.seedTask("Write report", model.StatusPending)
	m := f.signedIn(t)

	m = press(t, m, runes("x"))
	if m.Confirm == nil || !strings.Contains(m.View(), `Delete task "Write report"?`) {
		t.Fatalf("expected confirm prompt, got %+v", m.Confirm)
	}
	m = press(t, m, runes("n"))
	if m.Confirm != nil || len(f.srv.Tasks()) != 1 {
		t.Fatalf("expected delete cancelled")
	}

	m = press(t, m, runes("x"))
	m = press(t, m, runes("y"))
	if len(f.srv.Tasks()) != 0 || len(m.Tasks) != 0 {
		t.Fatalf("expected task deleted, server=%d local=%d", len(f.srv.Tasks()), len(m.Tasks))
	}
	if m.Status.Text != "Task deleted successfully" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
}

func TestPaletteCommands(t *testing.T) {
	f := newFixture(t)
	m := f.signedIn(t)

	run := func(m Model, line string) Model {
		m = press(t, m, runes("/"))
		if !m.Palette.Active {
			t.Fatalf("expected palette open")
		}
		m = press(t, m, runes(line))
		return press(t, m, keyMsg(tea.KeyEnter))
	}

	m = run(m, "add Buy milk p:high")
	tasks := f.srv.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Priority != model.PriorityHigh {
		t.Fatalf("unexpected server tasks: %+v", tasks)
	}

	m = run(m, fmt.Sprintf("done #%d", tasks[0].ID))
	if got := f.srv.Tasks()[0].Status; got != model.StatusCompleted {
		t.Fatalf("expected completed, got %q", got)
	}

	m = run(m, "filter completed")
	if m.Filter != tasklist.FilterCompleted || m.Screen != ScreenTasks {
		t.Fatalf("expected completed filter, got %q on %q", m.Filter, m.Screen)
	}

	m = run(m, "tag urgent #f00")
	tags := f.srv.Tags()
	if len(tags) != 1 || tags[0].Color != "#FF0000" {
		t.Fatalf("unexpected server tags: %+v", tags)
	}

	m = run(m, "search urg")
	if m.Screen != ScreenTags || m.TagSearch != "urg" || len(m.visibleTags()) != 1 {
		t.Fatalf("expected tag search, got %q %q", m.Screen, m.TagSearch)
	}

	m = run(m, "done #999")
	if !m.Status.IsError || m.Status.Text == "" {
		t.Fatalf("expected error for unknown task, got %+v", m.Status)
	}

	m = run(m, "bogus")
	if !m.Status.IsError {
		t.Fatalf("expected error for unknown command, got %+v", m.Status)
	}
}

func TestPaletteEscCloses(t *testing.T) {
	f := newFixture(t)
	m := f.signedIn(t)
	m = press(t, m, runes("/"))
	m = press(t, m, runes("add x"))
	m = press(t, m, keyMsg(tea.KeyEsc))
	if m.Palette.Active || m.commandInput.Value() != "" {
		t.Fatalf("expected palette closed and cleared")
	}
	if len(f.srv.Tasks()) != 0 {
		t.Fatalf("esc must not run the command")
	}
}

func TestUnauthorizedReturnsToLogin(t *testing.T) {
	f := newFixture(t)
	f.seedTask("Write report", model.StatusPending)
	m := f.signedIn(t)

	f.srv.RevokeAll()
	m = press(t, m, runes("r"))
	if m.Screen != ScreenLogin {
		t.Fatalf("expected login screen, got %q", m.Screen)
	}
	if m.User != nil || len(m.Tasks) != 0 {
		t.Fatalf("expected data cleared")
	}
	if m.Status.Text != "Session expired, please sign in again" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	if f.sess.State().Authenticated {
		t.Fatalf("session should be signed out")
	}
}

func TestLogoutKey(t *testing.T) {
	f := newFixture(t)
	m := f.signedIn(t)
	m = press(t, m, runes("L"))
	if m.Screen != ScreenLogin || m.Status.Text != "Signed out" {
		t.Fatalf("expected signed out, got %q %q", m.Screen, m.Status.Text)
	}
	if _, err := f.repo.LoadSession(context.Background(), storage.DefaultSessionName); err == nil {
		t.Fatalf("stored session should be removed")
	}
}

func TestHelpToggleAndScreenKeys(t *testing.T) {
	m := NewModel(Options{})
	m.Screen = ScreenTasks
	m.User = &model.User{Name: "Ada", Email: "ada@example.com"}

	m = press(t, m, runes("?"))
	if !m.HelpVisible || !strings.Contains(m.View(), "help:") {
		t.Fatalf("expected help panel")
	}
	if !strings.Contains(m.View(), "toggle completed") {
		t.Fatalf("expected tasks bindings in help:\n%s", m.View())
	}
	m = press(t, m, runes("2"))
	if m.Screen != ScreenTags {
		t.Fatalf("expected tags screen, got %q", m.Screen)
	}
	if !strings.Contains(m.View(), "(email not verified)") {
		t.Fatalf("expected unverified marker in header")
	}
}

func TestNotificationsAreCapped(t *testing.T) {
	m := NewModel(Options{})
	for i := 0; i < maxNotifications+5; i++ {
		m.notify("n", fmt.Sprintf("body %d", i), "info")
	}
	if len(m.Notifications) != maxNotifications {
		t.Fatalf("expected %d notifications, got %d", maxNotifications, len(m.Notifications))
	}
	if got := m.Notifications[len(m.Notifications)-1].Body; got != fmt.Sprintf("body %d", maxNotifications+4) {
		t.Fatalf("expected newest kept, got %q", got)
	}
	m.notify("n", "  ", "info")
	if len(m.Notifications) != maxNotifications {
		t.Fatalf("blank bodies are ignored")
	}
}

func TestQuitKey(t *testing.T) {
	m := NewModel(Options{})
	m.Screen = ScreenTasks
	next, cmd := m.Update(runes("q"))
	if !next.(Model).Quitting || cmd == nil {
		t.Fatalf("expected quit")
	}
}

func TestFirstTaskLoadFansIn(t *testing.T) {
	m := NewModel(Options{})
	m.Screen = ScreenTasks
	tasks := []model.Task{
		{ID: 1, Title: "alpha", Status: model.StatusPending, Priority: model.PriorityMedium},
		{ID: 2, Title: "bravo", Status: model.StatusPending, Priority: model.PriorityMedium},
		{ID: 3, Title: "charlie", Status: model.StatusPending, Priority: model.PriorityMedium},
	}
	next, cmd := m.Update(TasksLoadedMsg{Tasks: tasks})
	m = next.(Model)
	if cmd == nil || m.Revealed != 1 {
		t.Fatalf("expected a staggered reveal, revealed=%d", m.Revealed)
	}
	view := m.renderTasksView()
	if !strings.Contains(view, "alpha") || strings.Contains(view, "charlie") {
		t.Fatalf("expected only the first row, got:\n%s", view)
	}

	next, _ = m.Update(RowRevealedMsg{Gen: m.revealGen - 1, Count: 3})
	if next.(Model).Revealed != 1 {
		t.Fatalf("stale reveal should be ignored")
	}

	m = drain(t, m, cmd)
	if m.Revealed != 0 || !strings.Contains(m.renderTasksView(), "charlie") {
		t.Fatalf("expected every row after the reveal, revealed=%d", m.Revealed)
	}

	next, cmd = m.Update(TasksLoadedMsg{Tasks: tasks[:2]})
	if cmd != nil || next.(Model).Revealed != 0 {
		t.Fatalf("refetch should not replay the reveal")
	}
}

func TestTagPickerTogglesSelection(t *testing.T) {
	m := NewModel(Options{})
	m.Tags = []model.Tag{{ID: 1, Name: "home"}, {ID: 2, Name: "work"}}
	m = m.openTaskForm(nil)

	m = m.handleTagPickerKey(keyMsg(tea.KeyDown))
	m = m.handleTagPickerKey(keyMsg(tea.KeySpace))
	if len(m.TaskForm.Tags) != 1 || m.TaskForm.Tags[0].ID != 2 {
		t.Fatalf("expected work selected, got %+v", m.TaskForm.Tags)
	}
	m = m.handleTagPickerKey(keyMsg(tea.KeyEnter))
	if len(m.TaskForm.Tags) != 0 {
		t.Fatalf("expected work deselected, got %+v", m.TaskForm.Tags)
	}
}
