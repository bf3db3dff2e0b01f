package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/tasktag/internal/auth"
	"github.com/sandeepkv93/tasktag/internal/model"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
)

type Screen string

const (
	ScreenLogin    Screen = "Login"
	ScreenTasks    Screen = "Tasks"
	ScreenTags     Screen = "Tags"
	ScreenTaskForm Screen = "Task"
	ScreenTagForm  Screen = "Tag"
)

// Backend is the slice of the REST client the screens call.
type Backend interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, in model.TaskInput) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	SetTaskCompleted(ctx context.Context, task model.Task, completed bool) (model.Task, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, in model.TagInput) (model.Tag, error)
	UpdateTag(ctx context.Context, id int64, in model.TagInput) (model.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}

type Session interface {
	Restore(ctx context.Context) (auth.State, error)
	Login(ctx context.Context, email, password string) (auth.State, error)
	Logout(ctx context.Context) error
	State() auth.State
}

// Settings persists small UI preferences between runs.
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

type Options struct {
	Backend        Backend
	Session        Session
	Settings       Settings
	Theme          string
	RequestTimeout time.Duration
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks string
	Tags  string
	Help  string
	Quit  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type LoginState struct {
	Focus      int
	Errors     map[string]string
	Error      string
	Submitting bool
}

const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldStatus
	taskFieldPriority
	taskFieldDue
	taskFieldTags
	taskFieldCount
)

type TaskFormState struct {
	// EditingID is zero for a new task.
	EditingID  int64
	Status     model.Status
	Priority   model.Priority
	Tags       []model.Tag
	Focus      int
	TagCursor  int
	Errors     map[string]string
	Error      string
	Submitting bool
}

const (
	tagFieldName = iota
	tagFieldColor
	tagFieldCount
)

type TagFormState struct {
	EditingID  int64
	Focus      int
	Errors     map[string]string
	Error      string
	Submitting bool
}

type ConfirmKind string

const (
	ConfirmDeleteTask ConfirmKind = "task"
	ConfirmDeleteTag  ConfirmKind = "tag"
)

type ConfirmState struct {
	Kind   ConfirmKind
	ID     int64
	Prompt string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	Screen        Screen
	User          *model.User
	Restoring     bool
	Tasks         []model.Task
	Tags          []model.Tag
	Filter        tasklist.Filter
	TagSearch     string
	TaskCursor    int
	TagCursor     int
	LoadingTasks  bool
	LoadingTags   bool
	TasksErr      string
	TagsErr       string
	Login         LoginState
	TaskForm      TaskFormState
	TagForm       TagFormState
	Confirm       *ConfirmState
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error
	Width         int
	Height        int
	// Revealed is how many task rows are drawn while the first load fans in.
	// Zero means all of them.
	Revealed int

	revealGen int

	backend  Backend
	session  Session
	settings Settings
	theme    string
	timeout  time.Duration

	emailInput    textinput.Model
	passwordInput textinput.Model
	titleInput    textinput.Model
	dueInput      textinput.Model
	descArea      textarea.Model
	tagNameInput  textinput.Model
	tagColorInput textinput.Model
	commandInput  textinput.Model
	spinner       spinner.Model
	helpModel     help.Model
	detail        viewport.Model
	detailFor     string
}

type SwitchScreenMsg struct {
	Screen Screen
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type SessionRestoredMsg struct {
	State auth.State
	Err   error
}

type LoginResultMsg struct {
	State auth.State
	Err   error
}

type LoggedOutMsg struct {
	Err error
}

type ViewStateLoadedMsg struct {
	Filter    tasklist.Filter
	TagSearch string
}

type RowRevealedMsg struct {
	Gen   int
	Count int
}

type TasksLoadedMsg struct {
	Tasks []model.Task
	Err   error
}

type TagsLoadedMsg struct {
	Tags []model.Tag
	Err  error
}

type TaskSavedMsg struct {
	Task    model.Task
	Created bool
	// Toggled marks a completion flip rather than a form save.
	Toggled bool
	Err     error
}

type TaskDeletedMsg struct {
	ID  int64
	Err error
}

type TagSavedMsg struct {
	Tag     model.Tag
	Created bool
	Err     error
}

type TagDeletedMsg struct {
	ID  int64
	Err error
}

func NewModel(opts Options) Model {
	m := Model{
		Screen:   ScreenLogin,
		Filter:   tasklist.FilterAll,
		backend:  opts.Backend,
		session:  opts.Session,
		settings: opts.Settings,
		theme:    opts.Theme,
		timeout:  opts.RequestTimeout,
		Keys: GlobalKeyMap{
			Tasks: "1",
			Tags:  "2",
			Help:  "?",
			Quit:  "q",
		},
	}
	if m.theme == "" {
		m.theme = "dark"
	}
	if m.timeout <= 0 {
		m.timeout = 15 * time.Second
	}
	m.Restoring = m.session != nil
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.emailInput = newInput("email> ", 254)
	m.emailInput.Placeholder = "you@example.com"
	m.emailInput.Focus()
	m.passwordInput = newInput("password> ", 128)
	m.passwordInput.EchoMode = textinput.EchoPassword
	m.passwordInput.EchoCharacter = '*'

	m.titleInput = newInput("", 255)
	m.dueInput = newInput("", 10)
	m.dueInput.Placeholder = "YYYY-MM-DD"

	m.descArea = textarea.New()
	m.descArea.SetWidth(48)
	m.descArea.SetHeight(5)
	m.descArea.ShowLineNumbers = false
	m.descArea.Placeholder = "Description (markdown)"

	m.tagNameInput = newInput("", 64)
	m.tagColorInput = newInput("", 7)
	m.tagColorInput.Placeholder = "#0EA5E9"

	m.commandInput = newInput("/", 256)

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detail = viewport.New(54, 12)
}

func newInput(prompt string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.CharLimit = limit
	in.Width = 42
	return in
}

func (m Model) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}
