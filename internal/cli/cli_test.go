package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/sandeepkv93/tasktag/internal/api/apitest"
	"github.com/sandeepkv93/tasktag/internal/model"
)

type cliEnv struct {
	srv        *apitest.Server
	configPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("TASKTAG_DATA_DIR", t.TempDir())
	srv := apitest.NewServer(t)
	srv.AddUser("Ada", "ada@example.com", "password123")
	return &cliEnv{srv: srv, configPath: filepath.Join(t.TempDir(), "config.yaml")}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--api-url", e.srv.URL, "--config", e.configPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	if err != nil {
		t.Fatalf("tasktag %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (e *cliEnv) login(t *testing.T) {
	t.Helper()
	e.mustRun(t, "login", "--email", "ada@example.com", "--password", "password123")
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	if out := env.mustRun(t, "version"); out != "tasktag test\n" {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := newCLIEnv(t)

	if _, err := env.run(t, "", "whoami"); !errors.Is(err, errNotSignedIn) {
		t.Fatalf("expected not signed in, got %v", err)
	}

	out := env.mustRun(t, "login", "--email", "ada@example.com", "--password", "password123")
	if !strings.Contains(out, "Signed in as Ada <ada@example.com>") {
		t.Fatalf("unexpected login output %q", out)
	}

	out = env.mustRun(t, "whoami")
	if !strings.Contains(out, "Ada <ada@example.com>") || !strings.Contains(out, "verified") {
		t.Fatalf("unexpected whoami output %q", out)
	}

	env.mustRun(t, "logout")
	if _, err := env.run(t, "", "whoami"); !errors.Is(err, errNotSignedIn) {
		t.Fatalf("expected signed out after logout, got %v", err)
	}
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "ada@example.com\npassword123\n", "login")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Email: ") || !strings.Contains(out, "Password: ") {
		t.Fatalf("expected prompts, got %q", out)
	}
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "", "login", "--email", "ada@example.com", "--password", "wrong")
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	_, err = env.run(t, "", "login", "--email", "not-an-email", "--password", "x")
	if err == nil || !strings.Contains(err.Error(), "valid email") {
		t.Fatalf("expected local validation error, got %v", err)
	}
}

func TestTaskCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out := env.mustRun(t, "tasks", "list")
	if !strings.Contains(out, "no tasks yet") {
		t.Fatalf("expected empty list, got %q", out)
	}

	out = env.mustRun(t, "tasks", "add", "Buy", "milk", "-p", "high", "--due", "2026-01-02")
	if !strings.Contains(out, "Task created successfully") {
		t.Fatalf("unexpected add output %q", out)
	}
	tasks := env.srv.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Priority != model.PriorityHigh {
		t.Fatalf("unexpected server tasks: %+v", tasks)
	}
	id := tasks[0].ID

	out = env.mustRun(t, "tasks", "list")
	want := fmt.Sprintf("#%d [Pending] (High) Buy milk due 2026-01-02", id)
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in %q", want, out)
	}

	out = env.mustRun(t, "tasks", "done", fmt.Sprintf("#%d", id))
	if !strings.Contains(out, "Task marked as Completed") {
		t.Fatalf("unexpected done output %q", out)
	}
	if out := env.mustRun(t, "tasks", "list", "--status", "pending"); !strings.Contains(out, "no pending tasks") {
		t.Fatalf("expected no pending tasks, got %q", out)
	}
	env.mustRun(t, "tasks", "done", "--undo", fmt.Sprint(id))
	if got := env.srv.Tasks()[0].Status; got != model.StatusPending {
		t.Fatalf("expected reopened task, got %q", got)
	}

	if _, err := env.run(t, "", "tasks", "add", "x", "-p", "urgent"); err == nil {
		t.Fatalf("expected invalid priority to fail")
	}
	if _, err := env.run(t, "", "tasks", "done", "abc"); err == nil {
		t.Fatalf("expected invalid id to fail")
	}

	env.mustRun(t, "tasks", "delete", fmt.Sprint(id))
	if len(env.srv.Tasks()) != 0 {
		t.Fatalf("expected task deleted")
	}
}

func TestTagCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out := env.mustRun(t, "tags", "add", "work", "--color", "abc")
	if !strings.Contains(out, "#AABBCC") {
		t.Fatalf("expected canonical color, got %q", out)
	}
	if _, err := env.run(t, "", "tags", "add", "bad", "--color", "#xyz"); err == nil {
		t.Fatalf("expected invalid color to fail")
	}
	env.mustRun(t, "tags", "add", "home")

	env.mustRun(t, "tasks", "add", "Write report", "-t", "WORK")
	tasks := env.srv.Tasks()
	if len(tasks) != 1 || len(tasks[0].Tags) != 1 || tasks[0].Tags[0].Name != "work" {
		t.Fatalf("expected task tagged work, got %+v", tasks)
	}
	if _, err := env.run(t, "", "tasks", "add", "x", "-t", "missing"); err == nil {
		t.Fatalf("expected unknown tag to fail")
	}

	out = env.mustRun(t, "tags", "list", "--search", "WO")
	if !strings.Contains(out, "work #AABBCC 1 task") || strings.Contains(out, "home") {
		t.Fatalf("unexpected tag list %q", out)
	}

	home := env.srv.Tags()[1]
	env.mustRun(t, "tags", "delete", fmt.Sprint(home.ID))
	if len(env.srv.Tags()) != 1 {
		t.Fatalf("expected tag deleted")
	}
}

func TestRegisterAndPasswordReset(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun(t, "register", "--name", "Grace", "--email", "grace@example.com", "--password", "password123")
	if !strings.Contains(out, "User registered successfully") {
		t.Fatalf("unexpected register output %q", out)
	}
	if _, err := env.run(t, "", "register", "--name", "Grace", "--email", "grace@example.com", "--password", "password123"); err == nil ||
		!strings.Contains(err.Error(), "already been taken") {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	env.mustRun(t, "forgot-password", "--email", "grace@example.com")
	env.mustRun(t, "reset-password",
		"--token", apitest.ResetToken("grace@example.com"),
		"--email", "grace@example.com",
		"--password", "newpassword1")
	out = env.mustRun(t, "login", "--email", "grace@example.com", "--password", "newpassword1")
	if !strings.Contains(out, "not verified") {
		t.Fatalf("expected unverified notice, got %q", out)
	}
}

func TestVerifyEmailValidatesLink(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "", "verify-email", "--id", "abc"); err == nil {
		t.Fatalf("expected invalid link to fail")
	}
}

func TestVerifyEmailRefreshesSignedInUser(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "register", "--name", "Grace", "--email", "grace@example.com", "--password", "password123")
	env.mustRun(t, "login", "--email", "grace@example.com", "--password", "password123")

	m := regexp.MustCompile(`\(id (\d+), email not verified\)`).FindStringSubmatch(env.mustRun(t, "whoami"))
	if m == nil {
		t.Fatalf("expected unverified whoami")
	}
	id, _ := strconv.ParseInt(m[1], 10, 64)

	out := env.mustRun(t, "verify-email", "--id", m[1], "--token", apitest.VerificationHash(id))
	if !strings.Contains(out, "Email verified successfully") || !strings.Contains(out, "Grace <grace@example.com> is verified") {
		t.Fatalf("unexpected verify output %q", out)
	}
	if out := env.mustRun(t, "whoami"); !strings.Contains(out, "email verified") {
		t.Fatalf("expected verified whoami, got %q", out)
	}
}

func TestConfigInit(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "config", "init")
	data, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "api_url: "+env.srv.URL) {
		t.Fatalf("expected api url in config, got:\n%s", data)
	}
	if _, err := env.run(t, "", "config", "init"); err == nil {
		t.Fatalf("expected existing config to be kept")
	}
	env.mustRun(t, "config", "init", "--force")

	out := env.mustRun(t, "config", "path")
	if !strings.Contains(out, env.configPath) {
		t.Fatalf("expected config path in %q", out)
	}
}
