package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/sandeepkv93/tasktag/internal/api"
	"github.com/sandeepkv93/tasktag/internal/auth"
	"github.com/sandeepkv93/tasktag/internal/config"
	"github.com/sandeepkv93/tasktag/internal/storage"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in, run `tasktag login` first")

// app carries the flags and the lazily opened session store shared by
// every subcommand.
type app struct {
	version    string
	configPath string
	apiURL     string
	verbose    bool

	cfg    config.RuntimeConfig
	repo   *storage.SQLiteRepository
	sess   *auth.Session
	client *api.Client
	in     *bufio.Reader
}

func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version}
	root := &cobra.Command{
		Use:   "tasktag",
		Short: "Tasks and tags in the terminal",
		Long: `tasktag is a terminal client for a task and tag REST API.

Run it without arguments to open the interactive UI, or use the
subcommands to script the same operations.`,
		PersistentPreRunE: a.setup,
		RunE:              a.runTUI,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL, overrides the config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.registerCmd(),
		a.whoamiCmd(),
		a.verifyEmailCmd(),
		a.resendVerificationCmd(),
		a.forgotPasswordCmd(),
		a.resetPasswordCmd(),
		a.tasksCmd(),
		a.tagsCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	root.Version = version
	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.verbose {
		log.SetOutput(cmd.ErrOrStderr())
	} else {
		log.SetOutput(io.Discard)
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if s := strings.TrimSpace(a.apiURL); s != "" {
		cfg.APIBaseURL = s
	}
	a.cfg = cfg
	return nil
}

// connect opens the session store and the API client. Callers defer
// a.close.
func (a *app) connect() error {
	if a.repo != nil {
		return nil
	}
	repo, err := storage.OpenSQLite(a.cfg.SessionDBPath())
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	sess := auth.NewSession(repo, auth.WithAPIURL(a.cfg.APIBaseURL))
	client, err := api.New(a.cfg.APIBaseURL,
		api.WithTokenSource(sess),
		api.WithUnauthorizedHandler(sess),
		api.WithTimeout(a.cfg.RequestTimeout),
		api.WithUserAgent("tasktag/"+a.version),
	)
	if err != nil {
		_ = repo.Close()
		return err
	}
	sess.Bind(client)
	a.repo, a.sess, a.client = repo, sess, client
	return nil
}

func (a *app) close() {
	if a.repo == nil {
		return
	}
	if err := a.repo.Close(); err != nil {
		log.Printf("cli: close session store: %v", err)
	}
	a.repo, a.sess, a.client = nil, nil, nil
}

// signedIn connects and restores the stored session.
func (a *app) signedIn(ctx context.Context) (auth.State, error) {
	if err := a.connect(); err != nil {
		return auth.State{}, err
	}
	st, err := a.sess.Restore(ctx)
	if err != nil {
		return st, err
	}
	if !st.Authenticated {
		return st, errNotSignedIn
	}
	return st, nil
}

// prompt reads one line from stdin, printing label first.
func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	if a.in == nil {
		a.in = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// flagOrPrompt returns the flag value, asking for it when empty.
func (a *app) flagOrPrompt(cmd *cobra.Command, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.prompt(cmd, label)
}

// apiFailure reduces an API error to the message the server sent. The full
// error goes to the log.
func apiFailure(err error, fallback string) error {
	log.Printf("cli: %s: %v", strings.ToLower(fallback), err)
	if errors.Is(err, api.ErrUnauthorized) {
		return errNotSignedIn
	}
	return errors.New(api.MessageOr(err, fallback))
}
