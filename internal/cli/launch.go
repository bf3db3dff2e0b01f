package cli

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/update"
	"github.com/spf13/cobra"
)

// runTUI is the default action. The UI owns the terminal, so the log goes
// to the debug file or nowhere.
func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	if a.cfg.DebugLog != "" {
		f, err := tea.LogToFile(a.cfg.DebugLog, "tasktag")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	if err := a.connect(); err != nil {
		return err
	}
	defer a.close()
	log.Printf("cli: starting ui against %s", a.cfg.APIBaseURL)

	m := update.NewModel(update.Options{
		Backend:        a.client,
		Session:        a.sess,
		Settings:       a.repo,
		Theme:          a.cfg.Theme,
		RequestTimeout: a.cfg.RequestTimeout,
	})
	program := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tasktag failed: %w", err)
	}
	return nil
}
