package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/tasktag/internal/forms"
	"github.com/sandeepkv93/tasktag/internal/views"
)

func (m Model) handleLoginKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Login.Submitting || m.Restoring {
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.Login.Focus = 1 - m.Login.Focus
		m.focusLoginField()
		return m, nil
	case "enter":
		return m.submitLogin()
	case "esc":
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Login.Focus == 0 {
		m.emailInput = editInput(m.emailInput, msg)
	} else {
		m.passwordInput = editInput(m.passwordInput, msg)
	}
	return m, nil
}

func (m *Model) focusLoginField() {
	if m.Login.Focus == 0 {
		m.emailInput.Focus()
		m.passwordInput.Blur()
		return
	}
	m.emailInput.Blur()
	m.passwordInput.Focus()
}

func (m Model) submitLogin() (Model, tea.Cmd) {
	form := forms.LoginForm{
		Email:    strings.TrimSpace(m.emailInput.Value()),
		Password: m.passwordInput.Value(),
	}
	m.Login.Errors = form.Validate()
	m.Login.Error = ""
	if len(m.Login.Errors) > 0 || m.session == nil {
		return m, nil
	}
	m.Login.Submitting = true
	return m, m.withSpinner(m.loginCmd(form.Email, form.Password))
}

func (m Model) renderLoginView() string {
	if m.Restoring {
		return m.spinner.View() + " restoring session..."
	}
	data := views.FormData{
		Title: "sign in",
		Fields: []views.FieldView{
			{Label: "email", View: m.emailInput.View(), Error: m.Login.Errors["email"], Focused: m.Login.Focus == 0},
			{Label: "password", View: m.passwordInput.View(), Error: m.Login.Errors["password"], Focused: m.Login.Focus == 1},
		},
		Error: m.Login.Error,
		Hint:  "no account yet? run `tasktag register`",
	}
	if m.Login.Submitting {
		data.Submitted = m.spinner.View() + " signing in..."
	}
	return views.RenderForm(data)
}
