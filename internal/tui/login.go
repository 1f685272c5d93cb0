package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jfanara/taskdeck/internal/session"
)

type loginField int

const (
	loginFieldEmail loginField = iota
	loginFieldPassword
	numLoginFields
)

// authResultMsg carries the outcome of a login or register attempt. The
// display text comes from the session state, not from this message.
type authResultMsg struct {
	err error
}

type loginModel struct {
	sessions   *session.Manager
	store      *session.Store
	fields     [numLoginFields]string
	focus      loginField
	hint       string // client-side validation, before any network call
	submitting bool
}

func newLoginModel(sessions *session.Manager, store *session.Store) loginModel {
	return loginModel{sessions: sessions, store: store}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitting = false
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if m.submitting {
		// The submit control is disabled while an attempt is in flight.
		return m, nil
	}
	m.hint = ""

	switch msg.String() {
	case "ctrl+r":
		return m, func() tea.Msg { return switchToRegisterMsg{} }
	case "tab", "down":
		m.focus = (m.focus + 1) % numLoginFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
	case "backspace":
		f := &m.fields[m.focus]
		*f = editRune(*f, "backspace")
	case "enter":
		if m.focus == loginFieldPassword {
			return m.submit()
		}
		m.focus++
	default:
		key := msg.String()
		if len(key) == 1 {
			m.fields[m.focus] = editRune(m.fields[m.focus], key)
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(m.fields[loginFieldEmail])
	password := m.fields[loginFieldPassword]

	if email == "" {
		m.hint = "email is required"
		return m, nil
	}
	if password == "" {
		m.hint = "password is required"
		return m, nil
	}

	m.submitting = true
	sessions := m.sessions
	return m, func() tea.Msg {
		err := sessions.Login(context.Background(), email, password)
		if errors.Is(err, session.ErrAttemptSuperseded) {
			err = nil
		}
		return authResultMsg{err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder

	b.WriteString("\n " + selectedStyle.Render("Sign in") + "\n\n")

	labels := [numLoginFields]string{"email", "password"}
	for i := loginField(0); i < numLoginFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = ">"
			style = selectedStyle
		}
		value := m.fields[i]
		if i == loginFieldPassword {
			value = maskString(value)
		}
		if i == m.focus {
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-8s", labels[i])), value)
	}

	b.WriteString("\n")
	snap := m.store.Snapshot()
	switch {
	case m.submitting || snap.Loading:
		b.WriteString(" " + dimStyle.Render("signing in..."))
	case m.hint != "":
		b.WriteString(" " + errStyle.Render(m.hint))
	case snap.Err != "":
		b.WriteString(" " + errStyle.Render(snap.Err))
	default:
		b.WriteString(" " + metaStyle.Render("ctrl+r to create an account"))
	}

	return b.String()
}
