package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jfanara/taskdeck/internal/session"
)

type registerField int

const (
	registerFieldName registerField = iota
	registerFieldEmail
	registerFieldPassword
	numRegisterFields
)

type registerModel struct {
	sessions   *session.Manager
	store      *session.Store
	fields     [numRegisterFields]string
	focus      registerField
	hint       string
	submitting bool
}

func newRegisterModel(sessions *session.Manager, store *session.Store) registerModel {
	return registerModel{sessions: sessions, store: store}
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitting = false
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m registerModel) updateKeys(msg tea.KeyMsg) (registerModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.hint = ""

	switch msg.String() {
	case "ctrl+r":
		return m, func() tea.Msg { return switchToLoginMsg{} }
	case "tab", "down":
		m.focus = (m.focus + 1) % numRegisterFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numRegisterFields) % numRegisterFields
	case "backspace":
		f := &m.fields[m.focus]
		*f = editRune(*f, "backspace")
	case "enter":
		if m.focus == registerFieldPassword {
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

func (m registerModel) submit() (registerModel, tea.Cmd) {
	name := strings.TrimSpace(m.fields[registerFieldName])
	email := strings.TrimSpace(m.fields[registerFieldEmail])
	password := m.fields[registerFieldPassword]

	if name == "" {
		m.hint = "name is required"
		return m, nil
	}
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
		err := sessions.Register(context.Background(), name, email, password)
		if errors.Is(err, session.ErrAttemptSuperseded) {
			err = nil
		}
		return authResultMsg{err: err}
	}
}

func (m registerModel) View() string {
	var b strings.Builder

	b.WriteString("\n " + selectedStyle.Render("Create account") + "\n\n")

	labels := [numRegisterFields]string{"name", "email", "password"}
	for i := registerField(0); i < numRegisterFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = ">"
			style = selectedStyle
		}
		value := m.fields[i]
		if i == registerFieldPassword {
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
		b.WriteString(" " + dimStyle.Render("creating account..."))
	case m.hint != "":
		b.WriteString(" " + errStyle.Render(m.hint))
	case snap.Err != "":
		b.WriteString(" " + errStyle.Render(snap.Err))
	default:
		b.WriteString(" " + metaStyle.Render("ctrl+r to sign in instead"))
	}

	return b.String()
}
