package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jfanara/taskdeck/pkg/client"
	"github.com/jfanara/taskdeck/pkg/domain"
)

type createField int

const (
	fieldTitle createField = iota
	fieldDescription
	fieldPriority
)

type taskCreatedMsg struct {
	task *domain.Task
	err  error
}

type createModel struct {
	client     *client.Client
	title      string
	desc       string
	priorityIx int
	focus      createField
	hint       string
	submitting bool
}

func newCreateModel(c *client.Client) createModel {
	m := createModel{client: c}
	for i, p := range domain.ValidPriorities {
		if p == "normal" {
			m.priorityIx = i
		}
	}
	return m
}

func (m createModel) Update(msg tea.Msg) (createModel, tea.Cmd) {
	switch msg := msg.(type) {
	case taskCreatedMsg:
		m.submitting = false
		if msg.err != nil {
			m.hint = msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m createModel) updateKeys(msg tea.KeyMsg) (createModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % 3
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus + 2) % 3
		return m, nil
	case "enter":
		if m.focus == fieldPriority {
			return m.submit()
		}
		m.focus = (m.focus + 1) % 3
		return m, nil
	case "backspace":
		switch m.focus {
		case fieldTitle:
			m.title = editRune(m.title, msg.String())
		case fieldDescription:
			m.desc = editRune(m.desc, msg.String())
		}
		return m, nil
	}

	if m.focus == fieldPriority {
		switch msg.String() {
		case "h", "left":
			m.priorityIx = (m.priorityIx + len(domain.ValidPriorities) - 1) % len(domain.ValidPriorities)
		case "l", "right", " ":
			m.priorityIx = (m.priorityIx + 1) % len(domain.ValidPriorities)
		}
		return m, nil
	}

	if len([]rune(msg.String())) == 1 {
		switch m.focus {
		case fieldTitle:
			m.title = editRune(m.title, msg.String())
		case fieldDescription:
			m.desc = editRune(m.desc, msg.String())
		}
		m.hint = ""
	}
	return m, nil
}

func (m createModel) submit() (createModel, tea.Cmd) {
	title := strings.TrimSpace(m.title)
	if title == "" {
		m.hint = "title is required"
		return m, nil
	}
	m.submitting = true
	m.hint = ""

	c := m.client
	req := client.CreateTaskRequest{
		Title:       title,
		Description: strings.TrimSpace(m.desc),
		Priority:    domain.ValidPriorities[m.priorityIx],
	}
	return m, func() tea.Msg {
		task, err := c.CreateTask(context.Background(), req)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (m createModel) View() string {
	var b strings.Builder
	b.WriteString(" " + accentStyle.Render("New task") + "\n\n")

	b.WriteString(m.fieldLine(fieldTitle, "title", m.title))
	b.WriteString(m.fieldLine(fieldDescription, "description", m.desc))

	prompt := inputPromptStyle.Render("priority")
	pri := domain.ValidPriorities[m.priorityIx]
	val := PriorityStyle(pri).Render(pri)
	if m.focus == fieldPriority {
		val += dimStyle.Render("  h/l to change")
	}
	b.WriteString(" " + prompt + "  " + val + "\n")

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("creating...") + "\n")
	case m.hint != "":
		b.WriteString(" " + errStyle.Render(m.hint) + "\n")
	default:
		b.WriteString(" " + dimStyle.Render("ctrl+s to create, esc to cancel") + "\n")
	}
	return b.String()
}

func (m createModel) fieldLine(f createField, label, value string) string {
	prompt := inputPromptStyle.Render(label)
	shown := value
	if shown == "" && m.focus != f {
		shown = inputPlaceholderStyle.Render("...")
	}
	if m.focus == f {
		shown += selectedStyle.Render("█")
	}
	return " " + prompt + "  " + shown + "\n"
}
