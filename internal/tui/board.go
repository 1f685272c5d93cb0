package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jfanara/taskdeck/internal/session"
	"github.com/jfanara/taskdeck/pkg/client"
	"github.com/jfanara/taskdeck/pkg/domain"
)

// -- messages --

type tasksLoadedMsg struct {
	tasks []domain.Task
	err   error
}

// taskMutatedMsg signals that a task changed server-side (status, assignee,
// deletion); the board reloads on success.
type taskMutatedMsg struct {
	err error
}

type copyResultMsg struct {
	err error
}

// -- model --

// statusCycle is the cycle order for the status filter; "" = all.
var statusCycle = append([]string{""}, domain.ValidStatuses...)

type boardModel struct {
	client   *client.Client
	store    *session.Store
	sessions *session.Manager

	tasks         []domain.Task
	cursor        int
	statusCycleIx int
	statusFilter  string // "" = all
	mineOnly      bool
	search        string
	searchDraft   string
	searchFocused bool
	loading       bool
	err           string
	notice        string // transient action feedback ("copied", ...)
	width         int
	height        int
}

func newBoardModel(c *client.Client, store *session.Store, sessions *session.Manager) boardModel {
	return boardModel{client: c, store: store, sessions: sessions}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadTasks()
}

func (m boardModel) loadTasks() tea.Cmd {
	c := m.client
	status := m.statusFilter
	query := m.search
	var assignee int64
	if m.mineOnly {
		if snap := m.store.Snapshot(); snap.User != nil {
			assignee = snap.User.ID
		}
	}
	return func() tea.Msg {
		tasks, err := c.ListTasks(context.Background(), status, assignee, query, pageSize, 0)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (boardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.tasks = msg.tasks
			m.err = ""
			if m.cursor >= len(m.tasks) {
				m.cursor = 0
			}
		}

	case taskMutatedMsg:
		if msg.err != nil {
			// A 404 means someone else deleted the task; refresh the
			// list instead of surfacing an error for a gone row.
			if client.IsStatus(msg.err, http.StatusNotFound) {
				m.notice = "task no longer exists"
				m.loading = true
				return m, m.loadTasks()
			}
			m.err = msg.err.Error()
			return m, nil
		}
		m.loading = true
		return m, m.loadTasks()

	case copyResultMsg:
		if msg.err != nil {
			m.notice = "copy failed"
		} else {
			m.notice = "task id copied"
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	if m.searchFocused {
		switch msg.String() {
		case "enter":
			m.searchFocused = false
			m.search = strings.TrimSpace(m.searchDraft)
			m.loading = true
			return m, m.loadTasks()
		case "esc":
			m.searchFocused = false
			m.searchDraft = ""
			if m.search != "" {
				m.search = ""
				m.loading = true
				return m, m.loadTasks()
			}
			return m, nil
		default:
			m.searchDraft = editRune(m.searchDraft, msg.String())
			return m, nil
		}
	}

	m.notice = ""
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "s":
		m.statusCycleIx = (m.statusCycleIx + 1) % len(statusCycle)
		m.statusFilter = statusCycle[m.statusCycleIx]
		m.cursor = 0
		m.loading = true
		return m, m.loadTasks()
	case "m":
		m.mineOnly = !m.mineOnly
		m.cursor = 0
		m.loading = true
		return m, m.loadTasks()
	case "/":
		m.searchFocused = true
		m.searchDraft = m.search
	case "r":
		m.loading = true
		return m, m.loadTasks()
	case "enter":
		if t, ok := m.current(); ok {
			return m, m.advanceStatus(t)
		}
	case "a":
		if t, ok := m.current(); ok {
			return m, m.assignToMe(t)
		}
	case "u":
		if t, ok := m.current(); ok && t.Assigned() {
			return m, m.unassign(t)
		}
	case "c":
		if t, ok := m.current(); ok {
			id := t.ID.String()
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(id)}
			}
		}
	case "x":
		if t, ok := m.current(); ok {
			return m, m.deleteTask(t)
		}
	}
	return m, nil
}

func (m boardModel) current() (domain.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return domain.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m boardModel) advanceStatus(t domain.Task) tea.Cmd {
	c := m.client
	id := t.ID.String()
	next := domain.NextStatus(t.Status)
	return func() tea.Msg {
		_, err := c.UpdateTaskStatus(context.Background(), id, next)
		return taskMutatedMsg{err: err}
	}
}

func (m boardModel) assignToMe(t domain.Task) tea.Cmd {
	snap := m.store.Snapshot()
	if snap.User == nil {
		return nil
	}
	c := m.client
	id := t.ID.String()
	me := snap.User.ID
	return func() tea.Msg {
		_, err := c.AssignTask(context.Background(), id, me)
		return taskMutatedMsg{err: err}
	}
}

func (m boardModel) unassign(t domain.Task) tea.Cmd {
	c := m.client
	id := t.ID.String()
	return func() tea.Msg {
		return taskMutatedMsg{err: c.UnassignTask(context.Background(), id)}
	}
}

func (m boardModel) deleteTask(t domain.Task) tea.Cmd {
	c := m.client
	id := t.ID.String()
	return func() tea.Msg {
		return taskMutatedMsg{err: c.DeleteTask(context.Background(), id)}
	}
}

func (m boardModel) View() string {
	var b strings.Builder

	// Filter line
	filter := "all"
	if m.statusFilter != "" {
		filter = m.statusFilter
	}
	line := " " + metaStyle.Render("status:") + " " + StatusStyle(m.statusFilter).Render(filter)
	if m.mineOnly {
		line += "  " + accentStyle.Render("mine")
	}
	if m.searchFocused {
		line += "  " + searchStyle.Render("/"+m.searchDraft+"█")
	} else if m.search != "" {
		line += "  " + searchStyle.Render("/"+m.search)
	}
	if m.notice != "" {
		line += "  " + okStyle.Render(m.notice)
	}
	b.WriteString(line + "\n\n")

	switch {
	case m.err != "":
		b.WriteString(" " + errStyle.Render(m.err) + "\n")
		return b.String()
	case m.loading && len(m.tasks) == 0:
		b.WriteString(" " + dimStyle.Render("loading tasks...") + "\n")
		return b.String()
	case len(m.tasks) == 0:
		b.WriteString(" " + dimStyle.Render("no tasks — n to create one") + "\n")
		return b.String()
	}

	titleWidth := m.width - 40
	if titleWidth < 20 {
		titleWidth = 20
	}

	for i, t := range m.tasks {
		rowStyle := normalStyle
		cursor := "  "
		if i == m.cursor {
			rowStyle = selectedStyle
			cursor = accentStyle.Render("> ")
		}

		status := StatusStyle(t.Status).Render(fmt.Sprintf("%-5s", t.Status))
		mark := PriorityStyle(t.Priority).Render(PriorityMark(t.Priority))
		title := rowStyle.Render(truncStr(oneLine(t.Title), titleWidth))

		assignee := metaStyle.Render("unassigned")
		if t.AssigneeName != "" {
			assignee = dimStyle.Render("@" + t.AssigneeName)
		}

		fmt.Fprintf(&b, " %s%s %s %s  %s  %s\n",
			cursor, status, mark, title, assignee, metaStyle.Render(formatTime(t.CreatedAt)))
	}

	return b.String()
}
