// Package tui is the terminal front end for the Taskdeck board. Screen
// transitions are gated by the session guards: the app parks on a loading
// view until the one-time session resolution completes, and every
// navigation — including ones triggered by the session orchestrator —
// re-runs the guard for its target before the view switches.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jfanara/taskdeck/internal/session"
	"github.com/jfanara/taskdeck/pkg/client"
)

type view int

const (
	viewLoading view = iota
	viewLogin
	viewRegister
	viewBoard
	viewCreate
)

// NavigateMsg asks the app to move to a route. The session orchestrator's
// navigation hook delivers it via Program.Send; views produce it directly.
type NavigateMsg struct {
	Route session.Route
}

// navDecidedMsg carries a guard's verdict: the destination that actually
// gets shown (the requested route, or the guard's redirect).
type navDecidedMsg struct {
	route session.Route
}

// App is the root Bubbletea model.
type App struct {
	client   *client.Client
	store    *session.Store
	sessions *session.Manager
	version  string

	view     view
	login    loginModel
	register registerModel
	board    boardModel
	create   createModel

	helpOpen bool
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates the TUI application.
func NewApp(c *client.Client, store *session.Store, sessions *session.Manager, version string) App {
	return App{
		client:   c,
		store:    store,
		sessions: sessions,
		version:  version,
		view:     viewLoading,
		login:    newLoginModel(sessions, store),
		register: newRegisterModel(sessions, store),
		board:    newBoardModel(c, store, sessions),
		create:   newCreateModel(c),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.bootstrap())
}

// bootstrap runs the one-time session resolution and the initial guard.
// The command suspends off the event loop; the app stays on the loading
// view until the decision message lands, so no flash of the wrong screen.
func (a App) bootstrap() tea.Cmd {
	sessions, store := a.sessions, a.store
	return func() tea.Msg {
		sessions.Init(context.Background())
		dec, err := session.RequireSession(context.Background(), store)
		if err != nil {
			return navDecidedMsg{route: session.RouteLogin}
		}
		if !dec.Allowed {
			return navDecidedMsg{route: dec.Redirect}
		}
		return navDecidedMsg{route: session.RouteBoard}
	}
}

// guardNavigate checks the target route's guard before committing the
// transition. Denial lands on the guard's redirect, which by construction
// passes its own guard.
func (a App) guardNavigate(route session.Route) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		dec, err := session.GuardFor(route)(context.Background(), store)
		if err != nil {
			return navDecidedMsg{route: session.RouteLogin}
		}
		if !dec.Allowed {
			return navDecidedMsg{route: dec.Redirect}
		}
		return navDecidedMsg{route: route}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + help(1) = 3 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 3}
		a.board, _ = a.board.Update(bodyMsg)

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case NavigateMsg:
		return a, a.guardNavigate(msg.Route)

	case navDecidedMsg:
		return a.showRoute(msg.route)

	case switchToRegisterMsg:
		a.view = viewRegister
		a.register = newRegisterModel(a.sessions, a.store)
		return a, nil

	case switchToLoginMsg:
		a.view = viewLogin
		a.login = newLoginModel(a.sessions, a.store)
		return a, nil

	case taskCreatedMsg:
		// Let the form show its result, then return to a fresh board on success.
		var cmd tea.Cmd
		a.create, cmd = a.create.Update(msg)
		if msg.err == nil {
			a.view = viewBoard
			return a, tea.Batch(cmd, a.board.Init())
		}
		return a, cmd

	case tea.KeyMsg:
		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			}
			return a, nil
		}

		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Global keys (only when no text input has focus)
		if !a.isEditing() {
			switch msg.String() {
			case "?":
				a.helpOpen = true
				return a, nil
			case "q":
				return a, tea.Quit
			case "n":
				if a.view == viewBoard {
					a.view = viewCreate
					a.create = newCreateModel(a.client)
					return a, nil
				}
			case "L":
				if a.view == viewBoard {
					return a, a.logout()
				}
			case "esc":
				if a.view == viewCreate {
					a.view = viewBoard
					return a, a.board.Init()
				}
			}
		} else if msg.String() == "esc" && a.view == viewCreate {
			a.view = viewBoard
			return a, a.board.Init()
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	case viewBoard:
		a.board, cmd = a.board.Update(msg)
	case viewCreate:
		a.create, cmd = a.create.Update(msg)
	}

	return a, cmd
}

// showRoute commits a guard-approved transition.
func (a App) showRoute(route session.Route) (tea.Model, tea.Cmd) {
	switch route {
	case session.RouteBoard:
		if a.view == viewBoard {
			return a, nil
		}
		a.view = viewBoard
		return a, a.board.Init()
	case session.RouteLogin:
		a.view = viewLogin
		a.login = newLoginModel(a.sessions, a.store)
		return a, nil
	}
	return a, nil
}

// logout resets the session off the event loop. The orchestrator's
// navigation hook posts the resulting transition back to the app.
func (a App) logout() tea.Cmd {
	sessions := a.sessions
	return func() tea.Msg {
		sessions.Logout()
		return nil
	}
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLogin, viewRegister, viewCreate:
		return true
	case viewBoard:
		return a.board.searchFocused
	}
	return false
}

// switchToRegister and switchToLogin are produced by the login/register
// views; both targets are guest routes, so the guest guard covers them.
type switchToRegisterMsg struct{}
type switchToLoginMsg struct{}

func (a App) View() string {
	// Header: centered shimmer logo
	logo := renderShimmerLogo(a.frame)
	logoWidth := lipgloss.Width(logo)
	logoPad := (a.width - logoWidth) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	// Identity line below logo
	identity := ""
	if snap := a.store.Snapshot(); snap.Authenticated() {
		identity = metaStyle.Render(fmt.Sprintf("%s · %s", snap.User.Name, snap.User.Email))
	}
	if identity != "" {
		idPad := (a.width - lipgloss.Width(identity)) / 2
		if idPad < 0 {
			idPad = 0
		}
		header += "\n" + strings.Repeat(" ", idPad) + identity
	} else {
		header += "\n"
	}

	var body string
	var help string
	switch a.view {
	case viewLoading:
		body = "\n " + dimStyle.Render("resolving session...")
		help = " " + helpEntry("q", "quit")
	case viewLogin:
		body = a.login.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "sign in") + "  " + helpEntry("ctrl+r", "register") + "  " + helpEntry("ctrl+c", "quit")
	case viewRegister:
		body = a.register.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "create account") + "  " + helpEntry("ctrl+r", "sign in") + "  " + helpEntry("ctrl+c", "quit")
	case viewBoard:
		body = a.board.View()
		if a.board.searchFocused {
			help = " " + helpEntry("enter", "apply") + "  " + helpEntry("esc", "clear")
		} else {
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("s", "status") + "  " + helpEntry("m", "mine") + "  " + helpEntry("/", "search") + "  " + helpEntry("n", "new") + "  " + helpEntry("L", "logout") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
		}
	case viewCreate:
		body = a.create.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("h/l", "priority") + "  " + helpEntry("ctrl+s", "submit") + "  " + helpEntry("esc", "cancel")
	}

	// Help overlay
	if a.helpOpen {
		body = helpView() + "\n  " + metaStyle.Render("taskdeck "+a.version)
		help = " " + helpEntry("esc", "close") + "  " + helpEntry("q", "quit")
	}

	// Chrome budget: header(2) + help(1) = 3 lines + body
	chrome := 3
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s", header, body, help)
}
