package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jfanara/taskdeck/internal/config"
	"github.com/jfanara/taskdeck/internal/credstore"
	"github.com/jfanara/taskdeck/internal/logging"
	"github.com/jfanara/taskdeck/internal/session"
	"github.com/jfanara/taskdeck/internal/tui"
	"github.com/jfanara/taskdeck/pkg/client"
	"github.com/jfanara/taskdeck/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("taskdeck " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "logout":
			return runLogout()
		}
	}

	cfgPath, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	creds, err := credstore.New()
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	store := session.NewStore()
	c, err := client.New(cfg.APIURL, store.Token)
	if err != nil {
		return fmt.Errorf("configure api client: %w", err)
	}

	// TASKDECK_TOKEN takes the saved credentials' place: startup
	// resolution revalidates it like any persisted token, and nothing is
	// ever written back or cleared.
	var credSource session.CredentialStore = creds
	if tok := os.Getenv("TASKDECK_TOKEN"); tok != "" {
		credSource = envToken(tok)
	}

	sessions := session.NewManager(store, c, credSource)
	app := tui.NewApp(c, store, sessions, version)

	p := tea.NewProgram(app, tea.WithAltScreen())
	sessions.SetNavigate(func(r session.Route) {
		p.Send(tui.NavigateMsg{Route: r})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// setupLogging routes slog to the configured file, or discards output.
// The TUI owns the terminal, so stderr is never a log destination here.
func setupLogging(cfg config.Config) error {
	var out io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
	}
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: out}
	if err := logging.Setup(opts); err != nil {
		return err
	}
	slog.Debug("starting taskdeck", "version", version, "api_url", cfg.APIURL)
	return nil
}

// envToken is a read-only credential source for a token that came from the
// environment. Saves and clears are no-ops so a fixed token never touches
// the files under ~/.taskdeck.
type envToken string

func (t envToken) LoadToken() string          { return string(t) }
func (t envToken) SaveToken(string) error     { return nil }
func (t envToken) SaveUser(domain.User) error { return nil }
func (t envToken) Clear() error               { return nil }

func runLogout() error {
	creds, err := credstore.New()
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	if !creds.HasToken() {
		fmt.Println("Already signed out.")
		return nil
	}
	if err := creds.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}

func printHelp() {
	fmt.Print(`taskdeck — terminal task board

Usage:
  taskdeck            launch the board
  taskdeck logout     forget saved credentials
  taskdeck version    print version
  taskdeck help       show this help

Environment:
  TASKDECK_API_URL    override the API origin
  TASKDECK_TOKEN      use a fixed session token (skips saved credentials)
  TASKDECK_LOG_LEVEL  debug, info, warn, error
  TASKDECK_LOG_FILE   write structured logs to a file

Config:
  ~/.taskdeck/config.yaml
`)
}
