package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the TASKDECK logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "T A S K D E C K" as a flowing wave of blue light.
// Deep slate (#1a2a3a) -> bright sky (#4aa8de). No hue drift. Letters are
// spaced apart and rendered without a background box.
func renderShimmerLogo(frame int) string {
	const text = "TASKDECK"
	n := len(text)

	var out string

	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		// Flowing phase — one smooth wave advancing through the text
		phase := t*0.1 - x*3.0

		// Gentle speed modulation
		phase += math.Sin(t*0.023) * 2.0

		// Primary brightness wave
		b := math.Sin(phase)*0.5 + 0.5

		// Soft shaping
		b = math.Pow(b, 1.3)

		// Slow breathing tide
		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// Continuous RGB interpolation: deep slate -> bright sky
		// Deep:   (26, 42, 58)   #1a2a3a
		// Bright: (74, 168, 222) #4aa8de
		r := clampByte(26 + b*(74-26))
		g := clampByte(42 + b*(168-42))
		bl := clampByte(58 + b*(222-58))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		// Letter spacing — two spaces between each letter
		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles — taskdeck neutral palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Search / accent
	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4aa8de")).
			Bold(true)

	// Accent / action styles
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34a8d4"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#34d474"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34a8d4")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Status colors — board column identity
	statusColors = map[string]lipgloss.Color{
		"todo":  lipgloss.Color("#8890a0"),
		"doing": lipgloss.Color("#3ecce4"),
		"done":  lipgloss.Color("#34d474"),
	}

	// Priority colors
	priorityColors = map[string]lipgloss.Color{
		"low":    lipgloss.Color("#505868"),
		"normal": lipgloss.Color("#8890a0"),
		"high":   lipgloss.Color("#e06060"),
	}
)

// StatusStyle returns a bold style colored for the given task status.
func StatusStyle(status string) lipgloss.Style {
	if c, ok := statusColors[status]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// PriorityStyle returns a style colored for the given task priority.
func PriorityStyle(priority string) lipgloss.Style {
	if c, ok := priorityColors[priority]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878"))
}

// PriorityMark is the one-character marker shown before a task title.
func PriorityMark(priority string) string {
	switch priority {
	case "high":
		return "!"
	case "low":
		return "·"
	default:
		return " "
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpView renders the static help overlay.
func helpView() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4aa8de")).
		Bold(true).
		Render("T A S K D E C K")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	commands := []struct{ cmd, desc string }{
		{"taskdeck", "Open the board"},
		{"taskdeck --version", "Show version"},
	}

	keys := []struct{ key, desc string }{
		{"j/k", "Move the cursor"},
		{"s", "Cycle the status filter"},
		{"m", "Toggle my tasks only"},
		{"/", "Search tasks"},
		{"enter", "Advance task status"},
		{"a", "Assign the task to me"},
		{"c", "Copy the task ID"},
		{"x", "Delete the task"},
		{"n", "New task"},
		{"L", "Log out"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Board keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", k.key)), descStyle.Render(k.desc))
	}
	return b.String()
}
