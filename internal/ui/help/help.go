// Package help renders the reference page of the terminal app.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Model struct {
	dataDir string
	width   int
	height  int
}

// New returns the help page. dataDir is shown so users can find their files.
func New(dataDir string) Model {
	return Model{dataDir: dataDir}
}

func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

type entry struct {
	keys string
	desc string
}

var sections = []struct {
	title   string
	entries []entry
}{
	{"Timer", []entry{
		{"space", "Start or pause the countdown"},
		{"s / p", "Start / pause"},
		{"r", "Reset the current phase"},
		{"m", "Switch between focus and break (free mode, stopped)"},
	}},
	{"Navigation", []entry{
		{"1-5", "Timer, stats, settings, sounds, help"},
		{"tab / shift+tab", "Next / previous tab"},
		{"?", "This page"},
		{"esc", "Leave the focus lock (asks first)"},
		{"q / ctrl+c", "Quit (asks first while locked)"},
	}},
	{"Statistics", []entry{
		{"d / w / m / y", "Today, this week, this month, this year"},
		{"e", "Export a text report"},
	}},
	{"Sounds", []entry{
		{"enter", "Use the selected sound for alarms"},
		{"p / x", "Preview / stop"},
		{"a / d", "Import / delete a custom clip"},
	}},
	{"Settings", []entry{
		{"tab / shift+tab", "Move between fields"},
		{"space", "Toggle a checkbox"},
		{"ctrl+s", "Save"},
		{"P", "Ask for native app blocking permission"},
	}},
}

func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(1)

	sectionTitleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50")).
		Bold(true).
		Width(18)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CCCCCC"))

	parts := []string{titleStyle.Render("focuslock help")}
	for _, section := range sections {
		parts = append(parts, sectionTitleStyle.Render(section.title))
		for _, e := range section.entries {
			parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(e.keys), descStyle.Render(e.desc)))
		}
	}

	about := []string{
		"In concentration mode a running focus phase locks the app: blocked tabs",
		"refuse to open and blocked apps are closed off where the platform allows it.",
		"Breaks unlock everything. Leaving the lock early pauses the session.",
		"",
		fmt.Sprintf("Statistics and imported sounds live in %s.", m.dataDir),
	}
	parts = append(parts, sectionTitleStyle.Render("About"), descStyle.Render(strings.Join(about, "\n")))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
