package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"getsneaks/internal/workout"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		m.renderSection("Navigation", []keyHelp{
			{"1", "History"},
			{"2", "Record a workout"},
			{"3", "Old sneaks"},
			{"4", "Import from Strava"},
			{"5", "Archive sync"},
			{"?", "Help (this screen)"},
			{"esc", "Back / leave a form"},
			{"q", "Quit"},
		}),
		m.renderSection("History", []keyHelp{
			{"tab / ← →", "Switch metric"},
			{"j / k", "Move cursor"},
			{"pgup / pgdn", "Page through workouts"},
			{"x", "Delete the selected workout"},
			{"D", "Delete all workouts without archiving"},
			{"r", "Reload from disk"},
		}),
		m.renderSection("Record", []keyHelp{
			{"tab / shift+tab", "Move between fields"},
			{"enter", "Next field, save on the last"},
			{"ctrl+u", "Clear the form"},
		}),
		m.renderSection("Import", []keyHelp{
			{"enter", "Look up the run since the start time"},
			{"y / n", "Save or discard the draft"},
		}),
		m.renderSection("Old Sneaks", []keyHelp{
			{"j / k", "Move cursor"},
			{"enter", "Show workouts"},
			{"backspace", "Back to the list"},
		}),
		m.renderSection("Sync", []keyHelp{
			{"s / enter", "Send pending archives"},
		}),
		m.renderShoeHelp(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", successStyle.Bold(true).Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderShoeHelp() string {
	return strings.Join([]string{
		"",
		successStyle.Bold(true).Render("Sneakers"),
		"  " + helpDescStyle.Render(fmt.Sprintf("Running shoes wear out around %.0f miles. Once your workouts add up to that,", workout.ShoeThresholdMiles)),
		"  " + helpDescStyle.Render("you are asked to retire the pair. Retired workouts move to Old Sneaks and"),
		"  " + helpDescStyle.Render("the counter starts over."),
	}, "\n")
}
