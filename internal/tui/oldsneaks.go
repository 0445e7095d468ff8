package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"getsneaks/internal/analysis"
	"getsneaks/internal/service"
	"getsneaks/internal/store"
)

// OldSneaksModel lists retired shoe periods, newest first
type OldSneaksModel struct {
	history  *service.HistoryService
	periods  []store.ShoePeriod
	cursor   int
	workouts []store.ArchivedWorkout
	detail   bool
	loading  bool
	err      error
	keys     oldSneaksKeyMap
}

type oldSneaksKeyMap struct {
	Down    key.Binding
	Up      key.Binding
	Open    key.Binding
	Back    key.Binding
	Refresh key.Binding
}

func defaultOldSneaksKeyMap() oldSneaksKeyMap {
	return oldSneaksKeyMap{
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		Up:      key.NewBinding(key.WithKeys("up", "k")),
		Open:    key.NewBinding(key.WithKeys("enter")),
		Back:    key.NewBinding(key.WithKeys("backspace")),
		Refresh: key.NewBinding(key.WithKeys("r")),
	}
}

// NewOldSneaksModel creates a new old sneaks model
func NewOldSneaksModel(h *service.HistoryService) OldSneaksModel {
	return OldSneaksModel{
		history: h,
		loading: true,
		keys:    defaultOldSneaksKeyMap(),
	}
}

type periodsLoadedMsg struct {
	periods []store.ShoePeriod
	err     error
}

type periodWorkoutsMsg struct {
	workouts []store.ArchivedWorkout
	err      error
}

// Init loads the archived periods
func (m OldSneaksModel) Init() tea.Cmd {
	return loadPeriods(m.history)
}

func loadPeriods(h *service.HistoryService) tea.Cmd {
	return func() tea.Msg {
		periods, err := h.ShoePeriods(context.Background())
		return periodsLoadedMsg{periods: periods, err: err}
	}
}

func loadPeriodWorkouts(h *service.HistoryService, id int64) tea.Cmd {
	return func() tea.Msg {
		workouts, err := h.PeriodWorkouts(context.Background(), id)
		return periodWorkoutsMsg{workouts: workouts, err: err}
	}
}

// Update handles messages
func (m OldSneaksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case periodsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.periods = msg.periods
		m.cursor = min(m.cursor, max(len(m.periods)-1, 0))

	case periodWorkoutsMsg:
		m.err = msg.err
		m.workouts = msg.workouts
		m.detail = msg.err == nil

	case tea.KeyMsg:
		if m.detail {
			if key.Matches(msg, m.keys.Back) {
				m.detail = false
				m.workouts = nil
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.periods)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Open):
			if len(m.periods) > 0 {
				return m, loadPeriodWorkouts(m.history, m.periods[m.cursor].ID)
			}
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, loadPeriods(m.history)
		}
	}
	return m, nil
}

// View renders the old sneaks screen
func (m OldSneaksModel) View() string {
	if m.loading {
		return "\n  Loading old sneakers..."
	}

	sections := []string{cardTitleStyle.Render("Old Sneaks")}
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if len(m.periods) == 0 {
		sections = append(sections, "  No retired sneakers yet.")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.detail {
		sections = append(sections, m.renderWorkouts(), statusStyle.Render("backspace: back"))
	} else {
		sections = append(sections, m.renderPeriods(), statusStyle.Render("j/k: move  enter: workouts  r: refresh"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m OldSneaksModel) renderPeriods() string {
	header := fmt.Sprintf("%-10s  %10s  %8s  %-8s", "Retired", "Miles", "Runs", "Synced")
	rows := []string{tableHeaderStyle.Render(header)}

	for i, p := range m.periods {
		synced := "pending"
		if p.SyncedAt != nil {
			synced = "yes"
		}
		row := fmt.Sprintf("%-10s  %10.2f  %8d  %-8s",
			p.ArchivedAt.Local().Format("01/02/06"), p.TotalMiles, p.WorkoutCount, synced)
		if i == m.cursor {
			rows = append(rows, tableSelectedStyle.Render(row))
		} else {
			rows = append(rows, tableRowStyle.Render(row))
		}
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m OldSneaksModel) renderWorkouts() string {
	p := m.periods[m.cursor]
	title := fmt.Sprintf("Retired %s, %.2f mi", p.ArchivedAt.Local().Format("01/02/06"), p.TotalMiles)

	header := fmt.Sprintf("%-10s  %10s  %10s  %10s", "Date", "Miles", "Calories", "Time")
	rows := []string{metricValueStyle.Render(title), tableHeaderStyle.Render(header)}
	for _, w := range m.workouts {
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-10s  %10.2f  %10.0f  %10s",
			w.Date.Format("01/02/06"), w.DistanceMiles, w.Calories, analysis.FormatDuration(w.DurationMinutes*60))))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
