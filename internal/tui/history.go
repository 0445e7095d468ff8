package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"getsneaks/internal/analysis"
	"getsneaks/internal/service"
	"getsneaks/internal/workout"
)

const historyPageSize = 15

// HistoryModel shows one metric series of the current shoe period
type HistoryModel struct {
	history *service.HistoryService
	metric  int // index into workout.Metrics
	series  workout.Series
	pace    []string
	cursor  int
	confirm historyAction
	loading bool
	err     error
	keys    historyKeyMap
}

type historyAction int

const (
	actionNone historyAction = iota
	actionDelete
	actionClear
)

type historyKeyMap struct {
	NextMetric key.Binding
	PrevMetric key.Binding
	Down       key.Binding
	Up         key.Binding
	PageDown   key.Binding
	PageUp     key.Binding
	Refresh    key.Binding
	Delete     key.Binding
	Clear      key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
}

func defaultHistoryKeyMap() historyKeyMap {
	return historyKeyMap{
		NextMetric: key.NewBinding(key.WithKeys("tab", "right", "l")),
		PrevMetric: key.NewBinding(key.WithKeys("shift+tab", "left", "h")),
		Down:       key.NewBinding(key.WithKeys("down", "j")),
		Up:         key.NewBinding(key.WithKeys("up", "k")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown")),
		PageUp:     key.NewBinding(key.WithKeys("pgup")),
		Refresh:    key.NewBinding(key.WithKeys("r")),
		Delete:     key.NewBinding(key.WithKeys("x")),
		Clear:      key.NewBinding(key.WithKeys("D")),
		Confirm:    key.NewBinding(key.WithKeys("y")),
		Cancel:     key.NewBinding(key.WithKeys("n", "esc")),
	}
}

// NewHistoryModel creates a new history model
func NewHistoryModel(h *service.HistoryService) HistoryModel {
	return HistoryModel{
		history: h,
		loading: true,
		keys:    defaultHistoryKeyMap(),
	}
}

// Init loads the working set from the store
func (m HistoryModel) Init() tea.Cmd {
	return refreshHistory(m.history)
}

// HistoryRefreshedMsg is sent after the working set was reloaded
type HistoryRefreshedMsg struct {
	Err error
}

func refreshHistory(h *service.HistoryService) tea.Cmd {
	return func() tea.Msg {
		return HistoryRefreshedMsg{Err: h.Refresh(context.Background())}
	}
}

func deleteWorkout(h *service.HistoryService, pos int) tea.Cmd {
	return func() tea.Msg {
		_, err := h.Delete(context.Background(), pos)
		return HistoryRefreshedMsg{Err: err}
	}
}

func clearWorkouts(h *service.HistoryService) tea.Cmd {
	return func() tea.Msg {
		return HistoryRefreshedMsg{Err: h.Clear(context.Background())}
	}
}

// Confirming reports whether a delete is waiting for y/n
func (m HistoryModel) Confirming() bool {
	return m.confirm != actionNone
}

// Metric returns the metric on screen
func (m HistoryModel) Metric() workout.Metric {
	return workout.Metrics[m.metric]
}

// Update handles messages
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HistoryRefreshedMsg:
		m.loading = false
		m.err = msg.Err
		m.reload()

	case tea.KeyMsg:
		if m.confirm != actionNone {
			return m.confirmKey(msg)
		}
		last := max(m.series.Len()-1, 0)
		switch {
		case key.Matches(msg, m.keys.NextMetric):
			m.metric = (m.metric + 1) % len(workout.Metrics)
			m.reload()
		case key.Matches(msg, m.keys.PrevMetric):
			m.metric = (m.metric + len(workout.Metrics) - 1) % len(workout.Metrics)
			m.reload()
		case key.Matches(msg, m.keys.Down):
			m.cursor = min(m.cursor+1, last)
		case key.Matches(msg, m.keys.Up):
			m.cursor = max(m.cursor-1, 0)
		case key.Matches(msg, m.keys.PageDown):
			m.cursor = min(m.cursor+historyPageSize, last)
		case key.Matches(msg, m.keys.PageUp):
			m.cursor = max(m.cursor-historyPageSize, 0)
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, refreshHistory(m.history)
		case key.Matches(msg, m.keys.Delete):
			if m.series.Len() > 0 {
				m.confirm = actionDelete
			}
		case key.Matches(msg, m.keys.Clear):
			if m.series.Len() > 0 {
				m.confirm = actionClear
			}
		}
	}
	return m, nil
}

func (m HistoryModel) confirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.confirm
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirm = actionNone
		if action == actionClear {
			return m, clearWorkouts(m.history)
		}
		return m, deleteWorkout(m.history, m.cursor)
	case key.Matches(msg, m.keys.Cancel):
		m.confirm = actionNone
	}
	return m, nil
}

func (m *HistoryModel) reload() {
	m.series = m.history.Series(m.Metric())
	m.pace = paceColumn(m.history.Workouts())
	m.cursor = min(m.cursor, max(m.series.Len()-1, 0))
}

// paceColumn formats min/mile pace for workouts in chronological order
func paceColumn(records []workout.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = formatPace(analysis.CalculatePacePerMile(r.DistanceMiles(), r.DurationMinutes()))
	}
	return out
}

func formatPace(secondsPerMile float64) string {
	if secondsPerMile <= 0 {
		return "-"
	}
	secs := int(secondsPerMile)
	return fmt.Sprintf("%d:%02d/mi", secs/60, secs%60)
}

// View renders the history screen
func (m HistoryModel) View() string {
	if m.loading {
		return "\n  Loading workouts..."
	}

	var sections []string
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
	}

	sections = append(sections, m.renderMetricTabs())

	if m.series.Len() == 0 {
		sections = append(sections, "\n  No workouts on these sneakers yet. Press '2' to record one.")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.renderTable(), m.renderSummary())
	switch m.confirm {
	case actionDelete:
		sections = append(sections, warningStyle.Render(fmt.Sprintf("\nDelete the workout on %s? (y/n)", m.series.Labels[m.cursor])))
	case actionClear:
		sections = append(sections, warningStyle.Render("\nDelete every workout on these sneakers without archiving? (y/n)"))
	default:
		sections = append(sections, statusStyle.Render("tab/←/→: metric  j/k: move  x: delete  D: clear all  r: refresh"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m HistoryModel) renderMetricTabs() string {
	var tabs []string
	for i, metric := range workout.Metrics {
		label := metric.String()
		if i == m.metric {
			tabs = append(tabs, navActiveStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, navInactiveStyle.Render(" "+label+" "))
		}
	}
	return cardTitleStyle.Render(strings.Join(tabs, " "))
}

func (m HistoryModel) renderTable() string {
	metric := m.Metric()
	showPace := metric == workout.Distance && len(m.pace) == m.series.Len()

	headerText := fmt.Sprintf("%-10s  %10s", "Date", metric.String())
	if showPace {
		headerText += fmt.Sprintf("  %10s", "Pace")
	}
	rows := []string{tableHeaderStyle.Render(headerText)}

	offset := m.cursor / historyPageSize * historyPageSize
	end := min(offset+historyPageSize, m.series.Len())
	for i := offset; i < end; i++ {
		row := fmt.Sprintf("%-10s  %10s", m.series.Labels[i], formatValue(metric, m.series.Values[i]))
		if showPace {
			row += fmt.Sprintf("  %10s", m.pace[i])
		}
		if i == m.cursor {
			rows = append(rows, tableSelectedStyle.Render(row))
		} else {
			rows = append(rows, tableRowStyle.Render(row))
		}
	}

	if m.series.Len() > historyPageSize {
		rows = append(rows, statusStyle.Render(fmt.Sprintf("%d-%d of %d", offset+1, end, m.series.Len())))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m HistoryModel) renderSummary() string {
	var total float64
	for _, v := range m.series.Values {
		total += v
	}
	avg := total / float64(m.series.Len())

	metric := m.Metric()
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderMetric("Workouts", fmt.Sprintf("%d", m.series.Len())),
		RenderMetric("Total", formatValue(metric, total)),
		RenderMetric("Average", formatValue(metric, avg)),
	)
}

// formatValue renders a metric value with its unit
func formatValue(metric workout.Metric, v float64) string {
	switch metric {
	case workout.Distance:
		return fmt.Sprintf("%.2f mi", v)
	case workout.Calories:
		return fmt.Sprintf("%.0f cal", v)
	case workout.Duration:
		return analysis.FormatDuration(v * 60)
	}
	return fmt.Sprintf("%g", v)
}
