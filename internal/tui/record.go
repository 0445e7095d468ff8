package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"getsneaks/internal/analysis"
	"getsneaks/internal/service"
	"getsneaks/internal/store"
	"getsneaks/internal/workout"
)

const (
	fieldDate = iota
	fieldMiles
	fieldCalories
	fieldDuration
	fieldCount
)

var fieldLabels = [fieldCount]string{"Date", "Miles", "Calories", "Duration (H:MM)"}

// RecordModel is the manual workout entry form
type RecordModel struct {
	history *service.HistoryService
	inputs  [fieldCount]textinput.Model
	focus   int
	saving  bool
	err     error
	keys    recordKeyMap
	now     func() time.Time
}

type recordKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Clear  key.Binding
}

func defaultRecordKeyMap() recordKeyMap {
	return recordKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up")),
		Submit: key.NewBinding(key.WithKeys("enter")),
		Clear:  key.NewBinding(key.WithKeys("ctrl+u")),
	}
}

// NewRecordModel creates the entry form with today's date filled in
func NewRecordModel(h *service.HistoryService) RecordModel {
	m := RecordModel{
		history: h,
		keys:    defaultRecordKeyMap(),
		now:     time.Now,
	}

	placeholders := [fieldCount]string{"MM/DD/YY", "3.1", "350", "0:30"}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 10
		in.Width = 12
		m.inputs[i] = in
	}
	m.reset()
	return m
}

func (m *RecordModel) reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.inputs[fieldDate].SetValue(m.now().Format(workout.LabelLayout))
	m.focus = fieldMiles
	m.inputs[m.focus].Focus()
}

// Init focuses the first empty field
func (m RecordModel) Init() tea.Cmd {
	return textinput.Blink
}

// WorkoutRecordedMsg is sent after a workout was stored
type WorkoutRecordedMsg struct {
	Record workout.Record
	Err    error
}

// Update handles messages
func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case WorkoutRecordedMsg:
		m.saving = false
		m.err = msg.Err
		if msg.Err == nil {
			m.reset()
		}
		return m, nil

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Next):
			m.setFocus((m.focus + 1) % fieldCount)
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Prev):
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Clear):
			m.err = nil
			m.reset()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			if m.focus < fieldCount-1 {
				m.setFocus(m.focus + 1)
				return m, textinput.Blink
			}
			r, err := parseWorkoutForm(m.values(), m.now())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.saving = true
			return m, saveWorkout(m.history, r)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *RecordModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m RecordModel) values() [fieldCount]string {
	var v [fieldCount]string
	for i, in := range m.inputs {
		v[i] = in.Value()
	}
	return v
}

func saveWorkout(h *service.HistoryService, r workout.Record) tea.Cmd {
	return func() tea.Msg {
		err := h.Record(context.Background(), r, store.SourceManual)
		return WorkoutRecordedMsg{Record: r, Err: err}
	}
}

// parseWorkoutForm turns the form fields into a workout. An empty date means today.
func parseWorkoutForm(v [fieldCount]string, today time.Time) (workout.Record, error) {
	date := today
	if s := strings.TrimSpace(v[fieldDate]); s != "" {
		d, err := workout.ParseDate(s)
		if err != nil {
			return workout.Record{}, err
		}
		date = d
	}

	miles, err := parseAmount(fieldLabels[fieldMiles], v[fieldMiles])
	if err != nil {
		return workout.Record{}, err
	}
	calories, err := parseAmount(fieldLabels[fieldCalories], v[fieldCalories])
	if err != nil {
		return workout.Record{}, err
	}
	minutes, err := analysis.ParseDurationMinutes(v[fieldDuration])
	if err != nil {
		return workout.Record{}, err
	}

	return workout.NewRecord(date, miles, calories, float64(minutes))
}

func parseAmount(label, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%s is required", strings.ToLower(label))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", strings.ToLower(label), s)
	}
	return v, nil
}

// View renders the form
func (m RecordModel) View() string {
	sections := []string{cardTitleStyle.Render("Record a Workout")}

	for i, in := range m.inputs {
		label := metricLabelStyle.Render(fieldLabels[i])
		if i == m.focus {
			label = navActiveStyle.Width(20).Render(fieldLabels[i])
		}
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Left, label, in.View()))
	}

	switch {
	case m.saving:
		sections = append(sections, statusStyle.Render("Saving..."))
	case m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n%v", m.err)))
	}

	sections = append(sections, statusStyle.Render("tab: next field  enter: save  ctrl+u: clear  esc: back"))
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
