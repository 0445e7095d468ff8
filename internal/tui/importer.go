package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"getsneaks/internal/async"
	"getsneaks/internal/service"
	"getsneaks/internal/strava"
	"getsneaks/internal/workout"
)

const startLayout = "2006-01-02 15:04"

type importStage int

const (
	importEnterStart importStage = iota
	importQuerying
	importReview
	importSaving
)

// ImportModel builds a workout from what Strava recorded since a start time
type ImportModel struct {
	importer *service.ImportService
	start    textinput.Model
	stage    importStage
	draft    service.Draft
	err      error
	keys     importKeyMap
}

type importKeyMap struct {
	Submit  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultImportKeyMap() importKeyMap {
	return importKeyMap{
		Submit:  key.NewBinding(key.WithKeys("enter")),
		Confirm: key.NewBinding(key.WithKeys("y", "enter")),
		Cancel:  key.NewBinding(key.WithKeys("n", "backspace")),
	}
}

// NewImportModel creates the import screen. importer may be nil when Strava is not configured.
func NewImportModel(importer *service.ImportService) ImportModel {
	in := textinput.New()
	in.Placeholder = startLayout
	in.CharLimit = len(startLayout)
	in.Width = len(startLayout) + 2

	return ImportModel{
		importer: importer,
		start:    in,
		keys:     defaultImportKeyMap(),
	}
}

// Init pre-fills the start time with where the last import ended
func (m ImportModel) Init() tea.Cmd {
	if m.importer == nil {
		return nil
	}
	return suggestStart(m.importer)
}

type suggestedStartMsg struct {
	start time.Time
}

func suggestStart(importer *service.ImportService) tea.Cmd {
	return func() tea.Msg {
		return suggestedStartMsg{start: importer.SuggestedStart(context.Background(), time.Now())}
	}
}

type draftMsg struct {
	draft service.Draft
	err   error
}

func awaitDraft(f *async.Future[service.Draft]) tea.Cmd {
	return func() tea.Msg {
		d, err := f.Await(context.Background())
		return draftMsg{draft: d, err: err}
	}
}

func awaitImportSave(f *async.Future[workout.Record]) tea.Cmd {
	return func() tea.Msg {
		r, err := f.Await(context.Background())
		return WorkoutRecordedMsg{Record: r, Err: err}
	}
}

// Editing reports whether key presses belong to the text input
func (m ImportModel) Editing() bool {
	return m.importer != nil && m.stage == importEnterStart
}

// Update handles messages
func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.importer == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case suggestedStartMsg:
		if m.start.Value() == "" {
			m.start.SetValue(msg.start.Local().Format(startLayout))
		}
		m.start.Focus()
		return m, textinput.Blink

	case draftMsg:
		if msg.err != nil {
			m.stage = importEnterStart
			m.err = msg.err
			return m, nil
		}
		m.stage = importReview
		m.draft = msg.draft
		return m, nil

	case WorkoutRecordedMsg:
		if m.stage != importSaving {
			return m, nil
		}
		m.err = msg.Err
		if msg.Err != nil {
			m.stage = importReview
			return m, nil
		}
		m.stage = importEnterStart
		m.start.SetValue("")
		return m, suggestStart(m.importer)

	case tea.KeyMsg:
		switch m.stage {
		case importEnterStart:
			if key.Matches(msg, m.keys.Submit) {
				start, err := time.ParseInLocation(startLayout, strings.TrimSpace(m.start.Value()), time.Local)
				if err != nil {
					m.err = fmt.Errorf("start time must look like %s", startLayout)
					return m, nil
				}
				m.err = nil
				m.stage = importQuerying
				return m, awaitDraft(m.importer.Draft(context.Background(), start))
			}
		case importReview:
			switch {
			case key.Matches(msg, m.keys.Confirm):
				m.stage = importSaving
				m.err = nil
				return m, awaitImportSave(m.importer.Save(context.Background(), m.draft))
			case key.Matches(msg, m.keys.Cancel):
				m.stage = importEnterStart
				return m, nil
			}
			return m, nil
		default:
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.start, cmd = m.start.Update(msg)
	return m, cmd
}

// View renders the import screen
func (m ImportModel) View() string {
	sections := []string{cardTitleStyle.Render("Import from Strava")}

	if m.importer == nil {
		sections = append(sections, statusStyle.Render("Strava is not configured. Add strava.client_id and strava.client_secret to ~/.getsneaks/config.json."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	switch m.stage {
	case importEnterStart:
		sections = append(sections,
			"When did your workout start?",
			lipgloss.JoinHorizontal(lipgloss.Left, metricLabelStyle.Render("Start"), m.start.View()),
		)
		if short, daily, ok := m.importer.RateLimitStatus(); ok {
			sections = append(sections, statusStyle.Render(fmt.Sprintf("API requests left: %d (15 min), %d (today)", short, daily)))
		}
	case importQuerying:
		sections = append(sections, "Asking Strava what you ran...")
	case importReview, importSaving:
		sections = append(sections, m.renderDraft())
	}

	if m.err != nil {
		msg := m.err.Error()
		if errors.Is(m.err, strava.ErrNoSensorData) {
			msg = "Strava has no run recorded since that time."
		}
		sections = append(sections, errorStyle.Render("\n"+msg))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ImportModel) renderDraft() string {
	d := m.draft
	lines := []string{
		RenderMetric("Date", d.Start.Format(workout.LabelLayout)),
		RenderMetric("Miles", fmt.Sprintf("%.2f", d.Miles)),
		RenderMetric("Time", d.DurationText),
		RenderMetric("Calories", fmt.Sprintf("%.2f", d.Calories)),
		"",
	}
	if m.stage == importSaving {
		lines = append(lines, statusStyle.Render("Saving..."))
	} else {
		lines = append(lines, warningStyle.Render("Save this workout to Strava and your sneakers? (y/n)"))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
