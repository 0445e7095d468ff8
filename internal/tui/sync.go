package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"getsneaks/internal/service"
)

// SyncModel is the archive sync screen model
type SyncModel struct {
	syncService *service.SyncService
	syncing     bool
	progress    *service.SyncProgress
	result      *service.SyncResult
	err         error
	done        bool
	start       key.Binding
}

// NewSyncModel creates a new sync model. ss may be nil when no sync endpoint is configured.
func NewSyncModel(ss *service.SyncService) SyncModel {
	return SyncModel{
		syncService: ss,
		start:       key.NewBinding(key.WithKeys("enter", "s")),
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

// syncProgressMsg carries one finished period of a push in flight
type syncProgressMsg struct {
	progress service.SyncProgress
	updates  <-chan service.SyncProgress
	done     <-chan SyncDoneMsg
}

// Syncing reports whether a push is in flight
func (m SyncModel) Syncing() bool {
	return m.syncing
}

// Start begins a push unless one is running or sync is disabled
func (m SyncModel) Start() (SyncModel, tea.Cmd) {
	if m.syncService == nil || m.syncing {
		return m, nil
	}
	m.syncing = true
	m.done = false
	m.err = nil
	m.result = nil
	m.progress = nil
	return m, runSync(m.syncService)
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		p := msg.progress
		m.progress = &p
		return m, waitForSync(msg.updates, msg.done)

	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.start) {
			return m.Start()
		}
	}
	return m, nil
}

// runSync pushes in the background and streams one message per period,
// then the final SyncDoneMsg once the progress channel closes.
func runSync(ss *service.SyncService) tea.Cmd {
	updates := make(chan service.SyncProgress, 8)
	done := make(chan SyncDoneMsg, 1)
	go func() {
		result, err := ss.PushArchives(context.Background(), updates)
		done <- SyncDoneMsg{Result: result, Err: err}
	}()
	return waitForSync(updates, done)
}

func waitForSync(updates <-chan service.SyncProgress, done <-chan SyncDoneMsg) tea.Cmd {
	return func() tea.Msg {
		if p, ok := <-updates; ok {
			return syncProgressMsg{progress: p, updates: updates, done: done}
		}
		return <-done
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	sections := []string{cardTitleStyle.Render("Archive Sync")}

	if m.syncService == nil {
		sections = append(sections, statusStyle.Render("  Sync is off. Set sync.endpoint in ~/.getsneaks/config.json to send retired sneakers to your account."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	switch {
	case m.syncing && m.progress != nil:
		p := m.progress
		sections = append(sections,
			fmt.Sprintf("\n  Sent %d of %d retired pairs", p.Completed, p.Total),
			"  "+RenderProgressBar(float64(p.Completed)/float64(p.Total), 30))
		if p.Error != nil {
			sections = append(sections, "  "+warningStyle.Render(fmt.Sprintf("period %d left pending", p.PeriodID)))
		}
	case m.syncing:
		sections = append(sections, "\n  Sending retired sneakers...")
	case m.done:
		sections = append(sections, successStyle.Render("\n  Sync complete!"), m.renderSummary())
	default:
		sections = append(sections,
			"\n  Sends every retired pair of sneakers that has not reached your account yet.",
			statusStyle.Render("  Press 's' or Enter to start sync"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderSummary() string {
	if m.result == nil {
		return ""
	}

	r := m.result
	lines := []string{""}

	switch {
	case r.Pending == 0:
		lines = append(lines, statusStyle.Render("  Nothing to send"))
	case r.Sent > 0:
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d of %d archives sent", r.Sent, r.Pending)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "", warningStyle.Render(fmt.Sprintf("  %d failed, they will be retried next sync", len(r.Errors))))
		for _, err := range r.Errors {
			lines = append(lines, "  "+errorStyle.Render(err.Error()))
		}
	}

	return strings.Join(lines, "\n")
}
