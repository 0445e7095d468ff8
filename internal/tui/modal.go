package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"getsneaks/internal/service"
	"getsneaks/internal/store"
	"getsneaks/internal/workout"
)

// ReplaceShoesModal asks whether to retire the current shoes
type ReplaceShoesModal struct {
	history *service.HistoryService
	miles   float64
	keys    modalKeyMap
}

type modalKeyMap struct {
	Confirm key.Binding
	Dismiss key.Binding
}

func defaultModalKeyMap() modalKeyMap {
	return modalKeyMap{
		Confirm: key.NewBinding(key.WithKeys("y", "Y")),
		Dismiss: key.NewBinding(key.WithKeys("n", "N", "esc")),
	}
}

// NewReplaceShoesModal creates the modal for the given mileage
func NewReplaceShoesModal(h *service.HistoryService, miles float64) ReplaceShoesModal {
	return ReplaceShoesModal{history: h, miles: miles, keys: defaultModalKeyMap()}
}

// ShoesArchivedMsg is sent after the current period was retired
type ShoesArchivedMsg struct {
	Period   *store.ShoePeriod
	Archived []workout.Record
	Err      error
}

// ModalClosedMsg is sent when the modal is dismissed without archiving
type ModalClosedMsg struct{}

func archiveShoes(h *service.HistoryService) tea.Cmd {
	return func() tea.Msg {
		p, archived, err := h.ArchiveShoes(context.Background())
		return ShoesArchivedMsg{Period: p, Archived: archived, Err: err}
	}
}

// Update handles key presses. Everything else is swallowed while the modal is open.
func (m ReplaceShoesModal) Update(msg tea.Msg) (ReplaceShoesModal, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m, archiveShoes(m.history)
		case key.Matches(msg, m.keys.Dismiss):
			return m, func() tea.Msg { return ModalClosedMsg{} }
		}
	}
	return m, nil
}

// View renders the modal
func (m ReplaceShoesModal) View() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		warningStyle.Bold(true).Render(fmt.Sprintf("You have reached %.0f mi in your current sneakers", workout.ShoeThresholdMiles)),
		"",
		fmt.Sprintf("%.2f miles so far. Time for a new pair?", m.miles),
		"",
		RenderKeyHelp("y", "replace and archive")+"   "+RenderKeyHelp("n", "not yet"),
	)
	return modalStyle.Render(body)
}
