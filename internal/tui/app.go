package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"getsneaks/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenHistory Screen = iota
	ScreenRecord
	ScreenOldSneaks
	ScreenImport
	ScreenSync
	ScreenHelp
)

const shoeBarWidth = 30

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	history    HistoryModel
	record     RecordModel
	oldSneaks  OldSneaksModel
	importer   ImportModel
	syncScreen SyncModel
	help       HelpModel

	// open while the shoes are due for replacement
	modal *ReplaceShoesModal

	historyService *service.HistoryService
	syncEnabled    bool

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies.
// importer and syncer may be nil when Strava or archive sync are not configured.
func NewApp(history *service.HistoryService, importer *service.ImportService, syncer *service.SyncService) *App {
	return &App{
		screen:         ScreenHistory,
		historyService: history,
		syncEnabled:    syncer != nil,
		history:        NewHistoryModel(history),
		record:         NewRecordModel(history),
		oldSneaks:      NewOldSneaksModel(history),
		importer:       NewImportModel(importer),
		syncScreen:     NewSyncModel(syncer),
		help:           NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.history.Init()
}

// editing reports whether key presses belong to the screen: a text input or a y/n prompt
func (a *App) editing() bool {
	switch a.screen {
	case ScreenHistory:
		return a.history.Confirming()
	case ScreenRecord:
		return true
	case ScreenImport:
		return a.importer.Editing()
	}
	return false
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.modal != nil {
			var cmd tea.Cmd
			*a.modal, cmd = a.modal.Update(msg)
			return a, cmd
		}
		if a.editing() {
			if msg.String() == "esc" && a.screen != ScreenHistory {
				return a, a.switchTo(ScreenHistory)
			}
			break
		}
		if a.syncScreen.Syncing() && a.screen == ScreenSync {
			break
		}
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "1":
			return a, a.switchTo(ScreenHistory)
		case "2":
			return a, a.switchTo(ScreenRecord)
		case "3":
			return a, a.switchTo(ScreenOldSneaks)
		case "4":
			return a, a.switchTo(ScreenImport)
		case "5":
			return a, a.switchTo(ScreenSync)
		case "?":
			if a.screen != ScreenHelp {
				a.prevScreen = a.screen
				a.screen = ScreenHelp
			}
			return a, nil
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case HistoryRefreshedMsg:
		m, cmd := a.history.Update(msg)
		a.history = m.(HistoryModel)
		a.checkShoes()
		return a, cmd

	case WorkoutRecordedMsg:
		return a, a.workoutRecorded(msg)

	case ShoesArchivedMsg:
		return a, a.shoesArchived(msg)

	case ModalClosedMsg:
		a.modal = nil
		a.status = fmt.Sprintf("%.2f mi on these sneakers", a.historyService.ShoeState().CumulativeMiles)
		return a, nil

	case syncProgressMsg:
		m, cmd := a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
		return a, cmd

	case SyncDoneMsg:
		m, cmd := a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
		switch {
		case msg.Err != nil:
			a.status = fmt.Sprintf("Sync failed: %v", msg.Err)
		case msg.Result != nil && msg.Result.Sent > 0:
			a.status = fmt.Sprintf("Sent %d archived pair(s)", msg.Result.Sent)
		}
		return a, tea.Batch(cmd, loadPeriods(a.historyService))

	case periodsLoadedMsg, periodWorkoutsMsg:
		m, cmd := a.oldSneaks.Update(msg)
		a.oldSneaks = m.(OldSneaksModel)
		return a, cmd

	case suggestedStartMsg, draftMsg:
		m, cmd := a.importer.Update(msg)
		a.importer = m.(ImportModel)
		return a, cmd
	}

	return a, a.updateScreen(msg)
}

// updateScreen delegates a message to the current screen
func (a *App) updateScreen(msg tea.Msg) tea.Cmd {
	var m tea.Model
	var cmd tea.Cmd
	switch a.screen {
	case ScreenHistory:
		m, cmd = a.history.Update(msg)
		a.history = m.(HistoryModel)
	case ScreenRecord:
		m, cmd = a.record.Update(msg)
		a.record = m.(RecordModel)
	case ScreenOldSneaks:
		m, cmd = a.oldSneaks.Update(msg)
		a.oldSneaks = m.(OldSneaksModel)
	case ScreenImport:
		m, cmd = a.importer.Update(msg)
		a.importer = m.(ImportModel)
	case ScreenSync:
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}
	return cmd
}

func (a *App) switchTo(s Screen) tea.Cmd {
	if a.screen == s {
		return nil
	}
	a.screen = s
	a.status = ""
	switch s {
	case ScreenHistory:
		return a.history.Init()
	case ScreenRecord:
		return a.record.Init()
	case ScreenOldSneaks:
		return a.oldSneaks.Init()
	case ScreenImport:
		return a.importer.Init()
	case ScreenSync:
		return a.syncScreen.Init()
	}
	return nil
}

func (a *App) workoutRecorded(msg WorkoutRecordedMsg) tea.Cmd {
	var cmds []tea.Cmd
	if a.record.saving {
		m, cmd := a.record.Update(msg)
		a.record = m.(RecordModel)
		cmds = append(cmds, cmd)
	}
	m, cmd := a.importer.Update(msg)
	a.importer = m.(ImportModel)
	cmds = append(cmds, cmd)

	if msg.Err != nil {
		a.status = fmt.Sprintf("Workout not saved: %v", msg.Err)
		return tea.Batch(cmds...)
	}

	a.status = fmt.Sprintf("Saved %.2f mi on %s", msg.Record.DistanceMiles(), msg.Record.Label())
	// the service already holds the new workout, so only the view needs rebuilding
	hm, _ := a.history.Update(HistoryRefreshedMsg{})
	a.history = hm.(HistoryModel)
	a.checkShoes()
	return tea.Batch(cmds...)
}

func (a *App) shoesArchived(msg ShoesArchivedMsg) tea.Cmd {
	a.modal = nil
	if msg.Err != nil {
		a.status = fmt.Sprintf("Could not retire sneakers: %v", msg.Err)
		return nil
	}

	hm, _ := a.history.Update(HistoryRefreshedMsg{})
	a.history = hm.(HistoryModel)
	cmds := []tea.Cmd{loadPeriods(a.historyService)}

	if msg.Period == nil {
		a.status = "Nothing to retire"
		return tea.Batch(cmds...)
	}
	a.status = fmt.Sprintf("Retired sneakers after %.2f mi (%d workouts)", msg.Period.TotalMiles, len(msg.Archived))

	if a.syncEnabled {
		var cmd tea.Cmd
		a.syncScreen, cmd = a.syncScreen.Start()
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// checkShoes opens the replacement modal once the threshold is reached
func (a *App) checkShoes() {
	if a.modal != nil {
		return
	}
	state := a.historyService.ShoeState()
	if state.NeedsReplacement {
		m := NewReplaceShoesModal(a.historyService, state.CumulativeMiles)
		a.modal = &m
	}
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenHistory:
		content = a.history.View()
	case ScreenRecord:
		content = a.record.View()
	case ScreenOldSneaks:
		content = a.oldSneaks.View()
	case ScreenImport:
		content = a.importer.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	if a.modal != nil {
		content = a.modal.View()
		if a.width > 0 {
			content = lipgloss.PlaceHorizontal(a.width, lipgloss.Center, content)
		}
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	state := a.historyService.ShoeState()
	shoes := fmt.Sprintf("%s %.1f / %.0f mi",
		RenderProgressBar(state.Progress(), shoeBarWidth), state.CumulativeMiles, state.ThresholdMiles)
	return lipgloss.JoinHorizontal(lipgloss.Center, headerStyle.Render("GetSneaks"), "  ", shoes)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "History", ScreenHistory},
		{"2", "Record", ScreenRecord},
		{"3", "Old Sneaks", ScreenOldSneaks},
		{"4", "Import", ScreenImport},
		{"5", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}
