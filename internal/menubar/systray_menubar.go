package menubar

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
	"pomotimer/internal/session"
	"pomotimer/internal/tracker"
)

// Controller is the part of the session controller the menu bar drives
type Controller interface {
	Status() session.Status
	PressSpace()
	SkipToBreak()
	SkipBreak()
	Reset()
}

// SystrayMenuBar shows the running session in the system tray
type SystrayMenuBar struct {
	mu            sync.RWMutex
	isInitialized bool
	controller    Controller
	quitHandler   func()
	toggleItem    *systray.MenuItem
	skipItem      *systray.MenuItem
	statusItem    *systray.MenuItem
}

// NewSystrayMenuBar creates a menu bar bound to controller
func NewSystrayMenuBar(controller Controller) *SystrayMenuBar {
	return &SystrayMenuBar{controller: controller}
}

// Run starts the systray menu bar. It blocks and must be called from the main goroutine.
func (smb *SystrayMenuBar) Run(quitHandler func()) {
	smb.quitHandler = quitHandler

	slog.Info("Starting systray menu bar")
	systray.Run(smb.onReady, smb.onExit)
}

// Quit closes the menu bar, which makes Run return
func (smb *SystrayMenuBar) Quit() {
	systray.Quit()
}

func (smb *SystrayMenuBar) onReady() {
	status := smb.controller.Status()

	smb.mu.Lock()
	setIcon(determineMenuState(status))
	systray.SetTitle(generateTitle(status))
	systray.SetTooltip(generateTooltip(status))

	smb.statusItem = systray.AddMenuItem(generateStatusText(status), "Current session")
	smb.statusItem.Disable()

	systray.AddSeparator()

	smb.toggleItem = systray.AddMenuItem(toggleLabel(status), "Start, pause or resume the timer")
	smb.skipItem = systray.AddMenuItem(skipLabel(status), "Move to the next phase")
	resetItem := systray.AddMenuItem("Reset", "Restart the current phase")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit Pomotimer", "Exit the application")

	smb.isInitialized = true
	smb.mu.Unlock()

	slog.Info("Menu bar initialized")

	go smb.handleClicks(resetItem, quitItem)
}

func (smb *SystrayMenuBar) onExit() {
	slog.Info("Menu bar exiting")
	if smb.quitHandler != nil {
		smb.quitHandler()
	}
}

func (smb *SystrayMenuBar) handleClicks(resetItem, quitItem *systray.MenuItem) {
	for {
		select {
		case <-smb.toggleItem.ClickedCh:
			smb.controller.PressSpace()
		case <-smb.skipItem.ClickedCh:
			if smb.controller.Status().Mode == session.ModeFocus {
				smb.controller.SkipToBreak()
			} else {
				smb.controller.SkipBreak()
			}
		case <-resetItem.ClickedCh:
			smb.controller.Reset()
		case <-quitItem.ClickedCh:
			slog.Info("Quit requested from menu bar")
			systray.Quit()
			return
		}
		smb.UpdateStatus(smb.controller.Status())
	}
}

// UpdateStatus refreshes the menu bar from a session snapshot
func (smb *SystrayMenuBar) UpdateStatus(status session.Status) {
	smb.mu.RLock()
	defer smb.mu.RUnlock()
	if !smb.isInitialized {
		return
	}

	setIcon(determineMenuState(status))
	systray.SetTitle(generateTitle(status))
	systray.SetTooltip(generateTooltip(status))
	smb.statusItem.SetTitle(generateStatusText(status))
	smb.toggleItem.SetTitle(toggleLabel(status))
	smb.skipItem.SetTitle(skipLabel(status))
}

// MenuState represents different visual states of the menu bar
type MenuState int

const (
	MenuStateIdle  MenuState = iota // Orange - idle or paused
	MenuStateFocus                  // Red - focus running
	MenuStateBreak                  // Green - break running
)

func determineMenuState(status session.Status) MenuState {
	if status.TimerState != tracker.TimerRunning {
		return MenuStateIdle
	}
	if status.Mode == session.ModeBreak {
		return MenuStateBreak
	}
	return MenuStateFocus
}

func setIcon(state MenuState) {
	switch state {
	case MenuStateIdle:
		systray.SetTemplateIcon(idleIcon, idleIcon)
	case MenuStateFocus:
		systray.SetTemplateIcon(focusIcon, focusIcon)
	case MenuStateBreak:
		systray.SetTemplateIcon(breakIcon, breakIcon)
	}
}

func generateTitle(status session.Status) string {
	var prefix string
	switch {
	case status.TimerState == tracker.TimerPaused:
		prefix = "⏸"
	case status.TimerState == tracker.TimerCompleted:
		prefix = "✅"
	case status.Mode == session.ModeBreak:
		prefix = "☕"
	default:
		prefix = "🍅"
	}
	return fmt.Sprintf("%s %s", prefix, session.FormatClock(status.Remaining))
}

func generateTooltip(status session.Status) string {
	phase := "Focus"
	if status.Mode == session.ModeBreak {
		phase = "Break"
		if status.LongBreakPending && !status.BreakWasShortened {
			phase = "Long break"
		}
	}

	tooltip := fmt.Sprintf("Pomotimer - %s (%s)\n%s left, %d%% done\nSessions: %d",
		phase, status.TimerState, session.FormatClock(status.Remaining),
		int(status.Progress*100), status.SessionCount)

	if b := status.Breathing; b != nil {
		tooltip += fmt.Sprintf("\n%s: %s (cycle %d/%d)",
			b.Pattern.Name(), b.Instruction, b.CycleCount+1, b.TargetCycles)
	}

	return tooltip
}

func generateStatusText(status session.Status) string {
	phase := "Focus"
	if status.Mode == session.ModeBreak {
		phase = "Break"
	}
	return fmt.Sprintf("%s %s · %d sessions", phase, session.FormatClock(status.Remaining), status.SessionCount)
}

func toggleLabel(status session.Status) string {
	switch {
	case status.PauseMenuActive:
		return pauseMenuLabel(status.PauseMenuSelection)
	case status.Selecting:
		return "Start break"
	case status.TimerState == tracker.TimerRunning:
		return "Pause"
	case status.TimerState == tracker.TimerPaused:
		return "Resume"
	case status.TimerState == tracker.TimerCompleted:
		return "Next phase"
	default:
		return "Start"
	}
}

func pauseMenuLabel(selection int) string {
	switch selection {
	case session.PauseMenuChangeActivity:
		return "Change activity"
	case session.PauseMenuReset:
		return "Reset break"
	default:
		return "Resume"
	}
}

func skipLabel(status session.Status) string {
	if status.Mode == session.ModeFocus {
		return "Skip to break"
	}
	return "Skip break"
}

// Minimal 16x16 icons
var (
	idleIcon = []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0xF3, 0xFF, 0x61, 0x00, 0x00, 0x00,
		0x13, 0x49, 0x44, 0x41, 0x54, 0x38, 0xCB, 0x63, 0xF8, 0x8F, 0x00, 0x01,
		0x01, 0x01, 0x00, 0x18, 0xDD, 0x8D, 0xB4, 0x1D, 0x00, 0x00, 0x00, 0x00,
		0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
	}

	focusIcon = []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0xF3, 0xFF, 0x61, 0x00, 0x00, 0x00,
		0x13, 0x49, 0x44, 0x41, 0x54, 0x38, 0xCB, 0x63, 0xF8, 0x0F, 0x00, 0x01,
		0x01, 0x01, 0x00, 0x18, 0xDD, 0x8D, 0xB4, 0x1D, 0x00, 0x00, 0x00, 0x00,
		0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
	}

	breakIcon = []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0xF3, 0xFF, 0x61, 0x00, 0x00, 0x00,
		0x13, 0x49, 0x44, 0x41, 0x54, 0x38, 0xCB, 0x63, 0xF8, 0x0F, 0x80, 0x01,
		0x01, 0x01, 0x00, 0x18, 0xDD, 0x8D, 0xB4, 0x1D, 0x00, 0x00, 0x00, 0x00,
		0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
	}
)
