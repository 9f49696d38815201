// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the tutor UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lumalearn/livetutor-go/internal/tutor"
)

// Run starts the TUI and blocks until the user quits.
func Run(ctrl *tutor.Controller, volCtrl VolumeControl) error {
	p := tea.NewProgram(NewModel(ctrl, volCtrl), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
