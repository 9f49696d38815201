// ABOUTME: Bubbletea model for the live tutor TUI
// ABOUTME: Polls controller status and analyzer snapshots on a render tick
package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lumalearn/livetutor-go/internal/analyzer"
	"github.com/lumalearn/livetutor-go/internal/tutor"
	"github.com/lumalearn/livetutor-go/internal/version"
)

const tickInterval = 33 * time.Millisecond

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = map[tutor.Status]lipgloss.Style{
		tutor.StatusIdle:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		tutor.StatusConnecting: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		tutor.StatusListening:  lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		tutor.StatusSpeaking:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		tutor.StatusError:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	statusLabel = map[tutor.Status]string{
		tutor.StatusIdle:       "Ready",
		tutor.StatusConnecting: "Connecting…",
		tutor.StatusListening:  "Listening…",
		tutor.StatusSpeaking:   "Tutor speaking…",
		tutor.StatusError:      "Error",
	}
)

// VolumeControl adjusts playback volume. The output sink implements it.
type VolumeControl interface {
	SetVolume(volume int)
	SetMuted(muted bool)
}

// Model represents the TUI state
type Model struct {
	ctrl    *tutor.Controller
	volCtrl VolumeControl

	status tutor.Status
	errMsg string
	paused bool
	volume int
	muted  bool
	snap   analyzer.Snapshot

	width  int
	height int
}

// tickMsg drives the render loop
type tickMsg time.Time

// actionMsg carries the result of a controller action
type actionMsg struct{ err error }

// NewModel creates a new TUI model. A nil controller renders a static orb,
// which the tests use. volCtrl is optional.
func NewModel(ctrl *tutor.Controller, volCtrl VolumeControl) Model {
	return Model{
		ctrl:    ctrl,
		volCtrl: volCtrl,
		status:  tutor.StatusIdle,
		volume:  100,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.applyTick()
		return m, tick()
	case actionMsg:
		// Failures also land in the controller status; nothing extra here.
	}

	return m, nil
}

// applyTick pulls fresh status and analyzer state from the controller.
func (m *Model) applyTick() {
	if m.ctrl == nil {
		return
	}
	m.status, m.errMsg = m.ctrl.Status()
	m.paused = m.ctrl.Paused()
	active := m.status == tutor.StatusListening || m.status == tutor.StatusSpeaking
	m.snap = m.ctrl.Analyzer.Snapshot(active)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.ctrl != nil {
			m.ctrl.Stop()
		}
		return m, tea.Quit
	case "t", " ":
		return m, m.toggleTalk()
	case "p":
		if m.ctrl != nil {
			if m.paused {
				m.ctrl.Resume()
			} else {
				m.ctrl.Pause()
			}
			m.paused = !m.paused
		}
	case "r":
		return m, m.reset()
	case "up":
		m.setVolume(m.volume + 5)
	case "down":
		m.setVolume(m.volume - 5)
	case "m":
		m.muted = !m.muted
		if m.volCtrl != nil {
			m.volCtrl.SetMuted(m.muted)
		}
	}

	return m, nil
}

// setVolume clamps and applies the software volume.
func (m *Model) setVolume(volume int) {
	if volume < 0 {
		volume = 0
	} else if volume > 100 {
		volume = 100
	}
	m.volume = volume
	if m.volCtrl != nil {
		m.volCtrl.SetVolume(volume)
	}
}

// toggleTalk starts or stops the microphone off the UI goroutine, since a
// lazy connect can take a while.
func (m Model) toggleTalk() tea.Cmd {
	ctrl := m.ctrl
	if ctrl == nil {
		return nil
	}
	if m.status == tutor.StatusListening {
		return func() tea.Msg {
			ctrl.StopTalking()
			return actionMsg{}
		}
	}
	return func() tea.Msg {
		return actionMsg{err: ctrl.StartTalking(context.Background())}
	}
}

func (m Model) reset() tea.Cmd {
	ctrl := m.ctrl
	if ctrl == nil {
		return nil
	}
	return func() tea.Msg {
		return actionMsg{err: ctrl.Reset(context.Background())}
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := titleStyle.Render(version.Product) + "  " + m.renderStatus() + "\n\n"

	orbHeight := m.height - 8
	if orbHeight < 4 {
		orbHeight = 4
	}
	s += renderOrb(m.snap, m.width, orbHeight)

	meterWidth := m.width - 20
	if meterWidth < 10 {
		meterWidth = 10
	}
	s += fmt.Sprintf("\n you   [%s] %s\n", renderLevel(m.snap.InLevel, 12), renderBins(m.snap.InBins, meterWidth))
	s += fmt.Sprintf(" tutor [%s] %s\n", renderLevel(m.snap.OutLevel, 12), renderBins(m.snap.OutBins, meterWidth))

	muteMark := ""
	if m.muted {
		muteMark = " (muted)"
	}
	s += fmt.Sprintf(" vol   [%s] %d%%%s\n", renderLevel(float64(m.volume)/100, 12), m.volume, muteMark)

	if m.status == tutor.StatusError && m.errMsg != "" {
		s += "\n " + errorStyle.Render(m.errMsg) + "\n"
	}

	s += "\n" + helpStyle.Render(" t/space:Talk  p:Pause  r:Reset  ↑/↓:Volume  m:Mute  q:Quit") + "\n"
	return s
}

// renderStatus renders the status label, with a paused marker.
func (m Model) renderStatus() string {
	label, ok := statusLabel[m.status]
	if !ok {
		label = string(m.status)
	}
	if m.paused {
		label += " (paused)"
	}
	style, ok := statusStyle[m.status]
	if !ok {
		return label
	}
	return style.Render(label)
}
