// ABOUTME: Tests for TUI model and renderers
// ABOUTME: Covers key handling, sizing, and the orb/meter drawing helpers
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lumalearn/livetutor-go/internal/analyzer"
	"github.com/lumalearn/livetutor-go/internal/tutor"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil, nil)

	if model.status != tutor.StatusIdle {
		t.Errorf("expected idle status initially, got %s", model.status)
	}
	if model.paused {
		t.Error("expected paused to be false initially")
	}
}

func TestViewBeforeSizing(t *testing.T) {
	model := NewModel(nil, nil)
	if model.View() != "Loading..." {
		t.Error("expected loading placeholder before first WindowSizeMsg")
	}
}

func TestWindowSizeApplied(t *testing.T) {
	model := NewModel(nil, nil)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)

	if model.width != 80 || model.height != 24 {
		t.Errorf("size not applied: %dx%d", model.width, model.height)
	}

	view := model.View()
	if !strings.Contains(view, "LiveTutor") {
		t.Error("expected product name in view")
	}
	if !strings.Contains(view, "t/space:Talk") {
		t.Error("expected help line in view")
	}
}

func TestQuitKey(t *testing.T) {
	model := NewModel(nil, nil)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg from quit command")
	}
}

func TestTalkKeyWithoutController(t *testing.T) {
	model := NewModel(nil, nil)

	if _, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")}); cmd != nil {
		t.Error("talk without a controller should be inert")
	}
	if _, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); cmd != nil {
		t.Error("reset without a controller should be inert")
	}
}

func TestTickReschedules(t *testing.T) {
	model := NewModel(nil, nil)

	_, cmd := model.Update(tickMsg{})
	if cmd == nil {
		t.Error("tick must schedule the next tick")
	}
}

type fakeVolume struct {
	volume int
	muted  bool
}

func (f *fakeVolume) SetVolume(volume int) { f.volume = volume }
func (f *fakeVolume) SetMuted(muted bool)  { f.muted = muted }

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestVolumeKeys(t *testing.T) {
	vol := &fakeVolume{volume: 100}
	model := NewModel(nil, vol)

	if model.volume != 100 {
		t.Errorf("expected default volume 100, got %d", model.volume)
	}

	updated, _ := model.Update(key("down"))
	model = updated.(Model)
	if model.volume != 95 || vol.volume != 95 {
		t.Errorf("expected volume 95, got model=%d sink=%d", model.volume, vol.volume)
	}

	updated, _ = model.Update(key("up"))
	model = updated.(Model)
	if model.volume != 100 || vol.volume != 100 {
		t.Errorf("expected volume 100, got model=%d sink=%d", model.volume, vol.volume)
	}

	// Up at the ceiling stays clamped.
	updated, _ = model.Update(key("up"))
	model = updated.(Model)
	if model.volume != 100 {
		t.Errorf("volume must clamp at 100, got %d", model.volume)
	}

	for i := 0; i < 30; i++ {
		updated, _ = model.Update(key("down"))
		model = updated.(Model)
	}
	if model.volume != 0 || vol.volume != 0 {
		t.Errorf("volume must clamp at 0, got model=%d sink=%d", model.volume, vol.volume)
	}
}

func TestMuteKey(t *testing.T) {
	vol := &fakeVolume{}
	model := NewModel(nil, vol)

	updated, _ := model.Update(key("m"))
	model = updated.(Model)
	if !model.muted || !vol.muted {
		t.Error("expected mute applied to model and sink")
	}

	updated, _ = model.Update(key("m"))
	model = updated.(Model)
	if model.muted || vol.muted {
		t.Error("expected mute toggled back off")
	}

	updated, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)
	updated, _ = model.Update(key("m"))
	model = updated.(Model)
	if !strings.Contains(model.View(), "(muted)") {
		t.Error("expected muted marker in view")
	}
}

func TestVolumeKeysWithoutSink(t *testing.T) {
	model := NewModel(nil, nil)

	updated, _ := model.Update(key("down"))
	model = updated.(Model)
	if model.volume != 95 {
		t.Errorf("volume keys should still track without a sink, got %d", model.volume)
	}
	if _, ok := updated.(Model); !ok {
		t.Fatal("update must return the model")
	}
}

func TestStatusLabels(t *testing.T) {
	cases := map[tutor.Status]string{
		tutor.StatusIdle:       "Ready",
		tutor.StatusConnecting: "Connecting…",
		tutor.StatusListening:  "Listening…",
		tutor.StatusSpeaking:   "Tutor speaking…",
		tutor.StatusError:      "Error",
	}

	for status, want := range cases {
		model := NewModel(nil, nil)
		model.status = status
		if got := model.renderStatus(); !strings.Contains(got, want) {
			t.Errorf("status %s: expected label %q in %q", status, want, got)
		}
	}
}

func TestPausedMarker(t *testing.T) {
	model := NewModel(nil, nil)
	model.paused = true

	if !strings.Contains(model.renderStatus(), "(paused)") {
		t.Error("expected paused marker in status label")
	}
}

func TestRenderOrbTinyGrid(t *testing.T) {
	if got := renderOrb(analyzer.Snapshot{}, 4, 2); got != "" {
		t.Errorf("tiny grid should render empty, got %q", got)
	}
}

func TestRenderOrbShape(t *testing.T) {
	quiet := renderOrb(analyzer.Snapshot{}, 40, 12)
	loud := renderOrb(analyzer.Snapshot{OutLevel: 1, Energy: 1}, 40, 12)

	if strings.Count(quiet, "\n") != 12 {
		t.Errorf("expected 12 rows, got %d", strings.Count(quiet, "\n"))
	}
	if strings.Count(loud, "●") <= strings.Count(quiet, "●") {
		t.Error("orb core should grow with level")
	}
}

func TestRenderLevel(t *testing.T) {
	if got := renderLevel(0, 10); got != "░░░░░░░░░░" {
		t.Errorf("empty meter wrong: %q", got)
	}
	if got := renderLevel(1, 10); got != "██████████" {
		t.Errorf("full meter wrong: %q", got)
	}
	if got := renderLevel(0.5, 10); strings.Count(got, "█") != 5 {
		t.Errorf("half meter wrong: %q", got)
	}
	if got := renderLevel(2.0, 4); got != "████" {
		t.Errorf("overdriven level should clamp: %q", got)
	}
}

func TestRenderBins(t *testing.T) {
	var silent [analyzer.NumBins]byte
	if got := renderBins(silent, 32); strings.TrimSpace(got) != "" {
		t.Errorf("silent bins should render blank, got %q", got)
	}

	var hot [analyzer.NumBins]byte
	for i := range hot {
		hot[i] = 255
	}
	if got := renderBins(hot, 32); !strings.Contains(got, "█") {
		t.Errorf("hot bins should render full blocks, got %q", got)
	}

	if got := renderBins(hot, 0); got != "" {
		t.Errorf("zero width should render empty, got %q", got)
	}
}
