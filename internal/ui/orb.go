// ABOUTME: ASCII orb visualizer driven by analyzer snapshots
// ABOUTME: Radius breathes with level, surface wobbles with energy and phase
package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumalearn/livetutor-go/internal/analyzer"
)

var (
	coreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	bodyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	rimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
)

// renderOrb draws the orb into a width x height character grid. The base
// radius breathes with the combined level and the rim wobbles on three lobes
// advanced by the analyzer phase, so the orb visibly reacts to whoever is
// speaking.
func renderOrb(snap analyzer.Snapshot, width, height int) string {
	if width < 8 || height < 4 {
		return ""
	}

	energy := snap.Energy
	level := math.Max(snap.InLevel, snap.OutLevel)

	cx := float64(width) / 2
	cy := float64(height) / 2
	base := math.Min(cx, cy) * (0.55 + 0.3*level)

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Terminal cells are about twice as tall as wide.
			dx := (float64(x) - cx) * 0.55
			dy := float64(y) - cy
			dist := math.Sqrt(dx*dx + dy*dy)
			theta := math.Atan2(dy, dx)

			wobble := 1 + 0.18*energy*math.Sin(3*theta+snap.Phase*2)
			r := base * wobble

			switch {
			case dist < r*0.4:
				b.WriteString(coreStyle.Render("●"))
			case dist < r*0.8:
				b.WriteString(bodyStyle.Render("◍"))
			case dist < r:
				b.WriteString(rimStyle.Render("·"))
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// renderBins draws a compact spectrum strip from analyzer bins.
func renderBins(bins [analyzer.NumBins]byte, width int) string {
	if width <= 0 {
		return ""
	}
	blocks := []rune(" ▁▂▃▄▅▆▇█")
	step := analyzer.NumBins / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i+step <= analyzer.NumBins && b.Len() < width*4; i += step {
		sum := 0
		for j := i; j < i+step; j++ {
			sum += int(bins[j])
		}
		avg := sum / step
		b.WriteRune(blocks[avg*(len(blocks)-1)/255])
	}
	return b.String()
}

// renderLevel draws a horizontal meter for a 0..1 level.
func renderLevel(level float64, width int) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(level * float64(width))
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteRune('█')
		} else {
			b.WriteRune('░')
		}
	}
	return b.String()
}
