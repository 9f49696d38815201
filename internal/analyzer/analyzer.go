// ABOUTME: Combined capture/playback analyzer feeding the visualizer
// ABOUTME: Owns the phase accumulator and derives per-frame snapshots
package analyzer

import "math"

// Snapshot is one rendering tick's worth of measurements. It is ephemeral:
// recomputed every tick, never stored.
type Snapshot struct {
	InLevel  float64
	OutLevel float64
	InBins   [NumBins]byte
	OutBins  [NumBins]byte
	Energy   float64
	Phase    float64
	Active   bool
}

// Analyzer holds the input and output taps plus the visual phase
// accumulator. Taps are shared by reference with capture and playback; the
// analyzer itself owns no audio resources.
type Analyzer struct {
	In  *Tap
	Out *Tap

	phase float64
}

// New creates an analyzer with fresh taps.
func New() *Analyzer {
	return &Analyzer{
		In:  NewTap(),
		Out: NewTap(),
	}
}

// Snapshot reads both taps and advances the phase accumulator. Each tap is
// read exactly once per tick, so the bins and the level come from the same
// smoothing step. Output level weighs more heavily than input in the combined
// energy, since synthetic speech dominates the visual.
func (a *Analyzer) Snapshot(active bool) Snapshot {
	inBins, in := a.In.Read()
	outBins, out := a.Out.Read()

	energy := clamp01(in*0.85 + out*1.15)

	step := 0.006
	if active {
		step = 0.014
	}
	a.phase += step + energy*0.02

	return Snapshot{
		InLevel:  in,
		OutLevel: out,
		InBins:   inBins,
		OutBins:  outBins,
		Energy:   energy,
		Phase:    a.phase,
		Active:   active,
	}
}

// Reset clears both taps. The phase accumulator survives so the orb does not
// visibly jump on reconnect.
func (a *Analyzer) Reset() {
	a.In.Reset()
	a.Out.Reset()
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
