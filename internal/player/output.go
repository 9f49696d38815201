// ABOUTME: Audio output sink using the oto library
// ABOUTME: Handles PCM16 playback with software volume control
package player

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Sink is where scheduled segments are rendered. The scheduler exclusively
// owns its sink; nothing else writes to the output device.
type Sink interface {
	// Play starts playing raw little-endian PCM16 immediately.
	Play(raw []byte)
	// Stop silences everything currently playing.
	Stop()
	// Close releases the device. Idempotent.
	Close() error
}

// OtoSink renders PCM16 through the system output device.
type OtoSink struct {
	otoCtx *oto.Context

	mu      sync.Mutex
	players []*oto.Player
	volume  int
	muted   bool
	closed  bool
}

// NewOtoSink initializes the output device at the given rate, mono.
func NewOtoSink(sampleRate int) (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	return &OtoSink{
		otoCtx: ctx,
		volume: 100,
	}, nil
}

// Play renders one PCM16 buffer. Finished players are pruned as a side
// effect so long sessions do not accumulate handles.
func (o *OtoSink) Play(raw []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	raw = applyVolume(raw, o.volume, o.muted)

	live := o.players[:0]
	for _, p := range o.players {
		if p.IsPlaying() {
			live = append(live, p)
		} else {
			_ = p.Close()
		}
	}
	o.players = live

	player := o.otoCtx.NewPlayer(bytes.NewReader(raw))
	player.Play()
	o.players = append(o.players, player)
}

// Stop silences and releases every active player.
func (o *OtoSink) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, p := range o.players {
		_ = p.Close()
	}
	o.players = nil
}

// Close stops playback and marks the sink unusable. The oto context itself
// has no close; suspending it is enough to quiet the device.
func (o *OtoSink) Close() error {
	o.Stop()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	return o.otoCtx.Suspend()
}

// SetVolume sets the software volume (0-100).
func (o *OtoSink) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	} else if volume > 100 {
		volume = 100
	}

	o.mu.Lock()
	o.volume = volume
	o.mu.Unlock()
}

// SetMuted toggles mute.
func (o *OtoSink) SetMuted(muted bool) {
	o.mu.Lock()
	o.muted = muted
	o.mu.Unlock()
}

// applyVolume scales PCM16 samples in software.
func applyVolume(raw []byte, volume int, muted bool) []byte {
	if volume == 100 && !muted {
		return raw
	}

	out := make([]byte, len(raw))
	if muted {
		return out
	}

	for i := 0; i+1 < len(raw); i += 2 {
		s := int16(binary.LittleEndian.Uint16(raw[i:]))
		scaled := int32(s) * int32(volume) / 100
		binary.LittleEndian.PutUint16(out[i:], uint16(int16(scaled)))
	}
	return out
}
