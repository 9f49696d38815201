// ABOUTME: Reframes arbitrary device callback chunks into fixed-size frames
// ABOUTME: Ring-buffer backed so callback sizes never leak downstream
package capture

import (
	"log"
	"sync"

	"github.com/lumalearn/livetutor-go/internal/analyzer"
	"github.com/lumalearn/livetutor-go/internal/pcm"
	smallnest "github.com/smallnest/ringbuffer"
)

// ringFrames is how many frames of headroom the ring buffer holds before the
// oldest audio is dropped.
const ringFrames = 32

// framer accumulates PCM16 bytes from the device callback and emits exactly
// frameSize samples at a time, in production order.
type framer struct {
	mu         sync.Mutex
	ring       *smallnest.RingBuffer
	frameBytes int
	tap        *analyzer.Tap
	emit       func([]float32)
}

func newFramer(frameSize int, tap *analyzer.Tap, emit func([]float32)) *framer {
	frameBytes := frameSize * 2
	return &framer{
		ring:       smallnest.New(frameBytes * ringFrames),
		frameBytes: frameBytes,
		tap:        tap,
		emit:       emit,
	}
}

// write ingests device bytes and flushes every complete frame. Runs on the
// realtime device callback, so overflow drops the oldest audio instead of
// blocking.
func (f *framer) write(data []byte) {
	f.mu.Lock()

	if len(data) > f.ring.Capacity() {
		data = data[len(data)-f.ring.Capacity():]
	}
	if free := f.ring.Free(); free < len(data) {
		discard := make([]byte, len(data)-free)
		_, _ = f.ring.Read(discard)
		log.Printf("Capture ring overflow, dropped %d bytes", len(discard))
	}
	_, _ = f.ring.Write(data)

	var frames [][]float32
	for f.ring.Length() >= f.frameBytes {
		raw := make([]byte, f.frameBytes)
		if _, err := f.ring.Read(raw); err != nil {
			break
		}

		samples, err := pcm.DecodeSamples(raw)
		if err != nil {
			// Frame size is even by construction; this cannot happen.
			log.Printf("Capture frame decode error: %v", err)
			continue
		}
		frames = append(frames, samples)
	}
	f.mu.Unlock()

	for _, samples := range frames {
		if f.tap != nil {
			f.tap.Push(samples)
		}
		f.emit(samples)
	}
}

// reset discards buffered audio.
func (f *framer) reset() {
	f.mu.Lock()
	f.ring.Reset()
	f.mu.Unlock()
}
