// ABOUTME: Tests for the capture reframing buffer
// ABOUTME: Covers frame boundaries, uneven writes, ordering, and overflow
package capture

import (
	"encoding/binary"
	"testing"

	"github.com/lumalearn/livetutor-go/internal/analyzer"
)

func pcm16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestExactFrameEmission(t *testing.T) {
	var frames [][]float32
	f := newFramer(4, nil, func(s []float32) {
		frames = append(frames, s)
	})

	f.write(pcm16Bytes([]int16{100, 200, 300, 400}))

	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if len(frames[0]) != 4 {
		t.Errorf("expected 4 samples, got %d", len(frames[0]))
	}
}

func TestUnevenWritesReframe(t *testing.T) {
	var frames [][]float32
	f := newFramer(4, nil, func(s []float32) {
		frames = append(frames, s)
	})

	data := pcm16Bytes([]int16{1, 2, 3, 4, 5, 6, 7, 8})

	// Deliver in awkward chunk sizes, splitting mid-sample.
	f.write(data[:3])
	f.write(data[3:7])
	f.write(data[7:])

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}

	// Sample values must survive reframing in order.
	for i, frame := range frames {
		for j, s := range frame {
			want := float32(int16(i*4+j+1)) / 32768.0
			if s != want {
				t.Errorf("frame %d sample %d: want %v, got %v", i, j, want, s)
			}
		}
	}
}

func TestPartialFrameHeldBack(t *testing.T) {
	var frames int
	f := newFramer(4, nil, func([]float32) { frames++ })

	f.write(pcm16Bytes([]int16{1, 2, 3}))
	if frames != 0 {
		t.Errorf("partial frame must not be emitted, got %d frames", frames)
	}

	f.write(pcm16Bytes([]int16{4}))
	if frames != 1 {
		t.Errorf("expected 1 frame once complete, got %d", frames)
	}
}

func TestResetDiscardsBufferedAudio(t *testing.T) {
	var frames int
	f := newFramer(4, nil, func([]float32) { frames++ })

	f.write(pcm16Bytes([]int16{1, 2, 3}))
	f.reset()
	f.write(pcm16Bytes([]int16{4}))

	if frames != 0 {
		t.Errorf("expected no frames after reset split, got %d", frames)
	}
}

func TestOverflowDropsOldestNotNewest(t *testing.T) {
	// Frame size 4 -> ring holds 4*2*32 = 256 bytes.
	var frames [][]float32
	f := newFramer(4, nil, func(s []float32) {
		frames = append(frames, s)
	})

	// A single write larger than the ring keeps only the tail.
	big := make([]int16, 4*ringFrames+8)
	for i := range big {
		big[i] = int16(i)
	}
	f.write(pcm16Bytes(big))

	if len(frames) != ringFrames {
		t.Fatalf("expected %d frames, got %d", ringFrames, len(frames))
	}
	lastFrame := frames[len(frames)-1]
	wantLast := float32(int16(len(big)-1)) / 32768.0
	if lastFrame[len(lastFrame)-1] != wantLast {
		t.Errorf("newest audio was dropped: want %v, got %v", wantLast, lastFrame[len(lastFrame)-1])
	}
}

func TestFramesReachAnalyzerTap(t *testing.T) {
	tap := analyzer.NewTap()
	f := newFramer(analyzer.FFTSize, tap, func([]float32) {})

	loud := make([]int16, analyzer.FFTSize)
	for i := range loud {
		loud[i] = 16000
	}
	f.write(pcm16Bytes(loud))

	if tap.Level() == 0 {
		t.Error("expected tap to register capture energy")
	}
}
