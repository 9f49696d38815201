// ABOUTME: Gapless playback scheduler for decoded audio segments
// ABOUTME: Schedules arrival-ordered segments back-to-back on a shared clock
package player

import (
	"sync"
	"time"

	"github.com/lumalearn/livetutor-go/internal/analyzer"
	"github.com/lumalearn/livetutor-go/internal/pcm"
)

// Segment is one scheduled unit of playback audio.
type Segment struct {
	ID       uint64
	StartAt  time.Duration
	Duration time.Duration

	startTimer *time.Timer
	doneTimer  *time.Timer
}

// SchedulerStats tracks scheduler metrics.
type SchedulerStats struct {
	Enqueued  int64
	Completed int64
	Flushed   int64
}

// Scheduler plays decoded segments strictly in arrival order with no gap and
// no overlap: each segment starts at max(now, end of the previous one). The
// cursor is owned here and nowhere else.
type Scheduler struct {
	mu     sync.Mutex
	clock  Clock
	sink   Sink
	tap    *analyzer.Tap
	cursor time.Duration
	active map[uint64]*Segment
	nextID uint64
	stats  SchedulerStats

	// OnDrained fires once the active set empties after playback. It does
	// not fire on Flush.
	OnDrained func()
}

// NewScheduler creates a scheduler over the given clock and output sink.
// tap may be nil when no analyzer is attached.
func NewScheduler(clock Clock, sink Sink, tap *analyzer.Tap) *Scheduler {
	return &Scheduler{
		clock:  clock,
		sink:   sink,
		tap:    tap,
		cursor: clock.Now(),
		active: make(map[uint64]*Segment),
	}
}

// Enqueue schedules decoded samples for gapless sequential playback and
// returns the resulting segment. The samples are pushed through the analyzer
// tap before they reach the sink.
func (s *Scheduler) Enqueue(samples []float32, sampleRate int) Segment {
	raw := pcm.EncodeSamples(samples)
	dur := time.Duration(len(samples)) * time.Second / time.Duration(sampleRate)

	s.mu.Lock()

	now := s.clock.Now()
	startAt := s.cursor
	if now > startAt {
		startAt = now
	}
	s.cursor = startAt + dur

	s.nextID++
	seg := &Segment{
		ID:       s.nextID,
		StartAt:  startAt,
		Duration: dur,
	}
	s.active[seg.ID] = seg
	s.stats.Enqueued++

	id := seg.ID
	seg.startTimer = time.AfterFunc(startAt-now, func() {
		s.play(id, raw)
	})
	seg.doneTimer = time.AfterFunc(startAt+dur-now, func() {
		s.complete(id)
	})

	s.mu.Unlock()

	if s.tap != nil {
		s.tap.Push(samples)
	}

	return *seg
}

// play hands a segment's PCM to the sink if it is still live.
func (s *Scheduler) play(id uint64, raw []byte) {
	s.mu.Lock()
	_, live := s.active[id]
	s.mu.Unlock()

	if live {
		s.sink.Play(raw)
	}
}

// complete retires a finished segment and reports drain.
func (s *Scheduler) complete(id uint64) {
	s.mu.Lock()
	if _, live := s.active[id]; !live {
		// Flushed before completion; its callback must not fire.
		s.mu.Unlock()
		return
	}
	delete(s.active, id)
	s.stats.Completed++
	drained := len(s.active) == 0
	onDrained := s.OnDrained
	s.mu.Unlock()

	if drained && onDrained != nil {
		onDrained()
	}
}

// Flush stops every playing segment, clears the active set, and resets the
// cursor to the current clock time. Safe to call with nothing queued.
// Completion callbacks for flushed segments never fire.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	for id, seg := range s.active {
		seg.startTimer.Stop()
		seg.doneTimer.Stop()
		delete(s.active, id)
		s.stats.Flushed++
	}
	s.cursor = s.clock.Now()
	s.mu.Unlock()

	s.sink.Stop()
}

// ActiveCount returns the number of queued or playing segments.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Cursor returns the next available start time.
func (s *Scheduler) Cursor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Stats returns scheduler statistics.
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
