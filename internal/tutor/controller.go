// ABOUTME: Live tutor controller and status state machine
// ABOUTME: Coordinates session, capture, playback, and analyzer lifecycles
package tutor

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/lumalearn/livetutor-go/internal/analyzer"
	"github.com/lumalearn/livetutor-go/internal/capture"
	"github.com/lumalearn/livetutor-go/internal/pcm"
	"github.com/lumalearn/livetutor-go/internal/player"
	"github.com/lumalearn/livetutor-go/internal/session"
)

// Status is the controller's user-visible state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusListening  Status = "listening"
	StatusSpeaking   Status = "speaking"
	StatusError      Status = "error"
)

// Config holds everything needed to run one tutor.
type Config struct {
	Session    session.Config
	Capture    capture.Config
	OutputRate int // playback sample rate, independent of capture
}

// liveSession is the slice of session.Session the controller uses.
type liveSession interface {
	SendAudio(data string) error
	Close() error
}

// captureStream is the slice of capture.Capture the controller uses.
type captureStream interface {
	Start(ctx context.Context) error
	Stop()
	Close() error
	Active() bool
}

// Controller owns the live session, the capture stream, the playback
// scheduler, and the analyzer. All mutable state lives here as explicit
// fields; async callbacks carry a generation token and are ignored once the
// owning session has been torn down.
type Controller struct {
	ID  string
	cfg Config

	issuer   session.TokenIssuer
	Analyzer *analyzer.Analyzer
	sched    *player.Scheduler

	mu         sync.Mutex
	status     Status
	lastErr    string
	paused     bool
	generation uint64
	sess       liveSession
	cap        captureStream

	// OnStatus is invoked outside the controller lock on every status
	// change, with the current error message (empty unless StatusError).
	OnStatus func(Status, string)

	// Seams for tests.
	connect    func(ctx context.Context, token string, cfg session.Config, h session.Handler) (liveSession, error)
	newCapture func(onFrame func([]float32)) captureStream
}

// New creates a controller. The sink is owned by the scheduler from here on.
func New(cfg Config, issuer session.TokenIssuer, clock player.Clock, sink player.Sink) *Controller {
	if cfg.OutputRate <= 0 {
		cfg.OutputRate = 24000
	}
	if cfg.Capture.FrameSize <= 0 {
		cfg.Capture = capture.DefaultConfig()
	}

	an := analyzer.New()

	c := &Controller{
		ID:       uuid.New().String(),
		cfg:      cfg,
		issuer:   issuer,
		Analyzer: an,
		status:   StatusIdle,
	}

	c.sched = player.NewScheduler(clock, sink, an.Out)
	c.sched.OnDrained = c.onDrained

	c.connect = func(ctx context.Context, token string, sc session.Config, h session.Handler) (liveSession, error) {
		return session.Connect(ctx, token, sc, h)
	}
	c.newCapture = func(onFrame func([]float32)) captureStream {
		return capture.New(c.cfg.Capture, an.In, onFrame)
	}

	return c
}

// Status returns the current state and last error message.
func (c *Controller) Status() (Status, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.lastErr
}

// Paused reports whether teaching is paused.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Connect establishes the live session: mints a token, performs the
// handshake, and registers callbacks. At most one session is live at a time;
// connecting while one exists is a no-op.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		return nil
	}
	c.setStatusLocked(StatusConnecting, "")
	gen := c.generation
	c.mu.Unlock()

	token, err := c.issuer.IssueLiveToken(ctx)
	if err != nil {
		c.fail(gen, err)
		return err
	}

	handler := session.Handler{
		OnAudio:        func(data string) { c.onServerAudio(gen, data) },
		OnInterrupted:  func() { c.onInterrupted(gen) },
		OnTurnComplete: func() { c.onTurnComplete(gen) },
		OnClosed:       func(err error) { c.onSessionClosed(gen, err) },
	}

	sess, err := c.connect(ctx, token, c.cfg.Session, handler)
	if err != nil {
		c.fail(gen, err)
		return err
	}

	c.mu.Lock()
	if gen != c.generation {
		// Torn down while connecting; discard the late session.
		c.mu.Unlock()
		_ = sess.Close()
		return nil
	}
	c.sess = sess
	c.setStatusLocked(StatusIdle, "")
	c.mu.Unlock()
	return nil
}

// StartTalking opens the capture stream, lazily connecting first if needed.
// In-flight playback is always flushed before the first frame can be sent,
// so the user's speech is never competing with synthetic speech (barge-in).
func (c *Controller) StartTalking(ctx context.Context) error {
	c.mu.Lock()
	if c.paused || c.status == StatusListening {
		c.mu.Unlock()
		return nil
	}
	needConnect := c.sess == nil
	c.mu.Unlock()

	if needConnect {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}

	c.sched.Flush()

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	cap := c.newCapture(func(frame []float32) { c.onCaptureFrame(gen, frame) })

	if err := cap.Start(ctx); err != nil {
		// The session stays open: the user may still want to listen.
		c.mu.Lock()
		if gen == c.generation {
			c.setStatusLocked(StatusError, err.Error())
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		cap.Stop()
		return nil
	}
	c.cap = cap
	c.setStatusLocked(StatusListening, "")
	c.mu.Unlock()
	return nil
}

// StopTalking releases the microphone and returns to idle.
func (c *Controller) StopTalking() {
	c.mu.Lock()
	cap := c.cap
	c.cap = nil
	if c.status == StatusListening {
		c.setStatusLocked(StatusIdle, "")
	}
	c.mu.Unlock()

	if cap != nil {
		cap.Stop()
		_ = cap.Close()
	}
}

// Pause stops the microphone and silences playback but keeps the session
// open. StartTalking is refused until Resume.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.paused = true
	cap := c.cap
	c.cap = nil
	c.setStatusLocked(StatusIdle, "")
	c.mu.Unlock()

	if cap != nil {
		cap.Stop()
		_ = cap.Close()
	}
	c.sched.Flush()
}

// Resume lifts a pause. The existing session is reused.
func (c *Controller) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// Reset tears everything down and reconnects with a fresh token.
func (c *Controller) Reset(ctx context.Context) error {
	c.teardown()
	return c.Connect(ctx)
}

// Stop tears everything down with no reconnect. Idempotent.
func (c *Controller) Stop() {
	c.teardown()

	c.mu.Lock()
	c.paused = false
	c.setStatusLocked(StatusIdle, "")
	c.mu.Unlock()
}

// teardown releases every resource best-effort, in dependency order: detach
// analyzer taps, stop the capture device, flush playback, close the session.
// The generation bump invalidates all callbacks registered before it.
func (c *Controller) teardown() {
	c.mu.Lock()
	c.generation++
	cap := c.cap
	sess := c.sess
	c.cap = nil
	c.sess = nil
	c.mu.Unlock()

	c.Analyzer.Reset()

	if cap != nil {
		cap.Stop()
		_ = cap.Close()
	}

	c.sched.Flush()

	if sess != nil {
		_ = sess.Close()
	}
}

// onCaptureFrame encodes and forwards one microphone frame. Frames are sent
// in production order; a failed send is logged and the next frame is still
// attempted (systemic failure arrives via OnClosed instead).
func (c *Controller) onCaptureFrame(gen uint64, frame []float32) {
	c.mu.Lock()
	if gen != c.generation || c.sess == nil {
		c.mu.Unlock()
		return
	}
	sess := c.sess
	c.mu.Unlock()

	if err := sess.SendAudio(pcm.EncodeFrame(frame)); err != nil {
		log.Printf("Frame send failed: %v", err)
	}
}

// onServerAudio decodes and schedules one synthetic speech segment. A
// malformed frame is dropped with a warning; the session continues.
func (c *Controller) onServerAudio(gen uint64, data string) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	samples, err := pcm.DecodeFrame(data)
	if err != nil {
		var codecErr *pcm.CodecError
		if errors.As(err, &codecErr) {
			log.Printf("Dropping malformed audio frame: %v", err)
			return
		}
		log.Printf("Audio frame decode failed: %v", err)
		return
	}

	c.sched.Enqueue(samples, c.cfg.OutputRate)

	c.mu.Lock()
	if gen == c.generation && c.status != StatusListening {
		// The model may respond while the user is mid-utterance; the user
		// keeps the floor.
		c.setStatusLocked(StatusSpeaking, "")
	}
	c.mu.Unlock()
}

// onInterrupted flushes playback on server-initiated barge-in. The session
// stays open.
func (c *Controller) onInterrupted(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.sched.Flush()

	c.mu.Lock()
	if gen == c.generation && c.status == StatusSpeaking {
		c.setStatusLocked(StatusIdle, "")
	}
	c.mu.Unlock()
}

func (c *Controller) onTurnComplete(gen uint64) {
	// Playback may still be draining; the drain callback settles status.
}

// onDrained returns to idle once the last queued segment finishes, unless
// the microphone is live.
func (c *Controller) onDrained() {
	c.mu.Lock()
	if c.status == StatusSpeaking {
		c.setStatusLocked(StatusIdle, "")
	}
	c.mu.Unlock()
}

// onSessionClosed handles the transport ending underneath us.
func (c *Controller) onSessionClosed(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.sess = nil
	if err != nil {
		c.setStatusLocked(StatusError, err.Error())
	} else {
		c.setStatusLocked(StatusIdle, "")
	}
	c.mu.Unlock()

	if err != nil {
		c.teardown()
	}
}

// fail records an error state unless the generation has moved on.
func (c *Controller) fail(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.setStatusLocked(StatusError, err.Error())
}

// setStatusLocked mutates status under the lock and emits OnStatus without
// holding it.
func (c *Controller) setStatusLocked(status Status, errMsg string) {
	c.status = status
	c.lastErr = errMsg
	if c.OnStatus == nil {
		return
	}
	onStatus := c.OnStatus
	go onStatus(status, errMsg)
}
