// ABOUTME: Live websocket session to the remote tutoring model
// ABOUTME: Handles dial, setup handshake, frame send, and message routing
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// InputMimeType is the fixed mime type for outgoing capture frames.
const InputMimeType = "audio/pcm;rate=16000"

const defaultHandshakeTimeout = 10 * time.Second

// ConnectError reports a failed handshake with the remote model.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("live connect: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Config describes one streaming session.
type Config struct {
	Endpoint          string // websocket URL of the live API
	Model             string
	Voice             string // prebuilt voice preset name
	SystemInstruction string // immutable for the session lifetime
	HandshakeTimeout  time.Duration
}

// Handler receives server-initiated events. Callbacks run on the session's
// read goroutine; they must not block.
type Handler struct {
	OnAudio        func(data string) // base64 PCM16 at the output rate
	OnInterrupted  func()
	OnTurnComplete func()
	OnClosed       func(err error) // nil err on clean close
}

// Session is one live connection. The connection handle is exclusively owned
// here; no frame is sent before the setup handshake completes, enforced by
// construction (Connect returns only after setupComplete).
type Session struct {
	conn    *websocket.Conn
	handler Handler

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
}

// Connect dials the live endpoint with a freshly minted token, performs the
// setup handshake, and starts routing server messages. Returns
// *ConnectError on any handshake failure.
func Connect(ctx context.Context, token string, cfg Config, handler Handler) (*Session, error) {
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, &ConnectError{Err: fmt.Errorf("bad endpoint: %w", err)}
	}
	q := endpoint.Query()
	q.Set("access_token", token)
	endpoint.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		return nil, &ConnectError{Err: fmt.Errorf("dial failed: %w", err)}
	}

	s := &Session{
		conn:    conn,
		handler: handler,
		done:    make(chan struct{}),
	}

	if err := s.handshake(cfg); err != nil {
		_ = conn.Close()
		return nil, &ConnectError{Err: err}
	}

	go s.readLoop()
	return s, nil
}

// handshake sends the setup message and waits for setupComplete.
func (s *Session) handshake(cfg Config) error {
	setup := setupMessage{
		Setup: &Setup{
			Model: cfg.Model,
			GenerationConfig: &GenerationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: &SpeechConfig{
					VoiceConfig: &VoiceConfig{
						PrebuiltVoiceConfig: &PrebuiltVoiceConfig{VoiceName: cfg.Voice},
					},
				},
			},
			SystemInstruction: &Content{
				Parts: []Part{{Text: cfg.SystemInstruction}},
			},
		},
	}

	if err := s.conn.WriteJSON(setup); err != nil {
		return fmt.Errorf("failed to send setup: %w", err)
	}

	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}

	_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read setup response: %w", err)
	}
	_ = s.conn.SetReadDeadline(time.Time{})

	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse setup response: %w", err)
	}
	if msg.SetupComplete == nil {
		return fmt.Errorf("expected setupComplete, got %s", data)
	}

	return nil
}

// SendAudio forwards one encoded capture frame. Sending on a closed session
// is a silent no-op: per-frame delivery has no retry path and the session
// error channel handles systemic failure.
func (s *Session) SendAudio(data string) error {
	if s == nil || s.closed.Load() {
		return nil
	}

	msg := realtimeInputMessage{
		RealtimeInput: &RealtimeInput{
			Audio: &Blob{Data: data, MimeType: InputMimeType},
		},
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(msg)
}

// readLoop routes server messages until the connection drops.
func (s *Session) readLoop() {
	defer close(s.done)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.emitClosed(nil)
			} else {
				s.emitClosed(err)
			}
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Session: dropping unparseable message: %v", err)
			continue
		}

		sc := msg.ServerContent
		if sc == nil {
			continue
		}

		if sc.Interrupted {
			if s.handler.OnInterrupted != nil {
				s.handler.OnInterrupted()
			}
			continue
		}

		if sc.ModelTurn != nil && s.handler.OnAudio != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData != nil && part.InlineData.Data != "" {
					s.handler.OnAudio(part.InlineData.Data)
				}
			}
		}

		if sc.TurnComplete && s.handler.OnTurnComplete != nil {
			s.handler.OnTurnComplete()
		}
	}
}

func (s *Session) emitClosed(err error) {
	if s.handler.OnClosed != nil {
		s.handler.OnClosed(err)
	}
}

// Close tears the connection down. Idempotent; returns after the read loop
// has exited.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}
