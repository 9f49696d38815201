// ABOUTME: Microphone capture pipeline using malgo
// ABOUTME: Acquires the input device and emits fixed-size sample frames
package capture

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/lumalearn/livetutor-go/internal/analyzer"
)

// DeviceError reports that the input device could not be acquired or driven.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("capture device: %v", e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Config holds capture parameters.
type Config struct {
	SampleRate int // input rate, independent of the output rate
	FrameSize  int // samples per emitted frame
}

// DefaultConfig returns the live-audio capture configuration: 16kHz mono,
// 256-sample frames.
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		FrameSize:  256,
	}
}

// Capture owns the microphone device exclusively. Device callback bytes run
// through a reframing buffer; every full frame is tapped for analysis and
// handed to OnFrame. Captured audio never reaches the speaker: the only
// local route is the non-destructive analyzer tap.
type Capture struct {
	cfg     Config
	tap     *analyzer.Tap
	onFrame func([]float32)

	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	frames   *framer
	started  bool
}

// New creates a capture pipeline. tap may be nil; onFrame must not be.
func New(cfg Config, tap *analyzer.Tap, onFrame func([]float32)) *Capture {
	c := &Capture{
		cfg:     cfg,
		tap:     tap,
		onFrame: onFrame,
	}
	c.frames = newFramer(cfg.FrameSize, tap, onFrame)
	return c
}

// Start acquires the input device and begins emitting frames. Returns
// *DeviceError if the device cannot be acquired.
func (c *Capture) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &DeviceError{Err: err}
	}
	if c.started {
		return nil
	}

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return &DeviceError{Err: fmt.Errorf("init context: %w", err)}
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(c.cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onRecvFrames := func(_, data []byte, _ uint32) {
		c.frames.write(data)
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onRecvFrames,
	})
	if err != nil {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
		return &DeviceError{Err: fmt.Errorf("init device: %w", err)}
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
		return &DeviceError{Err: fmt.Errorf("start device: %w", err)}
	}

	c.malgoCtx = malgoCtx
	c.device = device
	c.started = true
	return nil
}

// Stop releases the input device and detaches the frame path. Safe to call
// when already stopped.
func (c *Capture) Stop() {
	if !c.started {
		return
	}
	c.started = false

	if c.device != nil {
		_ = c.device.Stop()
		c.device.Uninit()
		c.device = nil
	}
	if c.malgoCtx != nil {
		_ = c.malgoCtx.Uninit()
		c.malgoCtx.Free()
		c.malgoCtx = nil
	}

	c.frames.reset()
}

// Close fully releases the pipeline. Equivalent to Stop for this device
// model; kept separate so callers express intent.
func (c *Capture) Close() error {
	c.Stop()
	return nil
}

// Active reports whether the device is capturing.
func (c *Capture) Active() bool {
	return c.started
}
