// ABOUTME: Entry point for the LiveTutor voice client
// ABOUTME: Parses CLI flags, wires the controller, and starts the TUI
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lumalearn/livetutor-go/internal/capture"
	"github.com/lumalearn/livetutor-go/internal/content"
	"github.com/lumalearn/livetutor-go/internal/player"
	"github.com/lumalearn/livetutor-go/internal/session"
	"github.com/lumalearn/livetutor-go/internal/tutor"
	"github.com/lumalearn/livetutor-go/internal/ui"
	"github.com/lumalearn/livetutor-go/internal/version"
)

const outputRate = 24000

var (
	model      = flag.String("model", "gemini-2.5-flash-native-audio-preview-12-2025", "Live model name")
	voice      = flag.String("voice", "Orus", "Prebuilt voice name")
	inputRate  = flag.Int("input-rate", 16000, "Capture sample rate in Hz")
	frameSize  = flag.Int("frame-size", 256, "Capture frame size in samples")
	lessonFile = flag.String("lesson", "", "Path to a lesson context text file")
	endpoint   = flag.String("endpoint", "", "Live websocket endpoint (overrides LIVETUTOR_LIVE_ENDPOINT)")
	tokenURL   = flag.String("token-url", "", "Token mint endpoint (overrides LIVETUTOR_TOKEN_URL)")
	logFile    = flag.String("log-file", "livetutor.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	// A .env next to the binary is convenient in development; absence is fine.
	_ = godotenv.Load()

	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	mintURL := *tokenURL
	if mintURL == "" {
		mintURL = os.Getenv("LIVETUTOR_TOKEN_URL")
	}
	if mintURL == "" {
		log.Fatal("no token endpoint: pass -token-url or set LIVETUTOR_TOKEN_URL")
	}

	liveEndpoint := *endpoint
	if liveEndpoint == "" {
		liveEndpoint = os.Getenv("LIVETUTOR_LIVE_ENDPOINT")
	}
	if liveEndpoint == "" {
		log.Fatal("no live endpoint: pass -endpoint or set LIVETUTOR_LIVE_ENDPOINT")
	}

	lesson, err := content.LoadLessonContext(*lessonFile)
	if err != nil {
		log.Fatalf("Failed to load lesson: %v", err)
	}

	issuer := session.NewHTTPTokenIssuer(mintURL, os.Getenv("LIVETUTOR_TOKEN_KEY"))

	sink, err := player.NewOtoSink(outputRate)
	if err != nil {
		log.Fatalf("Failed to open audio output: %v", err)
	}

	cfg := tutor.Config{
		Session: session.Config{
			Endpoint:          liveEndpoint,
			Model:             *model,
			Voice:             *voice,
			SystemInstruction: content.SystemInstruction(lesson),
		},
		Capture: capture.Config{
			SampleRate: *inputRate,
			FrameSize:  *frameSize,
		},
		OutputRate: outputRate,
	}

	ctrl := tutor.New(cfg, issuer, player.NewClock(), sink)

	log.Printf("Starting %s %s", version.Product, version.Version)

	if useTUI {
		if err := ui.Run(ctrl, sink); err != nil {
			log.Fatalf("TUI failed: %v", err)
		}
		log.Printf("Tutor stopped")
		return
	}

	runHeadless(ctrl)
}

// runHeadless connects and streams status changes to the log until a signal
// arrives. Useful for debugging transport issues without the TUI in the way.
func runHeadless(ctrl *tutor.Controller) {
	ctrl.OnStatus = func(status tutor.Status, errMsg string) {
		if errMsg != "" {
			log.Printf("Status: %s (%s)", status, errMsg)
			return
		}
		log.Printf("Status: %s", status)
	}

	if err := ctrl.Connect(context.Background()); err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	if err := ctrl.StartTalking(context.Background()); err != nil {
		log.Printf("Microphone unavailable: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Printf("Shutdown signal received")

	ctrl.Stop()
	log.Printf("Tutor stopped")
}
