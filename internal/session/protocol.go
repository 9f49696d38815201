// ABOUTME: Wire message definitions for the live tutoring model protocol
// ABOUTME: JSON shapes for setup, realtime audio input, and server content
package session

// setupMessage opens a session: model, response configuration, and the
// immutable system instruction.
type setupMessage struct {
	Setup *Setup `json:"setup,omitempty"`
}

// Setup configures the streaming session at connect time. It is not
// renegotiated mid-session.
type Setup struct {
	Model             string            `json:"model"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
}

// GenerationConfig selects response modality and voice.
type GenerationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

type SpeechConfig struct {
	VoiceConfig *VoiceConfig `json:"voiceConfig,omitempty"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

// Content is a sequence of parts (text or inline binary).
type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob carries base64 audio with its mime type.
type Blob struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data"`
}

// realtimeInputMessage carries one captured audio frame upstream.
type realtimeInputMessage struct {
	RealtimeInput *RealtimeInput `json:"realtimeInput,omitempty"`
}

type RealtimeInput struct {
	Audio *Blob `json:"audio,omitempty"`
}

// serverMessage is the envelope for everything the model streams back.
type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *ServerContent `json:"serverContent,omitempty"`
}

// ServerContent holds synthetic speech, the interruption flag, or turn
// completion.
type ServerContent struct {
	ModelTurn    *Content `json:"modelTurn,omitempty"`
	Interrupted  bool     `json:"interrupted,omitempty"`
	TurnComplete bool     `json:"turnComplete,omitempty"`
}
