// ABOUTME: Tests for the PCM16/base64 codec
// ABOUTME: Covers round-trip accuracy, clamping, and malformed payloads
package pcm

import (
	"encoding/base64"
	"errors"
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.5, -0.5, 0.999, -0.999, 0.0001, -0.0001}

	out, err := DecodeFrame(EncodeFrame(in))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}

	// One quantization step plus the 32767/32768 positive-scale skew.
	const eps = 2.0 / 32768.0
	for i := range in {
		if diff := math.Abs(float64(out[i] - in[i])); diff > eps {
			t.Errorf("sample %d: want %v, got %v (diff %v)", i, in[i], out[i], diff)
		}
	}
}

func TestAsymmetricScaling(t *testing.T) {
	// +1.0 must not overflow int16.
	out, err := DecodeFrame(EncodeFrame([]float32{1.0}))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out[0] > 1.0 {
		t.Errorf("encoding +1.0 overflowed: decoded %v", out[0])
	}
	if got := out[0]; got != 32767.0/32768.0 {
		t.Errorf("expected +1.0 to map to 32767/32768, got %v", got)
	}

	// -1.0 maps to exactly -32768.
	out, err = DecodeFrame(EncodeFrame([]float32{-1.0}))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out[0] != -1.0 {
		t.Errorf("expected -1.0 to map to exactly -32768 (-1.0), got %v", out[0])
	}
}

func TestClamping(t *testing.T) {
	out, err := DecodeFrame(EncodeFrame([]float32{2.5, -3.7}))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out[0] != 32767.0/32768.0 {
		t.Errorf("expected +2.5 clamped to +1.0 encoding, got %v", out[0])
	}
	if out[1] != -1.0 {
		t.Errorf("expected -3.7 clamped to -1.0, got %v", out[1])
	}
}

func TestOddLengthFails(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03})

	_, err := DecodeFrame(payload)
	if err == nil {
		t.Fatal("expected error for odd byte length")
	}

	var codecErr *CodecError
	if !errors.As(err, &codecErr) {
		t.Errorf("expected *CodecError, got %T", err)
	}
}

func TestInvalidBase64Fails(t *testing.T) {
	_, err := DecodeFrame("not//valid==base64!!")
	if err == nil {
		t.Fatal("expected error for invalid base64")
	}

	var codecErr *CodecError
	if !errors.As(err, &codecErr) {
		t.Errorf("expected *CodecError, got %T", err)
	}
}

func TestDecodeSamplesRespectsSliceBounds(t *testing.T) {
	// A view into a larger buffer must decode only its own range.
	backing := []byte{0xFF, 0xFF, 0x00, 0x40, 0x00, 0xC0, 0xFF, 0xFF}
	view := backing[2:6]

	out, err := DecodeSamples(view)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(out))
	}
	if out[0] != 0.5 {
		t.Errorf("expected 0.5, got %v", out[0])
	}
	if out[1] != -0.5 {
		t.Errorf("expected -0.5, got %v", out[1])
	}
}

func TestEncodeSamplesMatchesFrameEncoding(t *testing.T) {
	in := []float32{0.1, -0.9, 1.0, -1.0}

	raw := EncodeSamples(in)
	viaText, err := base64.StdEncoding.DecodeString(EncodeFrame(in))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(raw) != len(viaText) {
		t.Fatalf("length mismatch: %d vs %d", len(raw), len(viaText))
	}
	for i := range raw {
		if raw[i] != viaText[i] {
			t.Fatalf("byte %d differs: %x vs %x", i, raw[i], viaText[i])
		}
	}
}
