// ABOUTME: PCM16/base64 codec for live audio frames
// ABOUTME: Converts float32 samples to the wire format and back
package pcm

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// CodecError reports a malformed audio payload.
type CodecError struct {
	Reason string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("pcm codec: %s", e.Reason)
}

// EncodeFrame converts float32 samples in [-1, 1] to base64-encoded
// little-endian PCM16. Scaling is asymmetric: negative samples scale by
// 32768, non-negative by 32767, so +1.0 cannot overflow int16.
func EncodeFrame(samples []float32) string {
	buf := make([]byte, len(samples)*2)

	for i, v := range samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}

		var s int16
		if v < 0 {
			s = int16(v * 32768)
		} else {
			s = int16(v * 32767)
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}

	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeFrame reverses EncodeFrame: base64 text to normalized float32 samples.
func DecodeFrame(payload string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &CodecError{Reason: fmt.Sprintf("invalid base64: %v", err)}
	}
	return DecodeSamples(raw)
}

// DecodeSamples reinterprets little-endian PCM16 bytes as float32 samples in
// [-1, 1]. The slice bounds are respected exactly, so a view into a larger
// buffer decodes only its own range.
func DecodeSamples(raw []byte) ([]float32, error) {
	if len(raw)%2 != 0 {
		return nil, &CodecError{Reason: fmt.Sprintf("byte length %d is not a multiple of 2", len(raw))}
	}

	out := make([]float32, len(raw)/2)
	for i := range out {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		out[i] = float32(s) / 32768.0
	}
	return out, nil
}

// EncodeSamples converts float32 samples to raw little-endian PCM16 bytes,
// using the same asymmetric scaling as EncodeFrame. Used by the playback
// path, where the output device consumes bytes rather than transport text.
func EncodeSamples(samples []float32) []byte {
	buf := make([]byte, len(samples)*2)
	for i, v := range samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}

		var s int16
		if v < 0 {
			s = int16(v * 32768)
		} else {
			s = int16(v * 32767)
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
