// ABOUTME: System instruction assembly from lesson context
// ABOUTME: The content service is an opaque collaborator; we only template
package content

import (
	"fmt"
	"os"
	"strings"
)

const instructionTemplate = `You are a real-time voice tutor.
Teach the student using the lesson context below.
Be interactive: ask short check questions.
If the student interrupts, adapt and continue.
Keep responses concise and spoken-friendly.

LESSON CONTEXT:
%s`

// SystemInstruction wraps opaque lesson text in the tutor prompt. The result
// is immutable for the lifetime of a session.
func SystemInstruction(lessonContext string) string {
	return strings.TrimSpace(fmt.Sprintf(instructionTemplate, lessonContext))
}

// LoadLessonContext reads lesson text from a file. An empty path yields an
// empty context, which still produces a usable general-tutor instruction.
func LoadLessonContext(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read lesson file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
