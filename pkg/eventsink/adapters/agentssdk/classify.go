package agentssdk

import (
	"context"
	"errors"
	"strings"

	"github.com/strongdm/ai-eventsink/pkg/eventsink"
)

// ErrClass is a coarse category for a failed run.
type ErrClass string

const (
	ClassError     ErrClass = "error"
	ClassTimeout   ErrClass = "timeout"
	ClassCanceled  ErrClass = "canceled"
	ClassGuardrail ErrClass = "guardrail"
	ClassPanic     ErrClass = "panic"
)

var guardrailPhrases = []string{
	"guardrail",
	"content policy",
	"safety filter",
	"blocked by policy",
}

// Classify returns the category of err. Guardrail violations are detected
// from the message, since the SDK reports them as plain errors.
func Classify(err error) ErrClass {
	var pe *eventsink.PanicError
	switch {
	case err == nil:
		return ClassError
	case errors.As(err, &pe):
		return ClassPanic
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.Is(err, context.Canceled):
		return ClassCanceled
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range guardrailPhrases {
		if strings.Contains(msg, phrase) {
			return ClassGuardrail
		}
	}
	return ClassError
}
