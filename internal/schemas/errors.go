package schemas

import (
	"fmt"
	"strings"
)

// MalformedOutputMessage is the user-facing text for model output that failed validation.
const MalformedOutputMessage = "The generated profile was malformed."

// MalformedOutputError reports model output that is not valid JSON or does not match the profile schema.
type MalformedOutputError struct {
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *MalformedOutputError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = MalformedOutputMessage
	}
	if len(e.Fields) > 0 {
		details := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			details[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(details, "; "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}
