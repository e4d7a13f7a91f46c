// Package rendering serializes a generated profile into export formats:
// print-ready HTML, PDF via headless Chrome, legacy Word HTML and ATS plaintext.
package rendering

import "fmt"

// ExportError represents a failure producing an export artifact
type ExportError struct {
	Format  string
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s export error: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s export error: %s", e.Format, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
