package llm

import "strings"

// Role tags the author of a content turn.
type Role string

// RoleUser is the only role the profile workflow sends.
const RoleUser Role = "user"

// MIMETypeJSON asks the provider for a JSON payload.
const MIMETypeJSON = "application/json"

// Part is one piece of a request: either text or an inline binary payload.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart wraps an instruction string.
func TextPart(text string) Part {
	return Part{Text: text}
}

// BlobPart wraps a binary attachment with its MIME type.
func BlobPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// IsBlob reports whether the part carries binary data instead of text.
func (p Part) IsBlob() bool {
	return p.Data != nil
}

// Schema is a provider-neutral description of the expected output shape.
// Its JSON tags follow JSON Schema so a schema document can be decoded into it directly.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Request is a single generation call: role-tagged parts plus an optional output constraint.
type Request struct {
	Role             Role
	Parts            []Part
	Tier             ModelTier
	ResponseMIMEType string
	ResponseSchema   *Schema
}

// Text concatenates all text parts. Mostly useful for logging and tests.
func (r *Request) Text() string {
	var sb strings.Builder
	for _, p := range r.Parts {
		if !p.IsBlob() {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Blobs returns the binary parts in order.
func (r *Request) Blobs() []Part {
	var blobs []Part
	for _, p := range r.Parts {
		if p.IsBlob() {
			blobs = append(blobs, p)
		}
	}
	return blobs
}

// WantsJSON reports whether the request asks for structured output.
func (r *Request) WantsJSON() bool {
	return r.ResponseMIMEType == MIMETypeJSON || r.ResponseSchema != nil
}
