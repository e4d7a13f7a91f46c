package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/types"
	rootschemas "github.com/jonathan/profile-architect/schemas"
	"github.com/xeipuuv/gojsonschema"
)

var profileSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	data, err := rootschemas.FS.ReadFile(rootschemas.GeneratedProfile)
	if err != nil {
		return nil, &SchemaLoadError{Path: rootschemas.GeneratedProfile, Message: "embedded schema missing", Cause: err}
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Path: rootschemas.GeneratedProfile, Message: "failed to compile schema", Cause: err}
	}
	return schema, nil
})

// ProfileSchemaJSON returns the raw generated profile schema document.
func ProfileSchemaJSON() []byte {
	data, _ := rootschemas.FS.ReadFile(rootschemas.GeneratedProfile)
	return data
}

// ResponseSchema returns the generated profile shape as an llm response constraint.
// It is decoded from the same document the validator compiles.
func ResponseSchema() *llm.Schema {
	var s llm.Schema
	if err := json.Unmarshal(ProfileSchemaJSON(), &s); err != nil {
		panic(fmt.Sprintf("schemas: embedded profile schema is invalid: %v", err))
	}
	return &s
}

// ValidateProfile checks an already decoded JSON value against the generated profile schema.
func ValidateProfile(v any) error {
	schema, err := profileSchema()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return &MalformedOutputError{Message: MalformedOutputMessage, Cause: err}
	}
	return resultError(result)
}

// ParseGeneratedProfile turns raw model output into a GeneratedProfile.
// Markdown fences are stripped first. Anything that is not JSON or fails the schema
// comes back as *MalformedOutputError.
func ParseGeneratedProfile(raw string) (*types.GeneratedProfile, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &MalformedOutputError{Message: MalformedOutputMessage, Cause: errors.New("empty model output")}
	}

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, &MalformedOutputError{Message: MalformedOutputMessage, Cause: fmt.Errorf("invalid JSON: %w", err)}
	}

	if err := ValidateProfile(decoded); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, &MalformedOutputError{Message: MalformedOutputMessage, Fields: verr.Errors}
		}
		var malformed *MalformedOutputError
		if errors.As(err, &malformed) {
			return nil, malformed
		}
		return nil, err
	}

	var profile types.GeneratedProfile
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		return nil, &MalformedOutputError{Message: MalformedOutputMessage, Cause: err}
	}
	return &profile, nil
}
