// Package schemas holds the JSON Schema documents shared by the validator and the model request layer.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// GeneratedProfile is the file name of the generated profile schema.
const GeneratedProfile = "generated_profile.schema.json"
