package rendering

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"strings"

	"github.com/jonathan/profile-architect/internal/types"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var printTemplate = template.Must(template.ParseFS(templateFiles, "templates/print.html.tmpl"))

// printData is the data structure passed to the print template
type printData struct {
	Doc          *types.GeneratedProfile
	Personal     types.PersonalDetails
	Portrait     template.URL
	Contact      []string
	Orientation  Orientation
	MarginTop    string
	MarginRight  string
	MarginBottom string
	MarginLeft   string
}

// RenderPrintHTML renders the profile as a standalone HTML page mirroring the on-screen layout.
// portrait is an optional image data URL; anything else is ignored.
func RenderPrintHTML(doc *types.GeneratedProfile, personal types.PersonalDetails, portrait string, settings PageSettings) (string, error) {
	if doc == nil {
		return "", &ExportError{Format: "html", Message: "no profile to export"}
	}
	if err := settings.Validate(); err != nil {
		return "", &ExportError{Format: "html", Message: "invalid page settings", Cause: err}
	}

	data := printData{
		Doc:          normalizedCopy(doc),
		Personal:     personal,
		Orientation:  settings.Orientation,
		MarginTop:    formatMM(settings.MarginTopMM),
		MarginRight:  formatMM(settings.MarginRightMM),
		MarginBottom: formatMM(settings.MarginBottomMM),
		MarginLeft:   formatMM(settings.MarginLeftMM),
	}
	if isImageDataURL(portrait) {
		data.Portrait = template.URL(portrait)
	}
	for _, v := range []string{personal.Email, personal.Phone, personal.Location} {
		if strings.TrimSpace(v) != "" {
			data.Contact = append(data.Contact, v)
		}
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, data); err != nil {
		return "", &ExportError{Format: "html", Message: "failed to execute template", Cause: err}
	}
	return buf.String(), nil
}

// normalizedCopy returns a clone with CRLF line endings folded so pre-line rendering is stable.
func normalizedCopy(doc *types.GeneratedProfile) *types.GeneratedProfile {
	out := doc.Clone()
	out.ExecutiveSummary = normalizeNewlines(out.ExecutiveSummary)
	out.CoverLetter = normalizeNewlines(out.CoverLetter)
	for i := range out.Sections {
		out.Sections[i].Content = normalizeNewlines(out.Sections[i].Content)
	}
	return out
}

func isImageDataURL(s string) bool {
	return strings.HasPrefix(s, "data:image/") && strings.Contains(s, ";base64,")
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
