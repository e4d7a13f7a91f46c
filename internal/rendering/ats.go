package rendering

import (
	"strings"

	"github.com/jonathan/profile-architect/internal/types"
)

// RenderATSText returns the plaintext variant of the profile for Applicant Tracking Systems.
// The model-produced atsVersion wins; when it is blank a linear rendering is built instead.
func RenderATSText(doc *types.GeneratedProfile, personal types.PersonalDetails) (string, error) {
	if doc == nil {
		return "", &ExportError{Format: ExtText, Message: "no profile to export"}
	}
	if ats := strings.TrimSpace(doc.ATSVersion); ats != "" {
		return normalizeNewlines(ats) + "\n", nil
	}

	var b strings.Builder
	writeLine := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	writeLine(strings.ToUpper(personal.FullName))
	writeLine(personal.Occupation)
	writeLine(contactLine(personal))
	b.WriteString("\n")
	writeLine(doc.OneLinePositioning)
	writeLine(normalizeNewlines(doc.ExecutiveSummary))

	if len(doc.Skills) > 0 {
		b.WriteString("\nSKILLS\n")
		writeLine(strings.Join(doc.Skills, ", "))
	}
	for _, s := range doc.Sections {
		b.WriteString("\n")
		writeLine(strings.ToUpper(s.Title))
		writeLine(normalizeNewlines(s.Content))
	}
	if strings.TrimSpace(personal.Education) != "" {
		b.WriteString("\nEDUCATION\n")
		writeLine(personal.Education)
	}

	return b.String(), nil
}
