package rendering

import (
	"strings"

	"github.com/jonathan/profile-architect/internal/types"
)

// WordMIMEType is the content type legacy word processors open as a document.
const WordMIMEType = "application/msword"

// SkillSeparator joins skills in the Word export.
const SkillSeparator = " • "

// utf8BOM makes word processors detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const wordStyle = `<style>
body { font-family: 'Calibri', 'Arial', sans-serif; line-height: 1.5; padding: 40pt; color: #1a1a1a; }
h1 { font-family: 'Helvetica', 'Arial', sans-serif; font-size: 28pt; font-weight: bold; border-bottom: 2px solid #333; margin-bottom: 5pt; }
.occupation { font-size: 16pt; color: #4f46e5; font-weight: bold; margin-bottom: 15pt; }
.contact { font-size: 10pt; color: #666; margin-bottom: 20pt; }
.summary { font-size: 12pt; font-style: italic; color: #444; margin-bottom: 30pt; }
h2 { font-size: 12pt; font-weight: bold; color: #4f46e5; text-transform: uppercase; margin-top: 25pt; letter-spacing: 2pt; border-bottom: 1px solid #eee; padding-bottom: 5pt; }
p { margin-bottom: 12pt; font-size: 11pt; }
.skills-header { font-size: 11pt; font-weight: bold; color: #444; margin-top: 30pt; }
.skills-list { font-size: 10pt; color: #666; }
</style>
`

// RenderWordDocument renders the profile as a standalone HTML document that word processors
// open as a .doc file. The output is byte-identical for identical input.
func RenderWordDocument(doc *types.GeneratedProfile, personal types.PersonalDetails) ([]byte, error) {
	if doc == nil {
		return nil, &ExportError{Format: "word", Message: "no profile to export"}
	}

	var b strings.Builder
	b.Write(utf8BOM)
	b.WriteString("<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>\n")
	b.WriteString("<head><meta charset='utf-8'><title>")
	b.WriteString(EscapeHTML(strings.TrimSpace(personal.FullName + " Profile")))
	b.WriteString("</title>\n")
	b.WriteString(wordStyle)
	b.WriteString("</head>\n<body>\n")

	b.WriteString("<h1>" + EscapeHTML(personal.FullName) + "</h1>\n")
	b.WriteString(`<p class="occupation">` + EscapeHTML(personal.Occupation) + "</p>\n")
	if contact := contactLine(personal); contact != "" {
		b.WriteString(`<p class="contact">` + EscapeHTML(contact) + "</p>\n")
	}
	b.WriteString(`<p class="summary">` + EscapeMultiline(doc.ExecutiveSummary) + "</p>\n")

	for _, s := range doc.Sections {
		b.WriteString("<h2>" + EscapeHTML(s.Title) + "</h2><p>" + EscapeMultiline(s.Content) + "</p>\n")
	}

	b.WriteString(`<p class="skills-header">PROFESSIONAL COMPETENCIES</p>` + "\n")
	b.WriteString(`<p class="skills-list">` + EscapeHTML(strings.Join(doc.Skills, SkillSeparator)) + "</p>\n")
	b.WriteString("</body>\n</html>\n")

	return []byte(b.String()), nil
}

// contactLine joins the non-empty contact fields with " | ".
func contactLine(p types.PersonalDetails) string {
	var parts []string
	for _, v := range []string{p.Email, p.Phone, p.Location} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}
