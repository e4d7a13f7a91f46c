package rendering

import (
	"regexp"
	"strings"
)

// Export extensions and content types.
const (
	ExtPDF  = "pdf"
	ExtWord = "doc"
	ExtText = "txt"
	ExtHTML = "html"
	ExtJPEG = "jpg"

	PDFMIMEType  = "application/pdf"
	TextMIMEType = "text/plain; charset=utf-8"
	HTMLMIMEType = "text/html; charset=utf-8"
	JPEGMIMEType = "image/jpeg"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename builds the download name for an export: every whitespace run in the name,
// leading and trailing ones included, becomes an underscore and "_Profile.<ext>" is
// appended. A blank name yields "Profile.<ext>".
func Filename(fullName, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if strings.TrimSpace(fullName) == "" {
		return "Profile." + ext
	}
	return whitespaceRun.ReplaceAllString(fullName, "_") + "_Profile." + ext
}

// MIMEType returns the content type for an export extension.
func MIMEType(ext string) string {
	switch strings.TrimPrefix(ext, ".") {
	case ExtPDF:
		return PDFMIMEType
	case ExtWord:
		return WordMIMEType
	case ExtText:
		return TextMIMEType
	case ExtHTML:
		return HTMLMIMEType
	case ExtJPEG:
		return JPEGMIMEType
	default:
		return "application/octet-stream"
	}
}
