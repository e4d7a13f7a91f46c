package rendering

import "strings"

// EscapeHTML escapes markup characters in text.
// Special characters: & < > " '
func EscapeHTML(text string) string {
	return escape(text, false)
}

// EscapeMultiline escapes text like EscapeHTML and turns each line break into <br>.
// CRLF and lone CR count as a single line break.
func EscapeMultiline(text string) string {
	return escape(text, true)
}

func escape(text string, breaks bool) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/8)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '&':
			result.WriteString("&amp;")
		case '<':
			result.WriteString("&lt;")
		case '>':
			result.WriteString("&gt;")
		case '"':
			result.WriteString("&#34;")
		case '\'':
			result.WriteString("&#39;")
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			if breaks {
				result.WriteString("<br>")
			} else {
				result.WriteRune('\n')
			}
		case '\n':
			if breaks {
				result.WriteString("<br>")
			} else {
				result.WriteRune(r)
			}
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// normalizeNewlines converts CRLF and lone CR line endings to LF.
func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
