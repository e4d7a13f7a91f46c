// Package ingestion reads the raw material a profile is generated from:
// free-text notes, attachment files and data URLs, and edited HTML fragments.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	innerWhitespace = regexp.MustCompile(`[ \t\f\v]+`)
	blankLineRun    = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes raw profile notes: LF line endings, no trailing spaces,
// collapsed inner whitespace and at most one blank line between paragraphs.
// Headings, bullets and leading indentation survive.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine keeps the indentation of a line and collapses whitespace in the rest.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "#") {
		return innerWhitespace.ReplaceAllString(trimmed, " ")
	}
	indent := len(line) - len(trimmed)
	return strings.Repeat(" ", indent) + innerWhitespace.ReplaceAllString(trimmed, " ")
}

// LoadRawContent reads a notes file and cleans it.
func LoadRawContent(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return CleanText(string(content)), nil
}
