// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/profile-architect/internal/generation"
	"github.com/jonathan/profile-architect/internal/schemas"
	"github.com/jonathan/profile-architect/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDiscovery outputs the strategy chosen in the discovery step.
func (p *Printer) PrintDiscovery(d *types.DiscoveryAnswers) {
	if d == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:       %s\n", d.TargetRole))
	sb.WriteString(fmt.Sprintf("Usage:      %s\n", d.UsageList()))
	sb.WriteString(fmt.Sprintf("Structure:  %s\n", d.Structure))
	sb.WriteString(fmt.Sprintf("Tone:       %s\n", d.Tone))
	if d.Audience != "" {
		sb.WriteString(fmt.Sprintf("Audience:   %s\n", d.Audience))
	}
	if d.JobDescription != "" {
		sb.WriteString(fmt.Sprintf("Job ad:     %d characters (ATS mode)\n", utf8.RuneCountInString(d.JobDescription)))
	}

	p.printBox("DISCOVERY STRATEGY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProfile outputs a human-readable summary of the generated profile.
func (p *Printer) PrintProfile(doc *types.GeneratedProfile) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(doc.OneLinePositioning)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Summary:  %s\n", doc.ExecutiveSummary))
	sb.WriteString("\n")

	if len(doc.Sections) > 0 {
		sb.WriteString(fmt.Sprintf("Sections (%d):\n", len(doc.Sections)))
		count := min(len(doc.Sections), maxItemsToShow)
		for i := 0; i < count; i++ {
			sec := doc.Sections[i]
			sb.WriteString(fmt.Sprintf("  %d. %s (%d chars)\n", i+1, sec.Title, utf8.RuneCountInString(sec.Content)))
		}
		if len(doc.Sections) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Sections)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(doc.Skills) > 0 {
		count := min(len(doc.Skills), maxItemsToShow)
		skills := strings.Join(doc.Skills[:count], ", ")
		if len(doc.Skills) > maxItemsToShow {
			skills += fmt.Sprintf(" (+%d)", len(doc.Skills)-maxItemsToShow)
		}
		sb.WriteString(fmt.Sprintf("Skills:   %s\n", skills))
	}

	if doc.CoverLetter != "" {
		sb.WriteString("Cover letter: yes\n")
	}

	p.printBox("GENERATED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCoverLetter outputs the first paragraphs of a cover letter.
func (p *Printer) PrintCoverLetter(letter string) {
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return
	}

	paragraphs := strings.Split(letter, "\n\n")
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d words\n\n", len(strings.Fields(letter))))
	count := min(len(paragraphs), 2)
	for i := 0; i < count; i++ {
		sb.WriteString(truncate(strings.ReplaceAll(paragraphs[i], "\n", " "), boxWidth-4))
		sb.WriteString("\n")
	}
	if len(paragraphs) > count {
		sb.WriteString(fmt.Sprintf("... and %d more paragraphs\n", len(paragraphs)-count))
	}

	p.printBox("COVER LETTER", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStageEvent outputs a single line for a stage transition.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStageEvent(ev generation.StageEvent) {
	icon := "•"
	switch ev.State {
	case generation.StateInFlight:
		icon = "⏳"
	case generation.StateSuccess:
		icon = "✅"
	case generation.StateFailure:
		icon = "❌"
	}

	line := fmt.Sprintf("%s %-12s %s", icon, ev.Stage, ev.State)
	if ev.Message != "" {
		line += ": " + ev.Message
	}
	if ev.Stale {
		line += " (discarded)"
	}
	fmt.Fprintln(p.out, line)
}

// PrintSchemaErrors outputs field errors from schema validation.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSchemaErrors(fields []schemas.FieldError) {
	if len(fields) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ PROFILE MATCHES SCHEMA")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d schema errors:\n\n", len(fields)))

	for i, f := range fields {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", f.Field))
		sb.WriteString(fmt.Sprintf("  %s\n", f.Message))
		if i < len(fields)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SCHEMA VIOLATIONS", strings.TrimSuffix(sb.String(), "\n"))
}
