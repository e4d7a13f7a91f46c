package main

import (
	"fmt"
	"os"

	"github.com/jonathan/profile-architect/internal/document"
	"github.com/jonathan/profile-architect/internal/ingestion"
	"github.com/spf13/cobra"
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Replace one section, the summary or the positioning line of a generated profile",
	Long: `Applies a manual edit without calling the model. Exactly one target is required:
--section N (zero-based), --summary or --positioning. The new text comes from --content,
--content-file or --html (an edited HTML fragment reduced to text with line breaks kept).`,
	RunE: runPatch,
}

var (
	patchIn          string
	patchOut         string
	patchSection     int
	patchSummary     bool
	patchPositioning bool
	patchContent     string
	patchContentFile string
	patchHTML        string
)

func init() {
	patchCmd.Flags().StringVarP(&patchIn, "in", "i", "", "Path to the current profile JSON (required)")
	patchCmd.Flags().StringVarP(&patchOut, "out", "o", "", "Path to write the patched profile (defaults to --in)")
	patchCmd.Flags().IntVar(&patchSection, "section", -1, "Zero-based index of the section to replace")
	patchCmd.Flags().BoolVar(&patchSummary, "summary", false, "Replace the executive summary")
	patchCmd.Flags().BoolVar(&patchPositioning, "positioning", false, "Replace the one-line positioning")
	patchCmd.Flags().StringVar(&patchContent, "content", "", "Replacement text")
	patchCmd.Flags().StringVar(&patchContentFile, "content-file", "", "File holding the replacement text")
	patchCmd.Flags().StringVar(&patchHTML, "html", "", "Replacement as an edited HTML fragment")

	if err := patchCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	patchCmd.MarkFlagsMutuallyExclusive("section", "summary", "positioning")
	patchCmd.MarkFlagsMutuallyExclusive("content", "content-file", "html")

	rootCmd.AddCommand(patchCmd)
}

func runPatch(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if !flags.Changed("section") && !patchSummary && !patchPositioning {
		return fmt.Errorf("one of --section, --summary or --positioning is required")
	}

	content, err := patchText(cmd)
	if err != nil {
		return err
	}

	current, err := readDocument(patchIn)
	if err != nil {
		return err
	}
	store := document.NewStore()
	store.Replace(current)

	var applied bool
	target := "positioning"
	switch {
	case patchSummary:
		target = "summary"
		applied = store.PatchSummary(content)
	case patchPositioning:
		applied = store.PatchPositioning(content)
	default:
		target = fmt.Sprintf("section %d", patchSection)
		applied = store.PatchSection(patchSection, content)
	}
	if !applied {
		return fmt.Errorf("%s does not exist (profile has %d sections)", target, len(current.Sections))
	}

	out := patchOut
	if out == "" {
		out = patchIn
	}
	if err := writeDocument(out, store.Current()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Patched %s in %s\n", target, out)
	return nil
}

// patchText resolves the replacement text from whichever content flag was given.
func patchText(cmd *cobra.Command) (string, error) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("content"):
		return patchContent, nil
	case flags.Changed("content-file"):
		data, err := os.ReadFile(patchContentFile)
		if err != nil {
			return "", fmt.Errorf("failed to read content file: %w", err)
		}
		return string(data), nil
	case flags.Changed("html"):
		text, err := ingestion.EditableText(patchHTML)
		if err != nil {
			return "", fmt.Errorf("failed to read html fragment: %w", err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("one of --content, --content-file or --html is required")
	}
}
