package main

import (
	"fmt"

	"github.com/jonathan/profile-architect/internal/observability"
	"github.com/spf13/cobra"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Rewrite a generated profile following a free-text instruction",
	Long: `Sends the full current profile and the instruction back to the model and writes the
rewritten profile. An existing cover letter is kept. On failure the input file is untouched.`,
	RunE: runRefine,
}

var (
	refineIn          string
	refineOut         string
	refineInstruction string
)

func init() {
	addInputFlags(refineCmd, "personal", "content", "portfolio", "attachment")
	refineCmd.Flags().StringVarP(&refineIn, "in", "i", "", "Path to the current profile JSON (required)")
	refineCmd.Flags().StringVarP(&refineOut, "out", "o", "", "Path to write the refined profile (defaults to --in)")
	refineCmd.Flags().StringVarP(&refineInstruction, "instruction", "m", "", "What to change, e.g. \"make it more concise\" (required)")

	if err := refineCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := refineCmd.MarkFlagRequired("instruction"); err != nil {
		panic(fmt.Sprintf("failed to mark instruction flag as required: %v", err))
	}

	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	current, err := readDocument(refineIn)
	if err != nil {
		return err
	}
	personal, err := loadPersonal(settings.Personal)
	if err != nil {
		return err
	}
	profile, err := loadProfileData(ctx, &settings)
	if err != nil {
		return err
	}

	orch, closeClient, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer closeClient()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if settings.Verbose {
		stop := watchStages(orch, printer)
		defer stop()
	}

	orch.Store().Replace(current)
	doc, err := orch.Refine(ctx, refineInstruction, profile, personal)
	if err != nil {
		return err
	}

	out := refineOut
	if out == "" {
		out = refineIn
	}
	if err := writeDocument(out, doc); err != nil {
		return err
	}
	if settings.Verbose {
		printer.PrintProfile(doc)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Refined profile written to %s\n", out)
	return nil
}
