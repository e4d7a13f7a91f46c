package main

import (
	"fmt"

	"github.com/jonathan/profile-architect/internal/observability"
	"github.com/spf13/cobra"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter",
	Short: "Write a cover letter for a generated profile",
	Long: `Generates a 300-400 word cover letter from the profile, the target role and the job
description in the discovery answers, attaches it to the profile (replacing any previous
letter) and optionally writes it as plain text.`,
	RunE: runCoverLetter,
}

var (
	coverLetterIn   string
	coverLetterOut  string
	coverLetterText string
)

func init() {
	addInputFlags(coverLetterCmd, "discovery", "personal")
	coverLetterCmd.Flags().StringVarP(&coverLetterIn, "in", "i", "", "Path to the current profile JSON (required)")
	coverLetterCmd.Flags().StringVarP(&coverLetterOut, "out", "o", "", "Path to write the updated profile (defaults to --in)")
	coverLetterCmd.Flags().StringVar(&coverLetterText, "text", "", "Also write the letter to this plain-text file")

	if err := coverLetterCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(coverLetterCmd)
}

func runCoverLetter(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	current, err := readDocument(coverLetterIn)
	if err != nil {
		return err
	}
	discovery, err := loadDiscovery(settings.Discovery)
	if err != nil {
		return err
	}
	personal, err := loadPersonal(settings.Personal)
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
	letter, err := orch.GenerateCoverLetter(ctx, discovery, personal)
	if err != nil {
		return err
	}

	out := coverLetterOut
	if out == "" {
		out = coverLetterIn
	}
	if err := writeDocument(out, orch.Store().Current()); err != nil {
		return err
	}
	if coverLetterText != "" {
		if err := writeOutput(coverLetterText, []byte(letter+"\n")); err != nil {
			return err
		}
	}

	if settings.Verbose {
		printer.PrintCoverLetter(letter)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cover letter added to %s\n", out)
	return nil
}
