package main

import (
	"fmt"

	"github.com/jonathan/profile-architect/internal/generation"
	"github.com/jonathan/profile-architect/internal/observability"
	"github.com/jonathan/profile-architect/internal/workflow"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a positioned profile from discovery answers, personal details and source material",
	Long: `Runs the discovery and input steps in one go: validates the strategy answers, the personal
details and the source material (notes of at least 20 characters, an attachment or a portfolio
URL), sends them to the model and writes the validated profile as JSON.

Inputs can come from a config file (--config) or flags; flags win.`,
	RunE: runGenerate,
}

var generateOut string

func init() {
	addInputFlags(generateCmd, "discovery", "personal", "content", "portfolio", "attachment", "portrait")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "profile.json", "Path to write the generated profile JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	discovery, err := loadDiscovery(settings.Discovery)
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
	portrait, err := loadPortrait(settings.Portrait)
	if err != nil {
		return err
	}

	client, err := newLLMClient(ctx, &settings)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	sess := workflow.NewSession(client, generation.WithTimeout(settings.Timeout()))
	printer := observability.NewPrinter(cmd.OutOrStdout())
	if settings.Verbose {
		printer.PrintDiscovery(&discovery)
		stop := watchStages(sess.Orchestrator(), printer)
		defer stop()
	}

	if err := sess.SubmitDiscovery(discovery); err != nil {
		return err
	}
	doc, err := sess.SubmitProfile(ctx, personal, profile, portrait)
	if err != nil {
		return err
	}

	if err := writeDocument(generateOut, doc); err != nil {
		return err
	}
	if settings.Verbose {
		printer.PrintProfile(doc)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile written to %s\n", generateOut)
	return nil
}
