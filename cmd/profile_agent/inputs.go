package main

import (
	"github.com/jonathan/profile-architect/internal/config"
	"github.com/spf13/cobra"
)

// Input flags shared by several commands. Each command registers only the ones it reads.
var (
	inDiscovery   string
	inPersonal    string
	inContent     string
	inPortfolio   string
	inPortrait    string
	inOutputDir   string
	inChromePath  string
	inAttachments []string
)

// addInputFlags registers the named shared input flags on cmd.
func addInputFlags(cmd *cobra.Command, names ...string) {
	f := cmd.Flags()
	for _, name := range names {
		switch name {
		case "discovery":
			f.StringVarP(&inDiscovery, "discovery", "d", "", "Path to discovery answers (JSON or YAML)")
		case "personal":
			f.StringVarP(&inPersonal, "personal", "p", "", "Path to personal details (JSON or YAML)")
		case "content":
			f.StringVar(&inContent, "content", "", "Path to raw career notes (text or markdown)")
		case "portfolio":
			f.StringVar(&inPortfolio, "portfolio", "", "Portfolio or LinkedIn URL")
		case "attachment":
			f.StringArrayVarP(&inAttachments, "attachment", "a", nil, "Attachment file or data URL (repeatable)")
		case "portrait":
			f.StringVar(&inPortrait, "portrait", "", "Portrait image file or data URL")
		case "out-dir":
			f.StringVar(&inOutputDir, "out-dir", "", "Directory for exported files")
		case "chrome-path":
			f.StringVar(&inChromePath, "chrome-path", "", "Chrome executable for PDF/JPEG export (defaults to CHROME_PATH or auto-detect)")
		}
	}
}

// applyInputFlags copies explicitly set input flags over the config file values.
func applyInputFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	for name, pair := range map[string]struct {
		dst *string
		src string
	}{
		"discovery":   {&cfg.Discovery, inDiscovery},
		"personal":    {&cfg.Personal, inPersonal},
		"content":     {&cfg.Content, inContent},
		"portfolio":   {&cfg.Portfolio, inPortfolio},
		"portrait":    {&cfg.Portrait, inPortrait},
		"out-dir":     {&cfg.OutputDir, inOutputDir},
		"chrome-path": {&cfg.ChromePath, inChromePath},
	} {
		if f.Lookup(name) != nil && f.Changed(name) {
			*pair.dst = pair.src
		}
	}
	if f.Lookup("attachment") != nil && f.Changed("attachment") {
		cfg.Attachments = inAttachments
	}
}
