package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/profile-architect/internal/config"
	"github.com/jonathan/profile-architect/internal/ingestion"
	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/logging"
	"github.com/jonathan/profile-architect/internal/schemas"
	"github.com/jonathan/profile-architect/internal/types"
	"github.com/spf13/cobra"
)

// settings is the merged configuration for the running command.
var settings config.Config

// newLLMClient creates the model client. Tests replace it with a mock.
var newLLMClient = func(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s environment variable or --api-key flag is required", config.EnvAPIKey)
	}
	return llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
}

// initSettings merges the config file, flags, environment and defaults, then sets up logging.
func initSettings(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Command-line args take priority; only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = rootAPIKey
	}
	if flags.Changed("verbose") {
		cfg.Verbose = rootVerbose
	}
	applyInputFlags(cmd, &cfg)

	cfg.ApplyEnv()
	if flags.Changed("log-level") {
		cfg.LogLevel = rootLogLevel
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if cfg.Verbose && !flags.Changed("log-level") && os.Getenv(config.EnvLogLevel) == "" {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Init(cfg.LoggingConfig())
	settings = cfg
	return nil
}

// readInputFile decodes a JSON or YAML input file into v.
func readInputFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return config.DecodeFile(path, data, v)
}

// loadDiscovery reads discovery answers; omitted structure and tone keep their defaults.
func loadDiscovery(path string) (types.DiscoveryAnswers, error) {
	answers := types.DefaultDiscoveryAnswers()
	if path == "" {
		return answers, fmt.Errorf("--discovery is required (via flag or config)")
	}
	if err := readInputFile(path, &answers); err != nil {
		return answers, fmt.Errorf("failed to load discovery answers: %w", err)
	}
	return answers, nil
}

// loadPersonal reads the personal details.
func loadPersonal(path string) (types.PersonalDetails, error) {
	var personal types.PersonalDetails
	if path == "" {
		return personal, fmt.Errorf("--personal is required (via flag or config)")
	}
	if err := readInputFile(path, &personal); err != nil {
		return personal, fmt.Errorf("failed to load personal details: %w", err)
	}
	return personal, nil
}

// loadProfileData gathers the raw notes, portfolio URL and attachments named in cfg.
func loadProfileData(ctx context.Context, cfg *config.Config) (types.ProfileData, error) {
	var profile types.ProfileData
	if cfg.Content != "" {
		content, err := ingestion.LoadRawContent(cfg.Content)
		if err != nil {
			return profile, fmt.Errorf("failed to load content: %w", err)
		}
		profile.RawContent = content
	}
	profile.PortfolioURL = cfg.Portfolio

	attachments, err := ingestion.LoadAttachments(ctx, cfg.Attachments)
	if err != nil {
		return profile, fmt.Errorf("failed to load attachments: %w", err)
	}
	profile.Attachments = attachments
	return profile, nil
}

// loadPortrait returns the portrait as a data URL. Files are read and encoded.
func loadPortrait(source string) (string, error) {
	if source == "" {
		return "", nil
	}
	att, err := ingestion.LoadAttachment(source)
	if err != nil {
		return "", fmt.Errorf("failed to load portrait: %w", err)
	}
	return ingestion.EncodeDataURL(att), nil
}

// readDocument loads a generated profile and validates it against the profile schema.
func readDocument(path string) (*types.GeneratedProfile, error) {
	if path == "" {
		return nil, fmt.Errorf("--in is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	doc, err := schemas.ParseGeneratedProfile(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return doc, nil
}

// writeDocument writes a generated profile as indented JSON, creating parent directories.
func writeDocument(path string, doc *types.GeneratedProfile) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return writeOutput(path, append(data, '\n'))
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
