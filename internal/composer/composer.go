// Package composer turns user inputs and the current document into model requests.
// Every builder is pure: identical inputs always produce an identical request.
package composer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/prompts"
	"github.com/jonathan/profile-architect/internal/schemas"
	"github.com/jonathan/profile-architect/internal/types"
)

const promptFile = "profile.json"

// Cover letter length bounds passed to the model.
const (
	CoverLetterMinWords = 300
	CoverLetterMaxWords = 400
)

// BuildGenerationRequest composes the initial profile request.
// Personal fields go in verbatim and attachments follow the instruction as blob parts in input order.
func BuildGenerationRequest(discovery types.DiscoveryAnswers, personal types.PersonalDetails, profile types.ProfileData) (*llm.Request, error) {
	template, err := prompts.Get(promptFile, "generate-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to load generation prompt: %w", err)
	}

	jdContext, jdRule := "", ""
	if jd := strings.TrimSpace(discovery.JobDescription); jd != "" {
		jdContext = "TARGET JOB DESCRIPTION (ATS OPTIMIZATION):\n" + jd + "\n"
		jdRule = "- ATS OPTIMIZATION: Mirror the terminology and key requirements of the target job description wherever the content sources support them."
	}

	text := prompts.Format(template, map[string]string{
		"FullName":              personal.FullName,
		"Occupation":            personal.Occupation,
		"Education":             personal.Education,
		"Email":                 personal.Email,
		"Phone":                 personal.Phone,
		"Location":              personal.Location,
		"TargetRole":            discovery.TargetRole,
		"Usage":                 discovery.UsageList(),
		"Audience":              discovery.Audience,
		"Structure":             string(discovery.Structure),
		"Tone":                  string(discovery.Tone),
		"Constraints":           discovery.Constraints,
		"JobDescriptionContext": jdContext,
		"RawContent":            profile.RawContent,
		"PortfolioURL":          orNone(profile.PortfolioURL),
		"AttachmentCount":       attachmentSummary(len(profile.Attachments)),
		"JobDescriptionRule":    jdRule,
	})

	parts := make([]llm.Part, 0, 1+len(profile.Attachments))
	parts = append(parts, llm.TextPart(text))
	for _, a := range profile.Attachments {
		parts = append(parts, llm.BlobPart(a.MIMEType, a.Data))
	}

	return &llm.Request{
		Role:             llm.RoleUser,
		Parts:            parts,
		Tier:             llm.TierAdvanced,
		ResponseMIMEType: llm.MIMETypeJSON,
		ResponseSchema:   schemas.ResponseSchema(),
	}, nil
}

// BuildRefinementRequest composes a request that rewrites the whole current draft.
// The original raw content is the fact anchor; the generated draft is never treated as a source.
func BuildRefinementRequest(current *types.GeneratedProfile, instruction string, profile types.ProfileData, personal types.PersonalDetails) (*llm.Request, error) {
	if current == nil {
		return nil, fmt.Errorf("no current profile to refine")
	}

	template, err := prompts.Get(promptFile, "refine-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to load refinement prompt: %w", err)
	}

	personalJSON, err := json.MarshalIndent(personal, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal personal details: %w", err)
	}
	draftJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current draft: %w", err)
	}

	text := prompts.Format(template, map[string]string{
		"PersonalJSON":     string(personalJSON),
		"RawContent":       profile.RawContent,
		"CurrentDraftJSON": string(draftJSON),
		"Instruction":      instruction,
	})

	return &llm.Request{
		Role:             llm.RoleUser,
		Parts:            []llm.Part{llm.TextPart(text)},
		Tier:             llm.TierAdvanced,
		ResponseMIMEType: llm.MIMETypeJSON,
		ResponseSchema:   schemas.ResponseSchema(),
	}, nil
}

// BuildCoverLetterRequest composes a plain-text cover letter request from the current draft.
func BuildCoverLetterRequest(current *types.GeneratedProfile, discovery types.DiscoveryAnswers, personal types.PersonalDetails) (*llm.Request, error) {
	if current == nil {
		return nil, fmt.Errorf("no current profile for cover letter")
	}

	template, err := prompts.Get(promptFile, "cover-letter")
	if err != nil {
		return nil, fmt.Errorf("failed to load cover letter prompt: %w", err)
	}

	personalJSON, err := json.Marshal(personal)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal personal details: %w", err)
	}

	jdContext := ""
	if jd := strings.TrimSpace(discovery.JobDescription); jd != "" {
		jdContext = "JOB DESCRIPTION: " + jd + "\n"
	}

	text := prompts.Format(template, map[string]string{
		"FullName":              personal.FullName,
		"TargetRole":            discovery.TargetRole,
		"PersonalJSON":          string(personalJSON),
		"JobDescriptionContext": jdContext,
		"ExecutiveSummary":      current.ExecutiveSummary,
		"Skills":                strings.Join(current.Skills, ", "),
		"Tone":                  string(discovery.Tone),
		"MinWords":              strconv.Itoa(CoverLetterMinWords),
		"MaxWords":              strconv.Itoa(CoverLetterMaxWords),
	})

	return &llm.Request{
		Role:  llm.RoleUser,
		Parts: []llm.Part{llm.TextPart(text)},
		Tier:  llm.TierStandard,
	}, nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func attachmentSummary(n int) string {
	switch n {
	case 0:
		return "None"
	case 1:
		return "1 document attached"
	default:
		return fmt.Sprintf("%d documents attached", n)
	}
}
