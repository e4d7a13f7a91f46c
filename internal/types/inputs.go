// Package types provides type definitions for structured data used throughout the profile architect.
package types

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// UsageType is a context in which the generated profile will be used.
type UsageType string

// Usage contexts offered by the discovery step.
const (
	UsageResume        UsageType = "resume"
	UsageLinkedIn      UsageType = "linkedin"
	UsagePortfolio     UsageType = "portfolio"
	UsagePitchDeck     UsageType = "pitch-deck"
	UsagePublicProfile UsageType = "public-profile"
	UsageDelegateIntro UsageType = "delegate-intro"
	UsageAcademic      UsageType = "academic"
)

// StructurePreference is the layout strategy requested for the profile.
type StructurePreference string

// Structure preferences.
const (
	StructureJobFocused       StructurePreference = "job-focused"
	StructureSkillFocused     StructurePreference = "skill-focused"
	StructureAuthorityFocused StructurePreference = "authority-focused"
	StructureHybrid           StructurePreference = "hybrid"
)

// TonePreference is the voice requested for generated prose.
type TonePreference string

// Tone preferences.
const (
	ToneCorporate TonePreference = "corporate"
	ToneWarm      TonePreference = "warm"
	ToneConfident TonePreference = "confident"
	ToneMinimal   TonePreference = "minimal"
)

// MinRawContentLength is the shortest free-text content that counts as enough context on its own.
const MinRawContentLength = 20

// DiscoveryAnswers holds the generation strategy chosen in the discovery step.
type DiscoveryAnswers struct {
	TargetRole     string              `json:"targetRole" yaml:"target_role" validate:"required,notblank"`
	Usage          []UsageType         `json:"usage" yaml:"usage" validate:"required,min=1,dive,oneof=resume linkedin portfolio pitch-deck public-profile delegate-intro academic"`
	JobDescription string              `json:"jobDescription,omitempty" yaml:"job_description"`
	Audience       string              `json:"audience" yaml:"audience"`
	Structure      StructurePreference `json:"structure" yaml:"structure" validate:"oneof=job-focused skill-focused authority-focused hybrid"`
	Tone           TonePreference      `json:"tone" yaml:"tone" validate:"oneof=corporate warm confident minimal"`
	Constraints    string              `json:"constraints" yaml:"constraints"`
}

// DefaultDiscoveryAnswers returns the answers the discovery form starts with.
func DefaultDiscoveryAnswers() DiscoveryAnswers {
	return DiscoveryAnswers{
		Usage:     []UsageType{},
		Structure: StructureHybrid,
		Tone:      ToneCorporate,
	}
}

// UsageList joins the usage contexts for display in prompts.
func (d DiscoveryAnswers) UsageList() string {
	parts := make([]string, len(d.Usage))
	for i, u := range d.Usage {
		parts[i] = string(u)
	}
	return strings.Join(parts, ", ")
}

// PersonalDetails are the identity facts of the candidate.
type PersonalDetails struct {
	FullName   string `json:"fullName" yaml:"full_name" validate:"required,notblank"`
	Occupation string `json:"occupation" yaml:"occupation" validate:"required,notblank"`
	Education  string `json:"education" yaml:"education"`
	Email      string `json:"email" yaml:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" yaml:"phone"`
	Location   string `json:"location" yaml:"location"`
}

// Attachment is an opaque binary source document (CV scan, PDF export, ...).
type Attachment struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mimeType" validate:"required"`
}

// ProfileData is the raw source-of-truth material supplied by the user.
type ProfileData struct {
	RawContent   string       `json:"rawContent" yaml:"raw_content"`
	PortfolioURL string       `json:"portfolioUrl,omitempty" yaml:"portfolio_url" validate:"omitempty,url"`
	Attachments  []Attachment `json:"attachments" yaml:"-" validate:"dive"`
}

// HasMinimumContext reports whether the profile carries enough material to generate from.
func (p ProfileData) HasMinimumContext() bool {
	return utf8.RuneCountInString(p.RawContent) >= MinRawContentLength ||
		len(p.Attachments) > 0 ||
		strings.TrimSpace(p.PortfolioURL) != ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(ProfileData)
		if !p.HasMinimumContext() {
			sl.ReportError(p.RawContent, "rawContent", "RawContent", "mincontext", "")
		}
	}, ProfileData{})
	return v
}

// Validate validates the DiscoveryAnswers using the validator.
func (d *DiscoveryAnswers) Validate() error {
	return toValidationError(validate.Struct(d))
}

// Validate validates the PersonalDetails using the validator.
func (p *PersonalDetails) Validate() error {
	return toValidationError(validate.Struct(p))
}

// Validate validates the ProfileData using the validator, including the minimum-context rule.
func (p *ProfileData) Validate() error {
	return toValidationError(validate.Struct(p))
}
