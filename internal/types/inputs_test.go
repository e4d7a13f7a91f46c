//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDiscovery() DiscoveryAnswers {
	d := DefaultDiscoveryAnswers()
	d.TargetRole = "Product Manager"
	d.Usage = []UsageType{UsageResume}
	return d
}

func TestDiscoveryAnswers_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *DiscoveryAnswers)
		wantErr   bool
		wantField string
	}{
		{
			name:    "valid answers",
			mutate:  func(_ *DiscoveryAnswers) {},
			wantErr: false,
		},
		{
			name:      "missing target role",
			mutate:    func(d *DiscoveryAnswers) { d.TargetRole = "" },
			wantErr:   true,
			wantField: "targetRole",
		},
		{
			name:      "blank target role",
			mutate:    func(d *DiscoveryAnswers) { d.TargetRole = "   " },
			wantErr:   true,
			wantField: "targetRole",
		},
		{
			name:      "no usage contexts",
			mutate:    func(d *DiscoveryAnswers) { d.Usage = []UsageType{} },
			wantErr:   true,
			wantField: "usage",
		},
		{
			name:      "unknown usage context",
			mutate:    func(d *DiscoveryAnswers) { d.Usage = []UsageType{"billboard"} },
			wantErr:   true,
			wantField: "usage[0]",
		},
		{
			name:      "unknown structure",
			mutate:    func(d *DiscoveryAnswers) { d.Structure = "chronological" },
			wantErr:   true,
			wantField: "structure",
		},
		{
			name:      "unknown tone",
			mutate:    func(d *DiscoveryAnswers) { d.Tone = "sarcastic" },
			wantErr:   true,
			wantField: "tone",
		},
		{
			name: "all usage contexts",
			mutate: func(d *DiscoveryAnswers) {
				d.Usage = []UsageType{
					UsageResume, UsageLinkedIn, UsagePortfolio, UsagePitchDeck,
					UsagePublicProfile, UsageDelegateIntro, UsageAcademic,
				}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDiscovery()
			tt.mutate(&d)
			err := d.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}
}

func TestPersonalDetails_Validate(t *testing.T) {
	tests := []struct {
		name    string
		details PersonalDetails
		wantErr bool
	}{
		{
			name:    "name and occupation only",
			details: PersonalDetails{FullName: "Jane Doe", Occupation: "PM"},
		},
		{
			name: "all fields",
			details: PersonalDetails{
				FullName:   "Jane Doe",
				Occupation: "PM",
				Education:  "MBA",
				Email:      "jane@example.com",
				Phone:      "555-0100",
				Location:   "Berlin",
			},
		},
		{
			name:    "missing name",
			details: PersonalDetails{Occupation: "PM"},
			wantErr: true,
		},
		{
			name:    "missing occupation",
			details: PersonalDetails{FullName: "Jane Doe"},
			wantErr: true,
		},
		{
			name:    "invalid email",
			details: PersonalDetails{FullName: "Jane Doe", Occupation: "PM", Email: "not-an-email"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.details.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProfileData_MinimumContext(t *testing.T) {
	tests := []struct {
		name    string
		profile ProfileData
		wantErr bool
	}{
		{
			name:    "content long enough",
			profile: ProfileData{RawContent: "5 years at Acme Corp leading launches"},
		},
		{
			name:    "content exactly at the limit",
			profile: ProfileData{RawContent: strings.Repeat("x", MinRawContentLength)},
		},
		{
			name:    "short multi-byte content",
			profile: ProfileData{RawContent: "履歴書経験十年リーダー"},
			wantErr: true,
		},
		{
			name:    "multi-byte content at the limit",
			profile: ProfileData{RawContent: strings.Repeat("é", MinRawContentLength)},
		},
		{
			name:    "short content only",
			profile: ProfileData{RawContent: "too short"},
			wantErr: true,
		},
		{
			name: "short content with attachment",
			profile: ProfileData{
				RawContent:  "cv attached",
				Attachments: []Attachment{{Data: []byte("%PDF-1.4"), MIMEType: "application/pdf"}},
			},
		},
		{
			name:    "portfolio URL only",
			profile: ProfileData{PortfolioURL: "https://example.com/jane"},
		},
		{
			name:    "invalid portfolio URL",
			profile: ProfileData{RawContent: strings.Repeat("x", 40), PortfolioURL: "not a url"},
			wantErr: true,
		},
		{
			name:    "empty profile",
			profile: ProfileData{},
			wantErr: true,
		},
		{
			name: "attachment without MIME type",
			profile: ProfileData{
				Attachments: []Attachment{{Data: []byte("abc")}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProfileData_MinimumContextMessage(t *testing.T) {
	p := ProfileData{RawContent: "short"}
	err := p.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "rawContent", verr.Fields[0].Field)
	assert.Equal(t, "mincontext", verr.Fields[0].Rule)
	assert.Contains(t, err.Error(), "portfolio URL")
}

func TestDiscoveryAnswers_UsageList(t *testing.T) {
	d := DiscoveryAnswers{Usage: []UsageType{UsageResume, UsageLinkedIn}}
	assert.Equal(t, "resume, linkedin", d.UsageList())
}

func TestGeneratedProfile_Clone(t *testing.T) {
	original := &GeneratedProfile{
		OneLinePositioning: "Builder",
		ExecutiveSummary:   "Summary",
		Sections:           []Section{{Title: "Experience", Content: "Acme"}},
		Skills:             []string{"Go"},
		ATSVersion:         "JANE DOE",
	}

	clone := original.Clone()
	require.NotSame(t, original, clone)
	assert.Equal(t, original, clone)

	clone.Sections[0].Content = "changed"
	clone.Skills[0] = "Rust"
	assert.Equal(t, "Acme", original.Sections[0].Content)
	assert.Equal(t, "Go", original.Skills[0])

	var nilProfile *GeneratedProfile
	assert.Nil(t, nilProfile.Clone())
}
