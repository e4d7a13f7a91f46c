package types

// Section is one titled block of the generated profile (experience, projects, ...).
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GeneratedProfile is the document produced by the model and edited by the user.
// Sections are kept in presentation order.
type GeneratedProfile struct {
	OneLinePositioning string    `json:"oneLinePositioning"`
	ExecutiveSummary   string    `json:"executiveSummary"`
	Sections           []Section `json:"sections"`
	Skills             []string  `json:"skills"`
	ATSVersion         string    `json:"atsVersion"`
	CoverLetter        string    `json:"coverLetter,omitempty"`
}

// Clone returns a deep copy of the profile. Nil in, nil out.
func (p *GeneratedProfile) Clone() *GeneratedProfile {
	if p == nil {
		return nil
	}
	out := *p
	if p.Sections != nil {
		out.Sections = make([]Section, len(p.Sections))
		copy(out.Sections, p.Sections)
	}
	if p.Skills != nil {
		out.Skills = make([]string, len(p.Skills))
		copy(out.Skills, p.Skills)
	}
	return &out
}
