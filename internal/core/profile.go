package core

import "context"

// CandidateProfile is the structured resume/profile data the mapper draws
// values from. Extra carries employer-specific attributes (license numbers,
// clearances) that have no first-class field.
type CandidateProfile struct {
	Ref               string            `json:"ref"`
	FirstName         string            `json:"first_name"`
	LastName          string            `json:"last_name"`
	FullName          string            `json:"full_name"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	Location          string            `json:"location"`
	LinkedInURL       string            `json:"linkedin_url"`
	WebsiteURL        string            `json:"website_url"`
	ResumeFileRef     string            `json:"resume_file_ref"`
	CoverLetterRef    string            `json:"cover_letter_ref"`
	YearsExperience   string            `json:"years_experience"`
	WorkAuthorization string            `json:"work_authorization"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// Attributes flattens the profile into the canonical attribute table the
// mapper scores against. Empty values are omitted so the mapper never assigns
// a blank to a required field.
func (p *CandidateProfile) Attributes() map[string]string {
	attrs := map[string]string{
		"first_name":         p.FirstName,
		"last_name":          p.LastName,
		"full_name":          p.FullName,
		"email":              p.Email,
		"phone":              p.Phone,
		"location":           p.Location,
		"linkedin_url":       p.LinkedInURL,
		"website_url":        p.WebsiteURL,
		"resume_file":        p.ResumeFileRef,
		"cover_letter_file":  p.CoverLetterRef,
		"years_experience":   p.YearsExperience,
		"work_authorization": p.WorkAuthorization,
	}
	for k, v := range p.Extra {
		attrs[k] = v
	}
	for k, v := range attrs {
		if v == "" {
			delete(attrs, k)
		}
	}
	return attrs
}

// ProfileService fetches candidate profiles from the upstream profile store.
// Implementations must be safe for concurrent use; the worker fetches a
// profile once per task execution, never per field.
type ProfileService interface {
	GetProfile(ctx context.Context, profileRef string) (*CandidateProfile, error)
}
