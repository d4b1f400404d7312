package types

import (
	"github.com/go-playground/validator/v10"
)

// DefaultAction is the action tag sent with generation requests.
const DefaultAction = "maincore"

// SynthesisRequest is the payload submitted to the synthesis transport.
// Only Type is checked here; the remaining fields are passed through untouched.
type SynthesisRequest struct {
	Action           string   `json:"action"`
	Type             Category `json:"type" validate:"required,oneof=cover_letter resume_summary"`
	FullName         string   `json:"fullName,omitempty"`
	Email            string   `json:"email,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	City             string   `json:"city,omitempty"`
	Country          string   `json:"country,omitempty"`
	Address          string   `json:"address,omitempty"`
	JobPosting       string   `json:"jobPosting,omitempty"`
	ResumeText       string   `json:"resumeText,omitempty"`
	CompanyName      string   `json:"companyName,omitempty"`
	JobTitle         string   `json:"jobTitle,omitempty"`
	ResumeAttachment string   `json:"resumeAttachment,omitempty"`
	ResumeFileName   string   `json:"resumeFileName,omitempty"`
}

// Validate validates the SynthesisRequest using the validator.
func (r *SynthesisRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// DocumentTitle is the display title recorded in history for this request.
func (r *SynthesisRequest) DocumentTitle() string {
	job := r.JobTitle
	if job == "" {
		job = "Opportunity"
	}
	return r.Type.Label() + " for " + job
}

// Counterpart is the organization name recorded in history for this request.
func (r *SynthesisRequest) Counterpart() string {
	if r.CompanyName == "" {
		return "Corporate Target"
	}
	return r.CompanyName
}
