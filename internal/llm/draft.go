package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/hireflow/internal/types"
)

// ErrEmptyDraft is returned when the model produced no usable text.
var ErrEmptyDraft = errors.New("failed to generate content, please try again")

// DraftRequest asks for a plain-text cover letter or resume summary.
type DraftRequest struct {
	Type           types.Category `json:"type" validate:"required,oneof=cover_letter resume_summary"`
	JobDescription string         `json:"jobDescription" validate:"required"`
	ResumeText     string         `json:"resumeText" validate:"required"`
	FullName       string         `json:"fullName" validate:"required"`
}

// Validate validates the DraftRequest using the validator.
func (r *DraftRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// BuildPrompt returns the category specific drafting prompt.
func BuildPrompt(req DraftRequest) string {
	if req.Type == types.CategoryCoverLetter {
		return fmt.Sprintf(`Act as a professional career coach. Write a highly tailored, compelling, and professional cover letter for %s based on the following job description and resume.
Job Description: %s
Resume Content: %s
The letter should be professional, minimalist, and persuasive. Use a modern business tone.`,
			req.FullName, req.JobDescription, req.ResumeText)
	}

	return fmt.Sprintf(`Act as a professional recruiter. Create a concise, high-impact professional resume summary for %s that highlights the best matches between their skills and the job description.
Job Description: %s
Resume Content: %s
Keep it under 4 sentences. Focus on results and value proposition.`,
		req.FullName, req.JobDescription, req.ResumeText)
}

// Drafter writes text drafts with an LLM client.
type Drafter struct {
	client Client
}

// NewDrafter creates a drafter backed by client.
func NewDrafter(client Client) *Drafter {
	return &Drafter{client: client}
}

// Draft validates req, prompts the model and returns the cleaned text.
func (d *Drafter) Draft(ctx context.Context, req DraftRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid draft request: %w", err)
	}

	text, err := d.client.GenerateContent(ctx, BuildPrompt(req))
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", ErrEmptyDraft
	}
	return text, nil
}

// Close releases the underlying client.
func (d *Drafter) Close() error {
	return d.client.Close()
}
