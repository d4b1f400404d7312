package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Category identifies the kind of document a synthesis request produces.
type Category string

const (
	// CategoryCoverLetter is a tailored cover letter.
	CategoryCoverLetter Category = "cover_letter"
	// CategoryResumeSummary is a resume summary.
	CategoryResumeSummary Category = "resume_summary"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryCoverLetter || c == CategoryResumeSummary
}

// Label returns the human-readable document name for the category.
func (c Category) Label() string {
	if c == CategoryCoverLetter {
		return "Cover Letter"
	}
	return "Resume"
}

// Filename returns the download name for a document of this category created at t.
func (c Category) Filename(t time.Time) string {
	return fmt.Sprintf("%s_%d.pdf", c, t.UnixMilli())
}

// HistoryEntry is one successfully produced document kept in the history log.
// Entries are immutable once created.
type HistoryEntry struct {
	ID          string    `json:"id" validate:"required"`
	Category    Category  `json:"type" validate:"required,oneof=cover_letter resume_summary"`
	Title       string    `json:"title"`
	Counterpart string    `json:"counterpart"`
	CreatedAt   time.Time `json:"createdAt" validate:"required"`
	Encoded     string    `json:"encoded" validate:"required"`
}

// Validate validates the HistoryEntry using the validator.
func (e *HistoryEntry) Validate() error {
	validate := validator.New()
	return validate.Struct(e)
}

// HistorySummary is a HistoryEntry without its encoded payload, for listings.
type HistorySummary struct {
	ID          string    `json:"id"`
	Category    Category  `json:"type"`
	Title       string    `json:"title"`
	Counterpart string    `json:"counterpart"`
	CreatedAt   time.Time `json:"createdAt"`
	Filename    string    `json:"filename"`
}

// Summary drops the encoded payload.
func (e HistoryEntry) Summary() HistorySummary {
	return HistorySummary{
		ID:          e.ID,
		Category:    e.Category,
		Title:       e.Title,
		Counterpart: e.Counterpart,
		CreatedAt:   e.CreatedAt,
		Filename:    e.Category.Filename(e.CreatedAt),
	}
}
