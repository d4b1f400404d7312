// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/hireflow/internal/payload"
	"github.com/jonathan/hireflow/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewBytes is how much of a document header is echoed
	previewBytes = 16
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRequest outputs a summary of the synthesis request being sent.
// Free-text fields are reported by size only.
func (p *Printer) PrintRequest(req *types.SynthesisRequest) {
	if req == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type:     %s\n", req.Type.Label()))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", req.DocumentTitle()))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", req.Counterpart()))
	if req.FullName != "" {
		sb.WriteString(fmt.Sprintf("Name:     %s\n", req.FullName))
	}
	sb.WriteString(fmt.Sprintf("Posting:  %d chars\n", len(req.JobPosting)))
	sb.WriteString(fmt.Sprintf("Resume:   %d chars", len(req.ResumeText)))
	if req.ResumeFileName != "" {
		sb.WriteString(fmt.Sprintf("\nAttached: %s", req.ResumeFileName))
	}

	p.printBox("SYNTHESIS REQUEST", sb.String())
}

// PrintDocument outputs the decoded document's size, signature status and header bytes.
func (p *Printer) PrintDocument(filename string, doc *payload.Document) {
	if doc == nil {
		return
	}

	status := "verified"
	if !doc.Verified {
		status = "unverified (no signature)"
	}

	header := doc.Data
	if len(header) > previewBytes {
		header = header[:previewBytes]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", filename))
	sb.WriteString(fmt.Sprintf("Type:     %s\n", doc.MediaType))
	sb.WriteString(fmt.Sprintf("Size:     %d bytes\n", doc.Size()))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", status))
	sb.WriteString(fmt.Sprintf("Header:   %q", header))

	p.printBox("DECODED DOCUMENT", sb.String())
}

// PrintHistory outputs the most recent history entries.
func (p *Printer) PrintHistory(entries []types.HistoryEntry, capacity int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Entries: %d of %d\n", len(entries), capacity))

	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("\n  • %s  %s", entries[i].ID, entries[i].Title))
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(entries)-maxItemsToShow))
	}

	p.printBox("HISTORY", sb.String())
}
