// Package rehydrate turns stored history entries back into viewable documents.
package rehydrate

import (
	"context"
	"errors"
	"log"

	"github.com/jonathan/hireflow/internal/payload"
	"github.com/jonathan/hireflow/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds concurrent decodes in VerifyAll.
const DefaultParallelism = 4

// Rehydrator reopens history entries through the same sanitize and decode
// path used for fresh responses. It does not track the handles it returns.
type Rehydrator struct {
	policy      payload.Policy
	parallelism int
}

// New creates a Rehydrator that decodes with the given policy.
func New(policy payload.Policy) *Rehydrator {
	return &Rehydrator{policy: policy, parallelism: DefaultParallelism}
}

// WithParallelism sets the number of concurrent decodes used by VerifyAll.
func (r *Rehydrator) WithParallelism(n int) *Rehydrator {
	if n > 0 {
		r.parallelism = n
	}
	return r
}

// Reopen decodes entry into a fresh handle. Stored data is re-sanitized
// because it may have been contaminated before it was saved.
func (r *Rehydrator) Reopen(entry types.HistoryEntry) (*Handle, error) {
	clean, ok := payload.Sanitize(entry.Encoded)
	if !ok {
		return nil, &payload.Failure{
			Reason:  payload.ReasonMissingData,
			Message: "stored document " + entry.ID + " has no data",
		}
	}

	doc, err := r.policy.Decode(clean)
	if err != nil {
		return nil, err
	}
	if !doc.Verified {
		log.Printf("[document] restored %s is not a verified PDF", entry.ID)
	}

	return newHandle(entry.Category.Filename(entry.CreatedAt), doc.MediaType, doc.Verified, doc.Data), nil
}

// Outcome is the verification result for one entry.
type Outcome struct {
	ID       string `json:"id"`
	Verified bool   `json:"verified"`
	Size     int    `json:"size"`
	Reason   string `json:"reason,omitempty"`
	Err      error  `json:"-"`
}

// OK reports whether the entry reopened successfully, verified or not.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// VerifyAll reopens every entry concurrently and releases each handle
// immediately. Outcomes are returned in the order of entries. The error is
// non-nil only when ctx is cancelled.
func (r *Rehydrator) VerifyAll(ctx context.Context, entries []types.HistoryEntry) ([]Outcome, error) {
	outcomes := make([]Outcome, len(entries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, entry := range entries {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			outcome := Outcome{ID: entry.ID}
			h, err := r.Reopen(entry)
			if err != nil {
				outcome.Err = err
				var f *payload.Failure
				if errors.As(err, &f) {
					outcome.Reason = string(f.Reason)
				}
			} else {
				outcome.Verified = h.Verified
				outcome.Size = h.Size()
				h.Release()
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
