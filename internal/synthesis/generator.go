// Package synthesis runs a generation request end to end: submit to the
// upstream service, extract and verify the returned PDF, and record it in history.
package synthesis

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hireflow/internal/payload"
	"github.com/jonathan/hireflow/internal/types"
)

// Transport submits a request and returns the raw response envelope.
type Transport interface {
	Submit(ctx context.Context, req types.SynthesisRequest) (types.Envelope, error)
}

// Recorder persists successfully generated documents.
type Recorder interface {
	Append(ctx context.Context, entry types.HistoryEntry) bool
}

// RequestError represents a request rejected before it was sent upstream.
type RequestError struct {
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid request: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid request: %s", e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Result is a verified (or knowingly unverified) generated document.
type Result struct {
	Document *payload.Document
	Entry    types.HistoryEntry
	Filename string
	// Recorded is false when the history write was skipped or failed.
	Recorded bool
}

// Generator wires the transport, payload policy and history together.
type Generator struct {
	transport Transport
	history   Recorder
	policy    payload.Policy
	now       func() time.Time
	newID     func() string
}

// NewGenerator creates a generator. history may be nil to skip recording.
func NewGenerator(transport Transport, history Recorder, policy payload.Policy) *Generator {
	return &Generator{
		transport: transport,
		history:   history,
		policy:    policy,
		now:       time.Now,
		newID:     func() string { return "asset_" + uuid.NewString() },
	}
}

// Generate validates req, submits it and processes the response.
func (g *Generator) Generate(ctx context.Context, req types.SynthesisRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, &RequestError{Message: "type must be cover_letter or resume_summary", Cause: err}
	}
	if g.transport == nil {
		return nil, fmt.Errorf("no synthesis transport configured")
	}

	env, err := g.transport.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.Process(ctx, req, env)
}

// Process extracts the document from an already received envelope and
// records it in history on success. All payload failures are *payload.Failure.
func (g *Generator) Process(ctx context.Context, req types.SynthesisRequest, env types.Envelope) (*Result, error) {
	var (
		doc     *payload.Document
		encoded string
		err     error
	)

	switch located := g.policy.Locate(env).(type) {
	case payload.DirectBinary:
		doc, err = g.policy.Inspect(located.Data)
		if err != nil {
			return nil, err
		}
		encoded = base64.StdEncoding.EncodeToString(located.Data)
	case payload.Candidate:
		clean, ok := payload.Sanitize(located.Raw)
		if !ok {
			return nil, &payload.Failure{Reason: payload.ReasonMissingData, Message: "response contained no document data"}
		}
		doc, err = g.policy.Decode(clean)
		if err != nil {
			return nil, err
		}
		encoded = clean
	case payload.ServerError:
		return nil, &payload.Failure{Reason: payload.ReasonServerError, Message: located.Message}
	default:
		return nil, &payload.Failure{Reason: payload.ReasonNotFound, Message: "no document found in response"}
	}

	created := g.now()
	entry := types.HistoryEntry{
		ID:          g.newID(),
		Category:    req.Type,
		Title:       req.DocumentTitle(),
		Counterpart: req.Counterpart(),
		CreatedAt:   created,
		Encoded:     encoded,
	}

	result := &Result{
		Document: doc,
		Entry:    entry,
		Filename: req.Type.Filename(created),
	}
	if g.history != nil {
		result.Recorded = g.history.Append(ctx, entry)
	}
	if !doc.Verified {
		log.Printf("[document] %s delivered without PDF signature (%d bytes)", entry.ID, doc.Size())
	}
	return result, nil
}
