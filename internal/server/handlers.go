package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/hireflow/internal/llm"
	"github.com/jonathan/hireflow/internal/rehydrate"
	"github.com/jonathan/hireflow/internal/types"
)

// maxRequestBytes bounds request bodies; resumes may be attached inline.
const maxRequestBytes = 20 << 20

// HistoryResponse represents the response for GET /history
type HistoryResponse struct {
	Entries  []types.HistorySummary `json:"entries"`
	Capacity int                    `json:"capacity,omitempty"`
}

// VerifyResponse represents the response for POST /history/verify
type VerifyResponse struct {
	Checked  int                 `json:"checked"`
	Failed   int                 `json:"failed"`
	Outcomes []rehydrate.Outcome `json:"outcomes"`
}

// DraftResponse represents the response for POST /drafts
type DraftResponse struct {
	Type types.Category `json:"type"`
	Text string         `json:"text"`
}

// handleCreateDocument submits a synthesis request and returns the PDF
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req types.SynthesisRequest
	if err := decodeBody(r, &req); err != nil {
		s.failureResponse(w, err)
		return
	}

	result, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	w.Header().Set("X-History-Id", result.Entry.ID)
	w.Header().Set("X-History-Recorded", strconv.FormatBool(result.Recorded))
	s.documentResponse(w, result.Filename, result.Document.MediaType, result.Document.Verified, result.Document.Data)
}

// handleListHistory returns history entries newest first, without payloads
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.history.List(r.Context())

	resp := HistoryResponse{Entries: make([]types.HistorySummary, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, entry.Summary())
	}
	if c, ok := s.history.(interface{ Capacity() int }); ok {
		resp.Capacity = c.Capacity()
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleHistoryDocument rehydrates a stored entry and streams the PDF
func (s *Server) handleHistoryDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "History ID is required")
		return
	}

	entry, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	handle, err := s.rehydrator.Reopen(entry)
	if err != nil {
		s.failureResponse(w, err)
		return
	}
	defer handle.Release()

	w.Header().Set("X-History-Id", entry.ID)
	s.documentResponse(w, handle.Filename, handle.MediaType, handle.Verified, handle.Bytes())
}

// handleVerifyHistory checks that every stored entry still decodes
func (s *Server) handleVerifyHistory(w http.ResponseWriter, r *http.Request) {
	outcomes, err := s.rehydrator.VerifyAll(r.Context(), s.history.List(r.Context()))
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	resp := VerifyResponse{Checked: len(outcomes), Outcomes: outcomes}
	for _, o := range outcomes {
		if !o.OK() {
			resp.Failed++
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleCreateDraft writes a plain-text cover letter or resume summary
func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	if s.drafter == nil {
		s.failureResponse(w, ErrDraftingDisabled)
		return
	}

	var req llm.DraftRequest
	if err := decodeBody(r, &req); err != nil {
		s.failureResponse(w, err)
		return
	}

	text, err := s.drafter.Draft(r.Context(), req)
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, DraftResponse{Type: req.Type, Text: text})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// documentResponse writes a binary document as an attachment.
func (s *Server) documentResponse(w http.ResponseWriter, filename, mediaType string, verified bool, data []byte) {
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Document-Verified", strconv.FormatBool(verified))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[server] failed to write document %s: %v", filename, err)
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}
