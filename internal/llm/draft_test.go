package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/hireflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	response string
	err      error
	prompt   string
	closed   bool
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeClient) Model() string { return "fake" }

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func validDraft(category types.Category) DraftRequest {
	return DraftRequest{
		Type:           category,
		JobDescription: "Build payment APIs in Go.",
		ResumeText:     "Five years of Go and Postgres.",
		FullName:       "Grace Hopper",
	}
}

func TestBuildPrompt(t *testing.T) {
	letter := BuildPrompt(validDraft(types.CategoryCoverLetter))
	assert.Contains(t, letter, "cover letter for Grace Hopper")
	assert.Contains(t, letter, "Job Description: Build payment APIs in Go.")
	assert.Contains(t, letter, "Resume Content: Five years of Go and Postgres.")

	summary := BuildPrompt(validDraft(types.CategoryResumeSummary))
	assert.Contains(t, summary, "resume summary for Grace Hopper")
	assert.Contains(t, summary, "under 4 sentences")
}

func TestDrafter_Draft(t *testing.T) {
	client := &fakeClient{response: "```text\nDear team,\nI am excited.\n```"}
	drafter := NewDrafter(client)

	text, err := drafter.Draft(context.Background(), validDraft(types.CategoryCoverLetter))
	require.NoError(t, err)
	assert.Equal(t, "Dear team,\nI am excited.", text)
	assert.Contains(t, client.prompt, "career coach")

	require.NoError(t, drafter.Close())
	assert.True(t, client.closed)
}

func TestDrafter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
		req    DraftRequest
		check  func(t *testing.T, err error)
	}{
		{
			name:   "invalid request",
			client: &fakeClient{response: "x"},
			req:    DraftRequest{Type: types.CategoryCoverLetter},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "invalid draft request")
			},
		},
		{
			name:   "empty response",
			client: &fakeClient{response: "   "},
			req:    validDraft(types.CategoryResumeSummary),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyDraft)
			},
		},
		{
			name:   "client failure",
			client: &fakeClient{err: errors.New("quota")},
			req:    validDraft(types.CategoryResumeSummary),
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "quota")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDrafter(tt.client).Draft(context.Background(), tt.req)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenAIClient_GenerateContent(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "A concise summary."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
		}`))
	}))
	defer server.Close()

	config := DefaultOpenAIConfig()
	config.BaseURL = server.URL + "/v1"

	client, err := NewOpenAIClient(config, "test-key")
	require.NoError(t, err)
	defer client.Close()

	text, err := NewDrafter(client).Draft(context.Background(), validDraft(types.CategoryResumeSummary))
	require.NoError(t, err)
	assert.Equal(t, "A concise summary.", text)
	assert.Equal(t, "gpt-4o-mini", received["model"])
	assert.Equal(t, "gpt-4o-mini", client.Model())
}
