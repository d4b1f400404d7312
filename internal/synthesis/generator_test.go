package synthesis

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/hireflow/internal/history"
	"github.com/jonathan/hireflow/internal/kv"
	"github.com/jonathan/hireflow/internal/payload"
	"github.com/jonathan/hireflow/internal/rehydrate"
	"github.com/jonathan/hireflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransport struct {
	env   types.Envelope
	err   error
	calls int
	last  types.SynthesisRequest
}

func (s *stubTransport) Submit(_ context.Context, req types.SynthesisRequest) (types.Envelope, error) {
	s.calls++
	s.last = req
	return s.env, s.err
}

type nopSurface struct{}

func (nopSurface) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (nopSurface) Set(context.Context, string, string) error         { return errors.New("quota exceeded") }
func (nopSurface) Delete(context.Context, string) error              { return nil }
func (nopSurface) Close() error                                      { return nil }

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func document() []byte {
	doc := append([]byte("%PDF-1.5\n"), bytes.Repeat([]byte("stream data\n"), 50)...)
	return append(doc, []byte("%%EOF")...)
}

func newTestGenerator(env types.Envelope) (*Generator, *stubTransport, *history.Store) {
	transport := &stubTransport{env: env}
	store := history.NewStore(kv.NewMemory(), nil)
	g := NewGenerator(transport, store, payload.DefaultPolicy())
	g.now = func() time.Time { return fixedNow }
	g.newID = func() string { return "asset_test" }
	return g, transport, store
}

func failureReason(t *testing.T, err error) payload.Reason {
	t.Helper()
	var f *payload.Failure
	require.True(t, errors.As(err, &f), "expected *payload.Failure, got %v", err)
	return f.Reason
}

func TestGenerate_JSONEnvelope(t *testing.T) {
	doc := document()
	encoded := base64.StdEncoding.EncodeToString(doc)
	g, transport, store := newTestGenerator(types.TextPayload{
		Text: `{"success":true,"result":{"data":"` + "```pdf\\n" + encoded + "\\n```" + `"}}`,
	})
	ctx := context.Background()

	result, err := g.Generate(ctx, types.SynthesisRequest{
		Type:        types.CategoryCoverLetter,
		JobTitle:    "Platform Engineer",
		CompanyName: "Initech",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, transport.calls)

	assert.Equal(t, doc, result.Document.Data)
	assert.True(t, result.Document.Verified)
	assert.True(t, result.Recorded)
	assert.Equal(t, "cover_letter_1748770200000.pdf", result.Filename)

	assert.Equal(t, "asset_test", result.Entry.ID)
	assert.Equal(t, "Cover Letter for Platform Engineer", result.Entry.Title)
	assert.Equal(t, "Initech", result.Entry.Counterpart)
	assert.Equal(t, encoded, result.Entry.Encoded)

	list := store.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, encoded, list[0].Encoded)
}

func TestGenerate_DirectBinaryIsStoredEncoded(t *testing.T) {
	doc := document()
	g, _, store := newTestGenerator(types.BinaryPayload{Data: doc, ContentType: "application/pdf"})
	ctx := context.Background()

	result, err := g.Generate(ctx, types.SynthesisRequest{Type: types.CategoryResumeSummary})
	require.NoError(t, err)
	assert.Equal(t, doc, result.Document.Data)
	assert.Equal(t, "Resume for Opportunity", result.Entry.Title)
	assert.Equal(t, "Corporate Target", result.Entry.Counterpart)

	entry, err := store.Get(ctx, "asset_test")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(doc), entry.Encoded)

	h, err := rehydrate.New(payload.DefaultPolicy()).Reopen(entry)
	require.NoError(t, err)
	defer h.Release()
	assert.Equal(t, doc, h.Bytes())
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name string
		env  types.Envelope
		want payload.Reason
	}{
		{
			name: "json error delivered as binary",
			env:  types.BinaryPayload{Data: []byte(`{"error":"timeout"}`), ContentType: "application/pdf"},
			want: payload.ReasonServerError,
		},
		{
			name: "numeric error code delivered as binary",
			env:  types.BinaryPayload{Data: []byte(`{"error":500}`), ContentType: "application/pdf"},
			want: payload.ReasonServerError,
		},
		{
			name: "short binary without signature",
			env:  types.BinaryPayload{Data: []byte(`{"status":"ok"}`)},
			want: payload.ReasonNotADocument,
		},
		{
			name: "no candidate",
			env:  types.TextPayload{Text: `{"status":"queued"}`},
			want: payload.ReasonNotFound,
		},
		{
			name: "empty data field",
			env:  types.TextPayload{Text: `{"data":"   "}`},
			want: payload.ReasonMissingData,
		},
		{
			name: "error text in data field",
			env:  types.TextPayload{Text: `{"data":"Something went wrong"}`},
			want: payload.ReasonNotADocument,
		},
		{
			name: "corrupted encoding",
			env:  types.TextPayload{Text: `{"data":"JVBE=Ri0x"}`},
			want: payload.ReasonMalformedEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, store := newTestGenerator(tt.env)
			ctx := context.Background()

			result, err := g.Generate(ctx, types.SynthesisRequest{Type: types.CategoryCoverLetter})
			assert.Nil(t, result)
			assert.Equal(t, tt.want, failureReason(t, err))
			assert.Empty(t, store.List(ctx))
		})
	}
}

func TestGenerate_ServerErrorMessageVerbatim(t *testing.T) {
	g, _, _ := newTestGenerator(types.BinaryPayload{Data: []byte(`{"error":"timeout"}`)})

	_, err := g.Generate(context.Background(), types.SynthesisRequest{Type: types.CategoryCoverLetter})
	var f *payload.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "timeout", f.UserMessage())
}

func TestGenerate_UnverifiedLargeDocument(t *testing.T) {
	data := bytes.Repeat([]byte{'Z'}, 1200)
	g, _, store := newTestGenerator(types.TextPayload{Text: base64.StdEncoding.EncodeToString(data)})

	result, err := g.Generate(context.Background(), types.SynthesisRequest{Type: types.CategoryCoverLetter})
	require.NoError(t, err)
	assert.False(t, result.Document.Verified)
	assert.True(t, result.Recorded)
	assert.Len(t, store.List(context.Background()), 1)
}

func TestGenerate_InvalidRequest(t *testing.T) {
	g, transport, _ := newTestGenerator(types.TextPayload{})

	_, err := g.Generate(context.Background(), types.SynthesisRequest{Type: "memo"})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, transport.calls)
}

func TestGenerate_TransportError(t *testing.T) {
	g, transport, _ := newTestGenerator(nil)
	transport.err = errors.New("connection refused")

	_, err := g.Generate(context.Background(), types.SynthesisRequest{Type: types.CategoryCoverLetter})
	assert.EqualError(t, err, "connection refused")
}

func TestGenerate_HistoryFailureDoesNotFailGeneration(t *testing.T) {
	doc := document()
	transport := &stubTransport{env: types.BinaryPayload{Data: doc}}
	g := NewGenerator(transport, history.NewStore(nopSurface{}, nil), payload.DefaultPolicy())

	result, err := g.Generate(context.Background(), types.SynthesisRequest{Type: types.CategoryCoverLetter})
	require.NoError(t, err)
	assert.False(t, result.Recorded)
	assert.Equal(t, doc, result.Document.Data)
}

func TestProcess_WithoutHistory(t *testing.T) {
	g := NewGenerator(nil, nil, payload.DefaultPolicy())

	result, err := g.Process(context.Background(),
		types.SynthesisRequest{Type: types.CategoryResumeSummary},
		types.BinaryPayload{Data: document()})
	require.NoError(t, err)
	assert.False(t, result.Recorded)
	assert.Contains(t, result.Entry.ID, "asset_")
}

func TestGenerate_NoTransport(t *testing.T) {
	g := NewGenerator(nil, nil, payload.DefaultPolicy())
	_, err := g.Generate(context.Background(), types.SynthesisRequest{Type: types.CategoryCoverLetter})
	assert.Error(t, err)
}
