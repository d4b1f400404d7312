package payload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/hireflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samplePDF returns a signed document of roughly size bytes.
func samplePDF(size int) []byte {
	head := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	if size <= len(head) {
		return head
	}
	body := bytes.Repeat([]byte{'x'}, size-len(head)-6)
	out := append(head, body...)
	return append(out, []byte("%%EOF\n")...)
}

func encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func requireFailure(t *testing.T, err error, reason Reason) {
	t.Helper()
	var f *Failure
	require.True(t, errors.As(err, &f), "expected *Failure, got %v", err)
	assert.Equal(t, reason, f.Reason)
}

// --- Sanitize ---

func TestSanitize(t *testing.T) {
	encoded := encode(samplePDF(300))

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare", raw: encoded, want: encoded},
		{name: "surrounding whitespace", raw: "  \n\t" + encoded + "\n  ", want: encoded},
		{name: "data uri", raw: "data:application/pdf;base64," + encoded, want: encoded},
		{name: "data uri upper case", raw: "DATA:Application/PDF;BASE64," + encoded, want: encoded},
		{name: "fenced with tag", raw: "```pdf\n" + encoded + "\n```", want: encoded},
		{name: "fenced without tag", raw: "```\n" + encoded + "\n```", want: encoded},
		{name: "fenced base64 tag", raw: "Here you go:\n```base64\n" + encoded + "\n```\n", want: "Hereyougo" + encoded},
		{name: "fence glued to payload", raw: "```" + encoded + "```", want: encoded},
		{name: "fenced data uri", raw: "```\ndata:application/pdf;base64," + encoded + "\n```", want: encoded},
		{name: "wrapped lines", raw: encoded[:76] + "\r\n" + encoded[76:], want: encoded},
		{name: "foreign characters", raw: encoded[:10] + "é\"," + encoded[10:], want: encoded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Sanitize(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "```\n```", "data:application/pdf;base64,", "!!! ??? ..."} {
		got, ok := Sanitize(raw)
		assert.False(t, ok, "input %q", raw)
		assert.Empty(t, got)
	}
}

func TestSanitize_AlphabetAndIdempotence(t *testing.T) {
	inputs := []string{
		"hello, world!",
		"```json\n{\"data\": \"JVBERi0x\"}\n```",
		"data:application/pdf;base64,JVBE Ri0x LjQK",
		"\x00\x01\xff binary junk +/= ok",
		strings.Repeat("ü", 20) + "abc",
		encode(samplePDF(64)),
	}

	for _, in := range inputs {
		once, ok := Sanitize(in)
		if !ok {
			continue
		}
		assert.True(t, IsSanitized(once), "output %q has characters outside the alphabet", once)

		twice, ok := Sanitize(once)
		require.True(t, ok)
		assert.Equal(t, once, twice)
	}
}

// --- Decode ---

func TestDecode_RoundTrip(t *testing.T) {
	doc := samplePDF(2048)

	got, err := Decode(encode(doc))
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Equal(t, MediaType, got.MediaType)
	assert.Equal(t, doc, got.Data)
	assert.Equal(t, len(doc), got.Size())
}

func TestDecode_MissingPadding(t *testing.T) {
	doc := samplePDF(301)
	unpadded := strings.TrimRight(encode(doc), "=")
	require.NotEqual(t, 0, len(unpadded)%4)

	got, err := Decode(unpadded)
	require.NoError(t, err)
	assert.Equal(t, doc, got.Data)
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason Reason
	}{
		{name: "empty", input: "", reason: ReasonMissingData},
		{name: "whitespace", input: "  \n", reason: ReasonMissingData},
		{name: "misplaced padding", input: "JVBE=Ri0xLjQK", reason: ReasonMalformedEncoding},
		{name: "invalid character", input: "JVBERi0x*jQK", reason: ReasonMalformedEncoding},
		{name: "impossible length", input: "JVBERi0xL", reason: ReasonMalformedEncoding},
		{name: "short error text", input: encode([]byte("Workflow execution failed")), reason: ReasonNotADocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			assert.Nil(t, got)
			requireFailure(t, err, tt.reason)
		})
	}
}

func TestDecode_UnsignedSizeThreshold(t *testing.T) {
	short := bytes.Repeat([]byte{'A'}, 50)
	_, err := Decode(encode(short))
	requireFailure(t, err, ReasonNotADocument)

	long := bytes.Repeat([]byte{'A'}, 1200)
	got, err := Decode(encode(long))
	require.NoError(t, err)
	assert.False(t, got.Verified)
	assert.Equal(t, long, got.Data)
}

func TestPolicy_CustomThreshold(t *testing.T) {
	p := Policy{UnverifiedMinBytes: 40}

	got, err := p.Inspect(bytes.Repeat([]byte{'B'}, 50))
	require.NoError(t, err)
	assert.False(t, got.Verified)

	_, err = p.Inspect(bytes.Repeat([]byte{'B'}, 39))
	requireFailure(t, err, ReasonNotADocument)
}

// --- Locate ---

func TestLocate_Binary(t *testing.T) {
	doc := samplePDF(500)

	got := Locate(types.BinaryPayload{Data: doc, ContentType: MediaType})
	assert.Equal(t, DirectBinary{Data: doc}, got)
}

func TestLocate_BinaryJSONError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error field", body: `{"error":"timeout"}`, want: "timeout"},
		{name: "error with trailing bytes", body: `{"error":"timeout"}` + string(samplePDF(300)), want: "timeout"},
		{name: "message wins", body: `{"error":"E42","message":"Workflow could not be started"}`, want: "Workflow could not be started"},
		{name: "leading whitespace", body: "\n  {\"message\": \"quota exceeded\"}", want: "quota exceeded"},
		{name: "nested error", body: `{"error":{"message":"bad gateway"}}`, want: "bad gateway"},
		{name: "numeric error", body: `{"error":500}`, want: "500"},
		{name: "boolean error", body: `{"error":true}`, want: "true"},
		{name: "empty message falls back to error", body: `{"message":"","error":"quota"}`, want: "quota"},
		{name: "empty message", body: `{"message":""}`, want: "Server error during synthesis."},
		{name: "error list", body: `{"error":["quota"]}`, want: "Server error during synthesis."},
		{name: "null error", body: `{"error":null}`, want: "Server error during synthesis."},
		{name: "nested without message", body: `{"error":{"code":7}}`, want: "Server error during synthesis."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Locate(types.BinaryPayload{Data: []byte(tt.body)})
			assert.Equal(t, ServerError{Message: tt.want}, got)
		})
	}
}

func TestLocate_SniffWindow(t *testing.T) {
	body := []byte(strings.Repeat(" ", 150) + `{"error":"timeout"}`)

	// The default window sees only whitespace
	assert.Equal(t, DirectBinary{Data: body}, Locate(types.BinaryPayload{Data: body}))

	wide := Policy{SniffBytes: 200}
	assert.Equal(t, ServerError{Message: "timeout"}, wide.Locate(types.BinaryPayload{Data: body}))

	narrow := Policy{SniffBytes: 10}
	padded := []byte(strings.Repeat(" ", 20) + `{"error":"timeout"}`)
	assert.Equal(t, DirectBinary{Data: padded}, narrow.Locate(types.BinaryPayload{Data: padded}))
}

func TestLocate_BinaryJSONWithoutErrorField(t *testing.T) {
	body := []byte(`{"status":"ok"}`)
	assert.Equal(t, DirectBinary{Data: body}, Locate(types.BinaryPayload{Data: body}))
}

func TestLocate_Text(t *testing.T) {
	encoded := encode(samplePDF(400))

	assert.Equal(t, Candidate{Raw: encoded}, Locate(types.TextPayload{Text: encoded}))

	wrapped := `{"success": true, "data": "` + encoded + `"}`
	assert.Equal(t, Candidate{Raw: encoded}, Locate(types.TextPayload{Text: wrapped}))

	assert.Equal(t, NotFound{}, Locate(types.TextPayload{Text: `{"status": "queued", "id": 7}`}))

	duplicated := `{"data":"first","data":"` + encoded + `"}`
	assert.Equal(t, Candidate{Raw: encoded}, Locate(types.TextPayload{Text: duplicated}))
}

func TestLocate_StructuredPriority(t *testing.T) {
	encoded := encode(samplePDF(400))
	long := "JVBER" + strings.Repeat("A", 250)

	tests := []struct {
		name string
		root types.Node
		want Located
	}{
		{
			name: "data field",
			root: types.Mapping{{Key: "data", Value: types.String(encoded)}},
			want: Candidate{Raw: encoded},
		},
		{
			name: "content field",
			root: types.Mapping{{Key: "content", Value: types.String(encoded)}},
			want: Candidate{Raw: encoded},
		},
		{
			name: "data beats content regardless of order",
			root: types.Mapping{
				{Key: "content", Value: types.String("second")},
				{Key: "data", Value: types.String("first")},
			},
			want: Candidate{Raw: "first"},
		},
		{
			name: "data field that is not a string is descended",
			root: types.Mapping{
				{Key: "data", Value: types.Mapping{{Key: "content", Value: types.String(encoded)}}},
			},
			want: Candidate{Raw: encoded},
		},
		{
			name: "long string with signature",
			root: types.Sequence{types.String("short"), types.Mapping{{Key: "pdf", Value: types.String(long)}}},
			want: Candidate{Raw: long},
		},
		{
			name: "long string mentioning base64",
			root: types.Mapping{{Key: "file", Value: types.String("base64:" + strings.Repeat("Q", 210))}},
			want: Candidate{Raw: "base64:" + strings.Repeat("Q", 210)},
		},
		{
			name: "long string without markers",
			root: types.Mapping{{Key: "log", Value: types.String(strings.Repeat("z", 500))}},
			want: NotFound{},
		},
		{
			name: "short signature string",
			root: types.Mapping{{Key: "pdf", Value: types.String("JVBERi0x")}},
			want: NotFound{},
		},
		{
			name: "first match in document order",
			root: types.Sequence{
				types.Mapping{{Key: "meta", Value: types.Mapping{{Key: "content", Value: types.String("deep")}}}},
				types.Mapping{{Key: "data", Value: types.String("later")}},
			},
			want: Candidate{Raw: "deep"},
		},
		{
			name: "scalars only",
			root: types.Sequence{types.Scalar("1"), types.Scalar("null")},
			want: NotFound{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Locate(types.StructuredPayload{Root: tt.root}))
		})
	}
}

func TestLocate_NilAndUnknown(t *testing.T) {
	assert.Equal(t, NotFound{}, Locate(nil))
	assert.Equal(t, NotFound{}, Locate(types.StructuredPayload{}))
}

func TestPolicy_CandidateMinLength(t *testing.T) {
	root := types.Mapping{{Key: "pdf", Value: types.String("JVBERi0xLjQK")}}

	p := Policy{CandidateMinLength: 5}
	assert.Equal(t, Candidate{Raw: "JVBERi0xLjQK"}, p.Locate(types.StructuredPayload{Root: root}))
}

// --- Pipeline properties ---

func TestPipeline_RoundTrip(t *testing.T) {
	doc := samplePDF(3000)

	located := Locate(types.TextPayload{Text: encode(doc)})
	candidate, ok := located.(Candidate)
	require.True(t, ok)

	clean, ok := Sanitize(candidate.Raw)
	require.True(t, ok)

	got, err := Decode(clean)
	require.NoError(t, err)
	assert.Equal(t, doc, got.Data)
}

func TestPipeline_FencedDataField(t *testing.T) {
	doc := samplePDF(1500)
	encoded := encode(doc)

	decodeVia := func(env types.Envelope) []byte {
		candidate, ok := Locate(env).(Candidate)
		require.True(t, ok)
		clean, ok := Sanitize(candidate.Raw)
		require.True(t, ok)
		got, err := Decode(clean)
		require.NoError(t, err)
		return got.Data
	}

	fenced, err := types.ParseNode([]byte(`{"data": "` + "```pdf\\n" + encoded + "\\n```" + `"}`))
	require.NoError(t, err)

	assert.Equal(t, doc, decodeVia(types.StructuredPayload{Root: fenced}))
	assert.Equal(t, doc, decodeVia(types.TextPayload{Text: encoded}))
}

func TestFailure_Messages(t *testing.T) {
	cause := errors.New("illegal base64 data at input byte 4")
	f := &Failure{Reason: ReasonMalformedEncoding, Message: "base64 decoding failed", Cause: cause}

	assert.Contains(t, f.Error(), "malformed_encoding")
	assert.ErrorIs(t, f, cause)
	assert.Contains(t, f.UserMessage(), "corrupted")

	server := &Failure{Reason: ReasonServerError, Message: "timeout"}
	assert.Equal(t, "timeout", server.UserMessage())
	assert.Equal(t, "server_error: timeout", server.Error())

	assert.Contains(t, (&Failure{Reason: ReasonMissingData}).UserMessage(), "missing")
	assert.Contains(t, (&Failure{Reason: ReasonNotADocument}).UserMessage(), "invalid format")
	assert.Contains(t, (&Failure{Reason: ReasonNotFound}).UserMessage(), "invalid response")
}
