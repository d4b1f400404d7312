//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNode_PreservesKeyOrder(t *testing.T) {
	node, err := ParseNode([]byte(`{"z": 1, "a": "two", "m": [true, null, {"k": "v"}]}`))
	require.NoError(t, err)

	m, ok := node.(Mapping)
	require.True(t, ok)
	require.Len(t, m, 3)
	assert.Equal(t, "z", m[0].Key)
	assert.Equal(t, Scalar("1"), m[0].Value)
	assert.Equal(t, "a", m[1].Key)
	assert.Equal(t, String("two"), m[1].Value)

	seq, ok := m[2].Value.(Sequence)
	require.True(t, ok)
	require.Len(t, seq, 3)
	assert.Equal(t, Scalar("true"), seq[0])
	assert.Equal(t, Scalar("null"), seq[1])
	assert.Equal(t, Mapping{{Key: "k", Value: String("v")}}, seq[2])
}

func TestParseNode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "plain text", input: "JVBERi0xLjQK"},
		{name: "truncated object", input: `{"data": "abc`},
		{name: "trailing garbage", input: `{"a": 1} extra`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNode([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseLeadingNode_IgnoresTrailingData(t *testing.T) {
	node, err := ParseLeadingNode([]byte(`{"error":"timeout"}%PDF-garbage`))
	require.NoError(t, err)

	m, ok := node.(Mapping)
	require.True(t, ok)
	v, found := m.Lookup("error")
	assert.True(t, found)
	assert.Equal(t, String("timeout"), v)
}

func TestParseNode_DuplicateKeys(t *testing.T) {
	node, err := ParseNode([]byte(`{"data":"first","status":"ok","data":"second"}`))
	require.NoError(t, err)

	m, ok := node.(Mapping)
	require.True(t, ok)
	assert.Equal(t, Mapping{
		{Key: "data", Value: String("second")},
		{Key: "status", Value: String("ok")},
	}, m)
}

func TestMappingLookup_LastWins(t *testing.T) {
	m := Mapping{{Key: "a", Value: String("old")}, {Key: "a", Value: String("new")}}
	v, found := m.Lookup("a")
	assert.True(t, found)
	assert.Equal(t, String("new"), v)
}

func TestMappingLookup_Missing(t *testing.T) {
	_, found := Mapping{{Key: "a", Value: String("b")}}.Lookup("missing")
	assert.False(t, found)
}

func TestCategory(t *testing.T) {
	created := time.UnixMilli(1700000000123)

	assert.True(t, CategoryCoverLetter.Valid())
	assert.True(t, CategoryResumeSummary.Valid())
	assert.False(t, Category("memo").Valid())

	assert.Equal(t, "Cover Letter", CategoryCoverLetter.Label())
	assert.Equal(t, "Resume", CategoryResumeSummary.Label())
	assert.Equal(t, "cover_letter_1700000000123.pdf", CategoryCoverLetter.Filename(created))
}

func TestHistoryEntry_Validate(t *testing.T) {
	valid := HistoryEntry{
		ID:        "asset_1",
		Category:  CategoryResumeSummary,
		CreatedAt: time.Now(),
		Encoded:   "JVBERi0=",
	}
	require.NoError(t, valid.Validate())

	invalid := valid
	invalid.Category = "memo"
	assert.Error(t, invalid.Validate())

	missing := valid
	missing.Encoded = ""
	assert.Error(t, missing.Validate())
}

func TestSynthesisRequest(t *testing.T) {
	req := SynthesisRequest{Type: CategoryCoverLetter}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Cover Letter for Opportunity", req.DocumentTitle())
	assert.Equal(t, "Corporate Target", req.Counterpart())

	req.JobTitle = "Staff Engineer"
	req.CompanyName = "Acme"
	assert.Equal(t, "Cover Letter for Staff Engineer", req.DocumentTitle())
	assert.Equal(t, "Acme", req.Counterpart())

	bad := SynthesisRequest{Type: "memo"}
	assert.Error(t, bad.Validate())
	assert.Error(t, (&SynthesisRequest{}).Validate())
}
