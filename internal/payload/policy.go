// Package payload locates, sanitizes, decodes and verifies PDF documents
// returned by the synthesis service in whatever shape it chooses to send them.
package payload

// Heuristic defaults. They were picked empirically against the upstream
// service and are overridable through Policy.
const (
	DefaultCandidateMinLength = 200
	DefaultUnverifiedMinBytes = 1000
	DefaultSniffBytes         = 100
)

// MediaType is the declared media type of every decoded document.
const MediaType = "application/pdf"

// Signature is the leading byte sequence of a well-formed PDF.
var Signature = []byte("%PDF-")

// encodedSignature is the base64 form of Signature.
const encodedSignature = "JVBER"

// Policy holds the tunable thresholds used while locating and decoding.
type Policy struct {
	// CandidateMinLength is the length a bare string must exceed to be
	// considered an encoded document during structured search.
	CandidateMinLength int
	// UnverifiedMinBytes is the size at or above which unsigned bytes are
	// accepted as an unverified document instead of rejected.
	UnverifiedMinBytes int
	// SniffBytes is how much of a binary payload is inspected for a JSON error body.
	SniffBytes int
}

// DefaultPolicy returns the policy with the default thresholds.
func DefaultPolicy() Policy {
	return Policy{
		CandidateMinLength: DefaultCandidateMinLength,
		UnverifiedMinBytes: DefaultUnverifiedMinBytes,
		SniffBytes:         DefaultSniffBytes,
	}
}

// withDefaults fills zero or negative thresholds from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.CandidateMinLength <= 0 {
		p.CandidateMinLength = d.CandidateMinLength
	}
	if p.UnverifiedMinBytes <= 0 {
		p.UnverifiedMinBytes = d.UnverifiedMinBytes
	}
	if p.SniffBytes <= 0 {
		p.SniffBytes = d.SniffBytes
	}
	return p
}
