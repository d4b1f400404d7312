package payload

import (
	"bytes"
	"encoding/base64"
	"log"
	"strings"
)

// Document is a decoded binary document.
// Verified is false for a degraded success: the bytes were large enough to
// keep but did not start with the PDF signature.
type Document struct {
	Data      []byte
	MediaType string
	Verified  bool
}

// Size returns the document length in bytes.
func (d *Document) Size() int {
	return len(d.Data)
}

// Decode turns base64 text into a document using the default policy.
func Decode(encoded string) (*Document, error) {
	return DefaultPolicy().Decode(encoded)
}

// Decode turns base64 text into a document and checks its signature.
// The input need not be sanitized. Every expected failure is returned as a
// *Failure with reason MissingData, MalformedEncoding or NotADocument.
func (p Policy) Decode(encoded string) (*Document, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, newFailure(ReasonMissingData, "encoded document is empty", nil)
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return nil, newFailure(ReasonMalformedEncoding, "base64 decoding failed", err)
	}

	return p.Inspect(data)
}

// Inspect applies the signature policy to already-binary content.
// Short unsigned content is rejected as NotADocument; large unsigned content is
// kept as an unverified document.
func (p Policy) Inspect(data []byte) (*Document, error) {
	p = p.withDefaults()

	if bytes.HasPrefix(data, Signature) {
		return &Document{Data: data, MediaType: MediaType, Verified: true}, nil
	}

	if len(data) < p.UnverifiedMinBytes {
		return nil, newFailure(ReasonNotADocument, "decoded content lacks the PDF signature", nil)
	}

	log.Printf("[document] %d bytes without PDF signature, keeping as unverified", len(data))
	return &Document{Data: data, MediaType: MediaType, Verified: false}, nil
}

// decodeBase64 decodes standard base64. Input without any padding is accepted
// when its length is not a multiple of four, matching browser atob behavior.
func decodeBase64(s string) ([]byte, error) {
	if len(s)%4 != 0 && !strings.Contains(s, "=") {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return base64.StdEncoding.DecodeString(s)
}
