package payload

import (
	"bytes"
	"strings"

	"github.com/jonathan/hireflow/internal/types"
)

// Located is the outcome of searching a response for a document.
// Implementations: DirectBinary, Candidate, ServerError, NotFound.
type Located interface {
	isLocated()
}

// DirectBinary means the response body is itself the document.
type DirectBinary struct {
	Data []byte
}

// Candidate is a string suspected, but not yet verified, to be an encoded document.
type Candidate struct {
	Raw string
}

// ServerError means the upstream reported an explicit failure.
type ServerError struct {
	Message string
}

// NotFound means nothing resembling a document was found.
type NotFound struct{}

func (DirectBinary) isLocated() {}
func (Candidate) isLocated()    {}
func (ServerError) isLocated()  {}
func (NotFound) isLocated()     {}

// Locate searches a response envelope using the default policy.
func Locate(env types.Envelope) Located {
	return DefaultPolicy().Locate(env)
}

// Locate resolves any envelope into a located candidate, a direct binary
// document, an upstream error or NotFound.
func (p Policy) Locate(env types.Envelope) Located {
	p = p.withDefaults()

	switch e := env.(type) {
	case types.BinaryPayload:
		return p.locateBinary(e.Data)
	case *types.BinaryPayload:
		return p.locateBinary(e.Data)
	case types.TextPayload:
		return p.locateText(e.Text)
	case *types.TextPayload:
		return p.locateText(e.Text)
	case types.StructuredPayload:
		return p.locateNode(e.Root)
	case *types.StructuredPayload:
		return p.locateNode(e.Root)
	default:
		return NotFound{}
	}
}

// locateBinary catches JSON error bodies that were delivered as a binary blob.
func (p Policy) locateBinary(data []byte) Located {
	sniff := data
	if len(sniff) > p.SniffBytes {
		sniff = sniff[:p.SniffBytes]
	}

	if strings.HasPrefix(strings.TrimSpace(string(sniff)), "{") {
		if node, err := types.ParseLeadingNode(bytes.TrimSpace(data)); err == nil {
			if msg, ok := errorMessage(node); ok {
				return ServerError{Message: msg}
			}
		}
	}
	return DirectBinary{Data: data}
}

func (p Policy) locateText(text string) Located {
	node, err := types.ParseNode([]byte(text))
	if err != nil {
		return Candidate{Raw: text}
	}
	return p.locateNode(node)
}

// locateNode runs a depth-first search. At each mapping a string "data" or
// "content" field wins; any string longer than CandidateMinLength that carries
// the encoded signature or the word base64 wins; otherwise children are searched
// in document order.
func (p Policy) locateNode(root types.Node) Located {
	if found, ok := p.search(root); ok {
		return Candidate{Raw: found}
	}
	return NotFound{}
}

func (p Policy) search(node types.Node) (string, bool) {
	switch n := node.(type) {
	case types.String:
		s := string(n)
		if len(s) > p.CandidateMinLength &&
			(strings.Contains(s, encodedSignature) || strings.Contains(s, "base64")) {
			return s, true
		}
	case types.Mapping:
		for _, key := range []string{"data", "content"} {
			if v, ok := n.Lookup(key); ok {
				if s, isString := v.(types.String); isString {
					return string(s), true
				}
			}
		}
		for _, f := range n {
			if s, ok := p.search(f.Value); ok {
				return s, true
			}
		}
	case types.Sequence:
		for _, item := range n {
			if s, ok := p.search(item); ok {
				return s, true
			}
		}
	}
	return "", false
}

// genericServerError is reported for an error body whose message or error
// field carries no usable text.
const genericServerError = "Server error during synthesis."

// errorMessage reports whether a JSON error body has a "message" or "error"
// field and returns the text to show for it.
func errorMessage(node types.Node) (string, bool) {
	m, ok := node.(types.Mapping)
	if !ok {
		return "", false
	}
	text, present := errorFields(m)
	if !present {
		return "", false
	}
	if text == "" {
		text = genericServerError
	}
	return text, true
}

// errorFields returns the first non-empty text among "message" then "error",
// and whether either field exists at all.
func errorFields(m types.Mapping) (text string, present bool) {
	for _, key := range []string{"message", "error"} {
		v, found := m.Lookup(key)
		if !found {
			continue
		}
		present = true
		if text = errorText(v); text != "" {
			return text, true
		}
	}
	return "", present
}

func errorText(node types.Node) string {
	switch v := node.(type) {
	case types.String:
		return string(v)
	case types.Scalar:
		// null and false carry nothing to show
		if v == "null" || v == "false" {
			return ""
		}
		return string(v)
	case types.Mapping:
		text, _ := errorFields(v)
		return text
	}
	return ""
}
