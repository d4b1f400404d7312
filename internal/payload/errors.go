package payload

import "fmt"

// Reason classifies why a response could not be turned into a document.
type Reason string

const (
	// ReasonServerError means the upstream explicitly reported a failure.
	ReasonServerError Reason = "server_error"
	// ReasonNotFound means no candidate document was located in the response.
	ReasonNotFound Reason = "not_found"
	// ReasonMalformedEncoding means the candidate text failed to decode.
	ReasonMalformedEncoding Reason = "malformed_encoding"
	// ReasonNotADocument means the decoded bytes are short and lack the signature.
	ReasonNotADocument Reason = "not_a_document"
	// ReasonMissingData means nothing was left after sanitization.
	ReasonMissingData Reason = "missing_data"
)

// Failure is the typed outcome for every expected way a payload can fail.
// It implements error so callers can propagate it with errors.As.
type Failure struct {
	Reason  Reason
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Reason, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// UserMessage returns the text shown to a person for this failure.
// Server errors are surfaced verbatim.
func (f *Failure) UserMessage() string {
	switch f.Reason {
	case ReasonServerError:
		return f.Message
	case ReasonNotFound:
		return "The server returned an invalid response instead of a PDF."
	case ReasonMalformedEncoding:
		return "The document data is corrupted and could not be decoded."
	case ReasonNotADocument:
		return "The document was saved in an invalid format."
	case ReasonMissingData:
		return "The document data is missing."
	default:
		return f.Message
	}
}

func newFailure(reason Reason, message string, cause error) *Failure {
	return &Failure{Reason: reason, Message: message, Cause: cause}
}
