package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure by where in the signing flow it happened. The
// orchestrator switches on the kind to decide the order-side effect: an
// on-hold status for pre-submission failures, an error marker for
// submission-stage ones.
type Kind int

const (
	// KindConfiguration: neither a workflow reference nor a document
	// template is configured.
	KindConfiguration Kind = iota
	// KindValidation: the order or configuration carries unusable data
	// (missing contact email, non-numeric workflow reference).
	KindValidation
	// KindAuthentication: login transport, status or content failure.
	KindAuthentication
	// KindPdf: a document template is unreadable or unfetchable.
	KindPdf
	// KindTransport: network failure or non-2xx HTTP on submission.
	KindTransport
	// KindAPI: 2xx HTTP but application-level rejection.
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindPdf:
		return "pdf"
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// FlowError is the one error type this service raises. Message is safe for
// order notes; Internal is the wrapped cause and never shown to operators
// verbatim.
type FlowError struct {
	Kind     Kind
	Message  string
	Internal error
}

func (e *FlowError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FlowError) Unwrap() error { return e.Internal }

func New(kind Kind, message string, internal error) *FlowError {
	return &FlowError{Kind: kind, Message: message, Internal: internal}
}

func Configuration(message string) *FlowError {
	return New(KindConfiguration, message, nil)
}

func Validation(message string) *FlowError {
	return New(KindValidation, message, nil)
}

func Authentication(message string, internal error) *FlowError {
	return New(KindAuthentication, message, internal)
}

func Pdf(message string, internal error) *FlowError {
	return New(KindPdf, message, internal)
}

func Transport(message string, internal error) *FlowError {
	return New(KindTransport, message, internal)
}

func API(message string) *FlowError {
	return New(KindAPI, message, nil)
}

// KindOf extracts the kind from any error in the chain; ok is false for
// foreign errors.
func KindOf(err error) (Kind, bool) {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// MessageOf returns the operator-safe message, falling back to Error().
func MessageOf(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}

// IsInvalidToken recognizes the remote "Invalid Token" rejection by message
// inspection; it forces a token-cache purge upstream.
func IsInvalidToken(err error) bool {
	var fe *FlowError
	if !errors.As(err, &fe) || fe.Kind != KindAPI {
		return false
	}
	return strings.Contains(strings.ToLower(fe.Message), "invalid token")
}

// IsInvalidDocument recognizes the remote document-validation rejection; it
// triggers the operator diagnostic note.
func IsInvalidDocument(err error) bool {
	var fe *FlowError
	if !errors.As(err, &fe) || fe.Kind != KindAPI {
		return false
	}
	msg := strings.ToLower(fe.Message)
	return strings.Contains(msg, "valid document") || strings.Contains(msg, "document")
}
