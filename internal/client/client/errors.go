package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindNetwork: the request got no response (DNS, refused, reset).
	KindNetwork Kind = iota + 1
	// KindTimeout: the configured request timeout elapsed. Also matches ErrNetwork.
	KindTimeout
	// KindCanceled: the caller cancelled the request context.
	KindCanceled
	// KindAuth: the server rejected the credentials (401).
	KindAuth
	// KindValidation: any other 4xx, usually with a server-supplied detail.
	KindValidation
	// KindServer: 5xx.
	KindServer
	// KindParse: a payload could not be decoded.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindParse:
		return "parse"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors matched with errors.Is against an *APIError.
var (
	ErrNetwork      = errors.New("network error")
	ErrTimeout      = errors.New("request timed out")
	ErrCanceled     = errors.New("request canceled")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")
	ErrServer       = errors.New("server error")
	ErrParse        = errors.New("parse error")
)

// DefaultErrorMessage is used when neither the server nor the transport
// supplied any text.
const DefaultErrorMessage = "request failed"

// APIError is the normalized failure of every client operation. Error()
// returns the single human-readable message meant for display.
type APIError struct {
	Kind Kind
	// Status is the HTTP status code, zero when no response arrived.
	Status int
	// Message is the display text: server detail, then transport text,
	// then DefaultErrorMessage.
	Message   string
	Method    string
	Path      string
	RequestID string
	// Cause is the underlying transport or decoding error, if any.
	Cause error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Cause }

// Is lets errors.Is match the sentinel of the error's kind. A timeout is
// also a network error.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork || e.Kind == KindTimeout
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrCanceled:
		return e.Kind == KindCanceled
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrServer:
		return e.Kind == KindServer
	case ErrParse:
		return e.Kind == KindParse
	}
	return false
}

// KindOf returns the kind of an *APIError in err's chain, or 0.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// kindForStatus maps a non-2xx status to a Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == 401:
		return KindAuth
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// pickMessage returns the first non-empty candidate, or DefaultErrorMessage.
func pickMessage(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return DefaultErrorMessage
}
