package modeladapter

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"time"
)

// GenericAPIErrorMessage is used when the API reports an error without a message.
const GenericAPIErrorMessage = "Error from API"

// NetworkError is a connection-level failure: DNS, refused, reset.
type NetworkError struct {
	Op   string // Operation that failed, e.g. "Post".
	Code string // Errno-style classification, e.g. "ECONNREFUSED".
	Err  error
}

func (e *NetworkError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("network error (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("network error (%s) during %s: %v", e.Code, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError is returned when no response completed within the deadline.
type TimeoutError struct {
	Limit   time.Duration // Configured deadline.
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %dms", e.Limit.Milliseconds())
}

// Timeout reports true so callers using the net.Error convention see a timeout.
func (e *TimeoutError) Timeout() bool { return true }

// CancelledError is returned when the caller's context ends before the exchange.
type CancelledError struct {
	Elapsed time.Duration
	Err     error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("request cancelled after %s: %v", e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when the response body is not JSON.
// Raw holds the full body as received.
type MalformedResponseError struct {
	Raw        []byte
	StatusCode int
	Err        error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (status %d): %v", e.StatusCode, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// APIError is an error the remote service reported in an "error" object.
type APIError struct {
	Message    string
	Type       string
	Code       string
	StatusCode int
	RetryAfter time.Duration // Set for HTTP 429 when the Retry-After header is present.
}

func (e *APIError) Error() string { return e.Message }

// UnexpectedFormatError is returned for valid JSON of an unrecognized shape.
// Value holds the decoded document.
type UnexpectedFormatError struct {
	Value      any
	StatusCode int
}

func (e *UnexpectedFormatError) Error() string {
	return "unexpected response format from API"
}

func newNetworkError(err error) *NetworkError {
	ne := &NetworkError{Err: err, Code: errorCode(err)}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		ne.Op = urlErr.Op
		ne.Err = urlErr.Err
	}

	return ne
}

// errorCode classifies err the way socket libraries report it.
func errorCode(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return "ENOTFOUND"
		case dnsErr.IsTimeout, dnsErr.IsTemporary:
			return "EAI_AGAIN"
		default:
			return "EDNS"
		}
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "ECONNREFUSED"
	case errors.Is(err, syscall.ECONNRESET):
		return "ECONNRESET"
	case errors.Is(err, syscall.EPIPE):
		return "EPIPE"
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return "EUNREACHABLE"
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return "ECONNRESET"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Timeout() {
		return "ETIMEDOUT"
	}

	return "EUNKNOWN"
}
