package mpx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of these with errors.Is.
var (
	ErrTransport         = errors.New("transport error")
	ErrHTTPStatus        = errors.New("unexpected HTTP status")
	ErrMalformedResponse = errors.New("malformed response")
	ErrMissingField      = errors.New("missing field in response")
	ErrValidation        = errors.New("validation failed")
	ErrRemoteException   = errors.New("remote exception")
)

// Static errors for err113 compliance.
var (
	ErrAccountRequired = errors.New("account is required")
	ErrTokenRequired   = errors.New("token is required")
	ErrFeedRequired    = errors.New("feed PID is required")
	ErrEmptyMediaURI   = errors.New("media URI has no identifier segment")
	ErrInvalidMediaID  = errors.New("media identifier is not a positive integer")
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrNotJSONObject   = errors.New("response body is not a JSON object")
	ErrEntryNotObject  = errors.New("entry is not a JSON object")
)

// TransportError wraps a network level failure of the underlying HTTP call.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, RedactURL(e.URL), e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// HTTPStatusError is returned by clients running with StrictHTTPStatus when
// the response status is anything other than 200. Exception is set when the
// body was an isException envelope.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       []byte
	Exception  *RemoteError
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP status %d from %s", e.StatusCode, RedactURL(e.URL))
	if e.Exception != nil {
		msg += ": " + e.Exception.Error()
	}

	return msg
}

func (e *HTTPStatusError) Unwrap() error {
	if e.Exception == nil {
		return nil
	}

	return e.Exception
}

func (e *HTTPStatusError) Is(target error) bool { return target == ErrHTTPStatus }

// MalformedResponseError means the response body could not be decoded as a
// JSON object.
type MalformedResponseError struct {
	URL  string
	Body []byte
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", RedactURL(e.URL), e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// MissingFieldError reports a well-formed envelope lacking a required key.
// Context carries the URL, payload and call parameters for diagnosis.
type MissingFieldError struct {
	Field   string
	Context map[string]interface{}
}

func (e *MissingFieldError) Error() string {
	ctx, err := json.Marshal(e.Context)
	if err != nil {
		ctx = []byte(fmt.Sprintf("%v", e.Context))
	}

	return fmt.Sprintf("missing %s key in remote service return payload. Context = %s", e.Field, ctx)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// ValidationError reports caller supplied arguments that fail a precondition.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %v", e.Err)
	}

	return fmt.Sprintf("validation failed for %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RemoteError is an exception the server reported explicitly through the
// isException marker of the envelope.
type RemoteError struct {
	Title         string
	Description   string
	CorrelationID string
	ResponseCode  int
}

func (e *RemoteError) Error() string {
	msg := e.Description
	if msg == "" {
		msg = "unknown remote exception"
	}

	if e.CorrelationID != "" {
		return fmt.Sprintf("%s (correlation: %s)", msg, e.CorrelationID)
	}

	return msg
}

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteException }

// IsMissingField checks if the error is a missing field error.
func IsMissingField(err error) bool {
	return errors.Is(err, ErrMissingField)
}

// IsRemoteException checks if the error came from an isException envelope.
func IsRemoteException(err error) bool {
	return errors.Is(err, ErrRemoteException)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsTransport checks if the error is a network level failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsHTTPStatus checks if the error is an unexpected status error.
func IsHTTPStatus(err error) bool {
	return errors.Is(err, ErrHTTPStatus)
}
