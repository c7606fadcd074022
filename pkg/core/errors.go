package core

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// Sentinel errors for common failure conditions.
var (
	// ErrNoCredentials is returned when a signed request is built without credentials.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrResponseConsumed is returned when a response handle is read more than once.
	ErrResponseConsumed = errors.New("response already consumed")
	// ErrStreamClosed is returned when writing to a stream that has terminated.
	ErrStreamClosed = errors.New("stream is closed")
)

// ConfigError reports invalid client-side configuration: empty credentials,
// a malformed base URL, or an out-of-range recv window. It is always raised
// locally, before anything reaches the wire.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// NewConfigError creates a ConfigError with a formatted reason.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// TransportError reports a network-level failure: dial, TLS, timeout, or the
// websocket handshake. The request never produced a server response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError reports a non-success status from the server. Body holds the
// response payload verbatim so callers can inspect exchange error codes.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Status, e.Body)
}

// APIError is the structured error payload the exchange returns alongside a
// failure status, e.g. {"code":-1121,"msg":"Invalid symbol."}.
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// APIError decodes the error body into its structured form. The second
// return is false when the body does not carry an exchange error payload.
func (e *HTTPError) APIError() (*APIError, bool) {
	var apiErr APIError
	if err := sonic.UnmarshalString(e.Body, &apiErr); err != nil || apiErr.Code == 0 {
		return nil, false
	}
	return &apiErr, true
}

// DecodeError reports a payload that did not parse as the requested shape.
// It is distinct from HTTPError so callers can tell "server rejected" apart
// from "server responded in an unexpected format".
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StreamError reports a transport-level failure on an open stream. It is
// terminal for that connection; a graceful peer close is io.EOF, not an
// error.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return "stream: " + e.Err.Error()
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// IsHTTPError returns the HTTPError carried by err, if any.
func IsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// IsDecodeError returns true if err carries a DecodeError.
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

// IsTransportError returns true if err carries a TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
