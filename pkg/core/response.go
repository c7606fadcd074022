package core

import (
	"github.com/bytedance/sonic"
)

// Response wraps the outcome of one dispatched request. It decouples sending
// from interpreting: the caller decides later whether to read the body as
// raw text or decode it into a typed value.
//
// A handle is single-use: the first Text or JSON call consumes it, and any
// further call returns ErrResponseConsumed.
type Response struct {
	status   int
	body     []byte
	err      error
	consumed bool
}

// NewResponse wraps a completed HTTP exchange.
func NewResponse(status int, body []byte) *Response {
	return &Response{status: status, body: body}
}

func failedResponse(err error) *Response {
	return &Response{err: err}
}

// FailedResponse wraps a call that never produced a server response, such as
// a dial failure. Reading the handle returns err.
func FailedResponse(err error) *Response {
	return failedResponse(err)
}

// StatusCode returns the HTTP status, or 0 when the call failed before a
// response arrived.
func (r *Response) StatusCode() int {
	return r.status
}

// Text consumes the handle and returns the raw response body. A failed call
// yields the transport error; a non-success status yields an HTTPError
// carrying the body verbatim.
func (r *Response) Text() (string, error) {
	if err := r.consume(); err != nil {
		return "", err
	}
	return string(r.body), nil
}

// JSON consumes the handle and decodes the body into v. The status check
// runs first: error bodies are reported as HTTPError, never as DecodeError.
func (r *Response) JSON(v any) error {
	if err := r.consume(); err != nil {
		return err
	}
	if err := sonic.Unmarshal(r.body, v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

func (r *Response) consume() error {
	if r.consumed {
		return ErrResponseConsumed
	}
	r.consumed = true

	if r.err != nil {
		return r.err
	}
	if r.status < 200 || r.status >= 300 {
		return &HTTPError{Status: r.status, Body: string(r.body)}
	}
	return nil
}
