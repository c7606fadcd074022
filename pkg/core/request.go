package core

import (
	"context"
	"net/http"
	"time"
)

// Recv window bounds in milliseconds. The server default applies when no
// recvWindow parameter is sent; values above the maximum are rejected
// client-side at build time and never reach the wire.
const (
	DefaultRecvWindow int64 = 5000
	MaxRecvWindow     int64 = 60000
)

// APIKeyHeader is the header carrying the public API key on authenticated
// requests.
const APIKeyHeader = "X-MBX-APIKEY"

// Security classifies how a request is authenticated.
type Security int

const (
	// SecurityNone marks a public endpoint: no key, no signature.
	SecurityNone Security = iota
	// SecurityAPIKey marks an endpoint requiring the API key header only.
	SecurityAPIKey
	// SecuritySigned marks a private endpoint: API key header plus a
	// timestamped HMAC signature over the canonical parameter string.
	SecuritySigned
)

// Credentials holds the API key pair for authenticated requests. It is
// immutable once a client is constructed and must never appear in logs or
// error messages.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Request is an immutable, dispatch-ready descriptor. Exactly one of Query
// and Body is populated: POST and PUT requests carry the rendered parameter
// string as a form-encoded body, every other method as the query string.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   string
	Body    string
}

// Doer dispatches a built request. The returned handle is never nil; a
// failed call is reported through the handle itself.
type Doer interface {
	Do(ctx context.Context, req *Request) *Response
}

// Builder accumulates parameters for one logical call and produces a single
// immutable Request. It is not safe for concurrent use and is meant to be
// discarded after Build or Do.
type Builder struct {
	method     string
	path       string
	security   Security
	creds      Credentials
	params     Params
	recvWindow int64
	doer       Doer
	now        func() time.Time
}

// NewBuilder starts a request against method and path with the given
// security level. creds may be zero for public endpoints.
func NewBuilder(doer Doer, method, path string, security Security, creds Credentials) *Builder {
	return &Builder{
		method:   method,
		path:     path,
		security: security,
		creds:    creds,
		doer:     doer,
		now:      time.Now,
	}
}

// Param inserts or overwrites a parameter and returns the builder for
// chaining. Re-setting a key replaces its value without changing its
// position in the canonical string.
func (b *Builder) Param(key string, value any) *Builder {
	b.params.Set(key, value)
	return b
}

// RecvWindow sets the recvWindow parameter in milliseconds. The bound check
// is deferred to Build so configuration calls compose freely before
// validation.
func (b *Builder) RecvWindow(ms int64) *Builder {
	b.recvWindow = ms
	return b
}

// Build validates the accumulated configuration and renders the immutable
// request descriptor. For signed requests it appends recvWindow (when set)
// and timestamp, signs the canonical string, and appends the signature as
// the final parameter.
func (b *Builder) Build() (*Request, error) {
	if b.recvWindow < 0 || b.recvWindow > MaxRecvWindow {
		return nil, NewConfigError("recvWindow %d out of range (0, %d]", b.recvWindow, MaxRecvWindow)
	}

	headers := make(map[string]string)
	params := b.params.Clone()

	switch b.security {
	case SecuritySigned:
		if b.creds.APIKey == "" || b.creds.SecretKey == "" {
			return nil, &ConfigError{Reason: ErrNoCredentials.Error()}
		}
		if b.recvWindow > 0 {
			params.Set("recvWindow", b.recvWindow)
		}
		params.Set("timestamp", b.now().UnixMilli())
		params.Set("signature", Sign(b.creds.SecretKey, params.Encode()))
		headers[APIKeyHeader] = b.creds.APIKey
	case SecurityAPIKey:
		if b.creds.APIKey == "" {
			return nil, &ConfigError{Reason: ErrNoCredentials.Error()}
		}
		headers[APIKeyHeader] = b.creds.APIKey
	}

	req := &Request{
		Method:  b.method,
		Path:    b.path,
		Headers: headers,
	}

	encoded := params.Encode()
	if b.method == http.MethodPost || b.method == http.MethodPut {
		req.Body = encoded
	} else {
		req.Query = encoded
	}

	return req, nil
}

// Do builds and dispatches the request, returning a single-use response
// handle. Build failures surface through the handle as well, so callers can
// treat Do as infallible and inspect errors at decode time.
func (b *Builder) Do(ctx context.Context) *Response {
	req, err := b.Build()
	if err != nil {
		return failedResponse(err)
	}
	return b.doer.Do(ctx, req)
}

// Text dispatches the request and returns the raw response body.
func (b *Builder) Text(ctx context.Context) (string, error) {
	return b.Do(ctx).Text()
}

// JSON dispatches the request and decodes the response body into v.
func (b *Builder) JSON(ctx context.Context, v any) error {
	return b.Do(ctx).JSON(v)
}
