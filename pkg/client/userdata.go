package client

import (
	"net/http"

	"nakula/pkg/core"
)

const userDataStreamPath = "/api/v3/userDataStream"

// UserDataClient manages user-data stream sessions. Starting a session
// returns a listen key; the caller owns it from then on, including the
// periodic keep-alive the server requires (every thirty minutes or the
// session lapses and the server closes the stream).
type UserDataClient struct {
	*baseClient
}

// NewUserDataClient creates a user-data session client. Only the API key is
// needed; these endpoints are keyed but not signed.
func NewUserDataClient(apiKey, baseURL string, opts ...Option) (*UserDataClient, error) {
	if apiKey == "" {
		return nil, &core.ConfigError{Reason: core.ErrNoCredentials.Error()}
	}
	base, err := newBaseClient(core.Credentials{APIKey: apiKey}, baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &UserDataClient{baseClient: base}, nil
}

// StartStream opens a new user-data session and returns its listen key.
func (c *UserDataClient) StartStream() *core.Builder {
	return c.request(http.MethodPost, userDataStreamPath, core.SecurityAPIKey)
}

// KeepAlive extends the session identified by listenKey.
func (c *UserDataClient) KeepAlive(listenKey string) *core.Builder {
	return c.request(http.MethodPut, userDataStreamPath, core.SecurityAPIKey).
		Param("listenKey", listenKey)
}

// CloseStream ends the session identified by listenKey.
func (c *UserDataClient) CloseStream(listenKey string) *core.Builder {
	return c.request(http.MethodDelete, userDataStreamPath, core.SecurityAPIKey).
		Param("listenKey", listenKey)
}
