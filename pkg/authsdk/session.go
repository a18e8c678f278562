package authsdk

import (
	"context"
	"net/http"
)

// Session calls the endpoints that need a bearer session token.
type Session struct {
	client *Client
	token  string
}

// NewSession wraps an existing access token.
func (c *Client) NewSession(accessToken string) *Session {
	return &Session{client: c, token: accessToken}
}

// AccessToken returns the bearer token.
func (s *Session) AccessToken() string { return s.token }

// Verify runs a 1:1 verification against the session's identity.
func (s *Session) Verify(ctx context.Context, probe ProbeRequest) (*DecisionResponse, error) {
	var out DecisionResponse
	if err := s.client.do(ctx, http.MethodPost, "/v1/verify", s.token, probe, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the identity and its most recent attempts.
func (s *Session) Profile(ctx context.Context) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := s.client.do(ctx, http.MethodGet, "/v1/profile", s.token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the attempt summary for the session's identity.
func (s *Session) Stats(ctx context.Context) (*StatsResponse, error) {
	var out StatsResponse
	if err := s.client.do(ctx, http.MethodGet, "/v1/stats", s.token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deactivate soft-deletes the identity with the given ID. Only the identity
// itself may do this.
func (s *Session) Deactivate(ctx context.Context, identityID string) error {
	return s.client.do(ctx, http.MethodPost, "/v1/identities/"+identityID+"/deactivate", s.token, nil, nil, http.StatusNoContent)
}
