package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the unauthenticated bioauth endpoints.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client with a 10 second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Register creates an identity and returns a session for it.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, *RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/v1/identities", "", req, &out, http.StatusCreated); err != nil {
		return nil, nil, err
	}
	return c.NewSession(out.AccessToken), &out, nil
}

// LoginPassword authenticates with a password. The session is nil unless the
// decision was accepted.
func (c *Client) LoginPassword(ctx context.Context, username, password string) (*Session, *DecisionResponse, error) {
	return c.login(ctx, "/v1/login/password", PasswordLoginRequest{Username: username, Password: password})
}

// LoginBiometric runs a 1:N identification. The session is nil unless the
// decision was accepted.
func (c *Client) LoginBiometric(ctx context.Context, probe ProbeRequest) (*Session, *DecisionResponse, error) {
	return c.login(ctx, "/v1/login/biometric", probe)
}

func (c *Client) login(ctx context.Context, path string, body any) (*Session, *DecisionResponse, error) {
	var out DecisionResponse
	if err := c.do(ctx, http.MethodPost, path, "", body, &out, http.StatusOK); err != nil {
		return nil, nil, err
	}
	if !out.Accepted || out.Token == nil {
		return nil, &out, nil
	}
	return c.NewSession(out.Token.AccessToken), &out, nil
}

// GetLiveness calls /livez.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness calls /readyz.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJWKS fetches the public keys used to sign session tokens.
func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	var out JWKSResponse
	if err := c.do(ctx, http.MethodGet, "/.well-known/jwks.json", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends body as JSON (when non-nil) and decodes the response into out
// (when non-nil). Any status other than want becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any, want int) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return parseErrorResponse(resp, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
