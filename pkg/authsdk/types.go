package authsdk

import "github.com/aussiebroadwan/bioauth/pkg/jwtx"

// ============================================================================
// Requests
// ============================================================================

// RegisterRequest enrols a new identity. The biometric template is either
// given directly as Template text or derived from the two images by the
// feature extractor. Omitting both registers a password-only identity.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password"`

	Template         string `json:"template,omitempty"`
	FaceImage        string `json:"face_image,omitempty"`        // base64, data URL prefix allowed
	FingerprintImage string `json:"fingerprint_image,omitempty"` // base64, data URL prefix allowed
}

// PasswordLoginRequest authenticates by username and password.
type PasswordLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProbeRequest carries a biometric probe for 1:N login or 1:1 verification.
// Exactly one of Template or the image pair must be set.
type ProbeRequest struct {
	Template         string `json:"template,omitempty"`
	FaceImage        string `json:"face_image,omitempty"`
	FingerprintImage string `json:"fingerprint_image,omitempty"`

	// Threshold overrides the server's default maximum distance.
	Threshold *int `json:"threshold,omitempty"`
}

// ============================================================================
// Responses
// ============================================================================

// IdentityInfo is the public view of an identity.
type IdentityInfo struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Enrolled   bool    `json:"enrolled"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"created_at"`             // RFC3339
	LastAuthAt *string `json:"last_auth_at,omitempty"` // RFC3339
}

// SessionToken is a bearer token issued after an accepted authentication.
type SessionToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// RegisterResponse is returned by POST /v1/identities.
type RegisterResponse struct {
	Identity IdentityInfo `json:"identity"`
	SessionToken
}

// DecisionResponse is the outcome of an authentication call. Identity is set
// only when accepted; Reason only when rejected. Distance is set whenever a
// biometric comparison took place.
type DecisionResponse struct {
	Accepted  bool          `json:"accepted"`
	Method    string        `json:"method"`
	Identity  *IdentityInfo `json:"identity,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Distance  *int          `json:"distance,omitempty"`
	Threshold *int          `json:"threshold,omitempty"`

	// Token is issued for accepted password and 1:N biometric logins.
	Token *SessionToken `json:"token,omitempty"`
}

// AttemptInfo is one entry of the audit trail.
type AttemptInfo struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"` // RFC3339
	Success   bool   `json:"success"`
	Distance  *int   `json:"distance,omitempty"`
	Method    string `json:"method"`
}

// ProfileResponse is returned by GET /v1/profile.
type ProfileResponse struct {
	Identity       IdentityInfo  `json:"identity"`
	RecentAttempts []AttemptInfo `json:"recent_attempts"`
}

// StatsResponse summarises the caller's authentication attempts.
type StatsResponse struct {
	TotalAttempts      int     `json:"total_attempts"`
	SuccessfulAttempts int     `json:"successful_attempts"`
	SuccessRate        float64 `json:"success_rate"`
	AverageDistance    float64 `json:"average_distance"`
	BestDistance       *int    `json:"best_distance,omitempty"`
	WorstDistance      *int    `json:"worst_distance,omitempty"`
}

// HealthResponse is returned by /livez and /readyz. Checks is only set on
// /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the public key set used to verify session tokens.
type JWKSResponse jwtx.JWKS
