package service

import (
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/pkg/jwtx"
)

// Session is a signed bearer token for one identity.
type Session struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// SessionService signs session tokens after an accepted decision.
type SessionService struct {
	KeyManager *jwtx.KeyManager
	Issuer     string
	Audience   []string
	TTL        time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Issue signs a session for identity. method is the AMR value recorded in
// the token, jwtx.AMRPassword or jwtx.AMRBiometric.
func (s *SessionService) Issue(identity domain.Identity, method string) (Session, error) {
	signer := s.KeyManager.GetSigner()
	if signer == nil {
		return Session{}, ErrSignerUnavailable
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	claims := jwtx.NewSessionClaims(identity.ID, identity.Username, []string{method}, ttl, s.Issuer, s.Audience, now)
	token, err := signer.Sign(claims)
	if err != nil {
		return Session{}, err
	}

	return Session{AccessToken: token, ExpiresIn: ttl}, nil
}

// MethodAMR maps an authentication method to its AMR claim value.
func MethodAMR(m domain.AuthMethod) string {
	if m == domain.MethodPassword {
		return jwtx.AMRPassword
	}
	return jwtx.AMRBiometric
}
