package domain

import "time"

// AuthMethod tags how an authentication attempt was made.
type AuthMethod string

const (
	MethodPassword        AuthMethod = "password"
	MethodBiometricLogin  AuthMethod = "biometric-login"
	MethodBiometricVerify AuthMethod = "biometric-verify"
)

// Valid reports whether m is one of the known methods.
func (m AuthMethod) Valid() bool {
	switch m {
	case MethodPassword, MethodBiometricLogin, MethodBiometricVerify:
		return true
	}
	return false
}

func (m AuthMethod) String() string { return string(m) }

// AuthAttempt is an append-only audit record. IdentityID is nil when a 1:N
// identification found no candidate at all; Distance is nil for password
// attempts.
type AuthAttempt struct {
	ID         string
	IdentityID *string
	Timestamp  time.Time
	Success    bool
	Distance   *int
	Method     AuthMethod
}
