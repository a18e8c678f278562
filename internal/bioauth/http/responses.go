package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/aussiebroadwan/bioauth/pkg/extractor"
)

// writeServiceError maps a service error onto its API error.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidThreshold),
		errors.Is(err, service.ErrInvalidRegistration):
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrMalformedTemplate),
		errors.Is(err, service.ErrInvalidProbeInput):
		authsdk.ErrInvalidProbe.WithDescription(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrNoEnrolledTemplate):
		authsdk.ErrNoEnrolledTemplate.WriteError(w)
	case errors.Is(err, service.ErrDuplicateIdentity):
		authsdk.ErrDuplicateIdentity.WriteError(w)
	case errors.Is(err, service.ErrIdentityNotFound):
		authsdk.ErrIdentityNotFound.WriteError(w)
	case errors.Is(err, service.ErrPersistenceUnavailable):
		log.Error("store unavailable", "err", err)
		authsdk.ErrUnavailable.WriteError(w)
	default:
		log.Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// probeInput decodes the wire probe. Images are base64 with an optional
// data URL prefix.
func probeInput(template, face, fingerprint string) (service.ProbeInput, error) {
	in := service.ProbeInput{Template: template}
	if template != "" {
		return in, nil
	}

	var err error
	if face != "" {
		if in.Face, err = extractor.DecodeImage(face); err != nil {
			return service.ProbeInput{}, err
		}
	}
	if fingerprint != "" {
		if in.Fingerprint, err = extractor.DecodeImage(fingerprint); err != nil {
			return service.ProbeInput{}, err
		}
	}
	return in, nil
}

func identityInfo(i domain.Identity) authsdk.IdentityInfo {
	info := authsdk.IdentityInfo{
		ID:        i.ID,
		Username:  i.Username,
		Email:     i.Email,
		Enrolled:  i.Enrolled(),
		Active:    i.Active,
		CreatedAt: i.CreatedAt.UTC().Format(time.RFC3339),
	}
	if i.LastAuthAt != nil {
		last := i.LastAuthAt.UTC().Format(time.RFC3339)
		info.LastAuthAt = &last
	}
	return info
}

func attemptInfo(a domain.AuthAttempt) authsdk.AttemptInfo {
	return authsdk.AttemptInfo{
		ID:        a.ID,
		Timestamp: a.Timestamp.UTC().Format(time.RFC3339),
		Success:   a.Success,
		Distance:  a.Distance,
		Method:    a.Method.String(),
	}
}

func sessionToken(s service.Session) *authsdk.SessionToken {
	return &authsdk.SessionToken{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ExpiresIn.Seconds()),
	}
}

// decisionResponse renders a decision. Password decisions carry no
// threshold.
func decisionResponse(d service.Decision) authsdk.DecisionResponse {
	resp := authsdk.DecisionResponse{
		Accepted: d.Accepted,
		Method:   d.Method.String(),
		Reason:   string(d.Reason),
		Distance: d.Distance,
	}
	if d.Method != domain.MethodPassword {
		threshold := d.Threshold
		resp.Threshold = &threshold
	}
	if d.Accepted && d.Identity != nil {
		info := identityInfo(*d.Identity)
		resp.Identity = &info
	}
	return resp
}
