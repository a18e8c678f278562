package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/aussiebroadwan/bioauth/pkg/httpx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

type PasswordLoginHandler struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
}

// ServeHTTP authenticates by username and password.
//
//	@Summary		Password login
//	@Description	Returns accepted=true and a session token, or accepted=false with a reason.
//	@Description	Unknown usernames and wrong passwords both report invalid_credentials.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordLoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.DecisionResponse		"Decision"
//	@Failure		400		{object}	authsdk.APIError				"Malformed request"
//	@Failure		503		{object}	authsdk.APIError				"Store unavailable"
//	@Router			/v1/login/password [post].
func (h *PasswordLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.PasswordLoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WithDescription("username and password are required").WriteError(w)
		return
	}

	decision, err := h.AuthService.AuthenticatePassword(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	writeDecision(w, log, h.SessionService, decision)
}

type BiometricLoginHandler struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
}

// ServeHTTP runs a 1:N biometric identification.
//
//	@Summary		Biometric login
//	@Description	Matches the probe against every active enrolled identity. The closest one is accepted
//	@Description	when its Hamming distance is at or below the threshold; ties go to the earliest enrolled.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ProbeRequest		true	"Probe"
//	@Success		200		{object}	authsdk.DecisionResponse	"Decision"
//	@Failure		400		{object}	authsdk.APIError			"Malformed request or negative threshold"
//	@Failure		422		{object}	authsdk.APIError			"Probe could not be decoded"
//	@Failure		503		{object}	authsdk.APIError			"Store unavailable"
//	@Router			/v1/login/biometric [post].
func (h *BiometricLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ProbeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	in, err := probeInput(req.Template, req.FaceImage, req.FingerprintImage)
	if err != nil {
		authsdk.ErrInvalidProbe.WithDescription(err.Error()).WriteError(w)
		return
	}
	probe, err := h.AuthService.ResolveProbe(ctx, in)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	decision, err := h.AuthService.Identify(ctx, probe, req.Threshold)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	writeDecision(w, log, h.SessionService, decision)
}

// writeDecision renders a login decision, attaching a session token when
// accepted.
func writeDecision(w http.ResponseWriter, log *slog.Logger, sessions *service.SessionService, decision service.Decision) {
	resp := decisionResponse(decision)

	if decision.Accepted {
		session, err := sessions.Issue(*decision.Identity, service.MethodAMR(decision.Method))
		if err != nil {
			log.Error("failed to issue session", "identity_id", decision.Identity.ID, "err", err)
			authsdk.ErrServerError.WriteError(w)
			return
		}
		resp.Token = sessionToken(session)
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}
