package http

import (
	"net/http"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/aussiebroadwan/bioauth/pkg/httpx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

type VerifyHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP runs a 1:1 verification against the session's identity.
//
//	@Summary		Biometric verification
//	@Description	Compares the probe with the caller's enrolled template. No new session is issued.
//	@Tags			Session
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ProbeRequest		true	"Probe"
//	@Success		200		{object}	authsdk.DecisionResponse	"Decision"
//	@Failure		400		{object}	authsdk.APIError			"Malformed request or negative threshold"
//	@Failure		401		{object}	authsdk.APIError			"Invalid or missing session token"
//	@Failure		404		{object}	authsdk.APIError			"Identity not found"
//	@Failure		409		{object}	authsdk.APIError			"No enrolled template"
//	@Failure		422		{object}	authsdk.APIError			"Probe could not be decoded"
//	@Router			/v1/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject, ok := httpx.SubjectFromContext(ctx)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

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

	decision, err := h.AuthService.Verify(ctx, subject, probe, req.Threshold)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, decisionResponse(decision))
}
