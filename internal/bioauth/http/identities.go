package http

import (
	"net/http"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/aussiebroadwan/bioauth/pkg/httpx"
	"github.com/aussiebroadwan/bioauth/pkg/jwtx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

type RegisterHandler struct {
	IdentityService *service.IdentityService
	SessionService  *service.SessionService
}

// ServeHTTP registers a new identity.
//
//	@Summary		Register an identity
//	@Description	Creates an identity with a password and, optionally, an enrolled biometric template.
//	@Description	The template is given as comma separated bits or derived from a face and fingerprint image pair.
//	@Tags			Identities
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"New identity"
//	@Success		201		{object}	authsdk.RegisterResponse	"Identity and session token"
//	@Failure		400		{object}	authsdk.APIError			"Missing or invalid fields"
//	@Failure		409		{object}	authsdk.APIError			"Username or email already registered"
//	@Failure		422		{object}	authsdk.APIError			"Template or images could not be decoded"
//	@Failure		503		{object}	authsdk.APIError			"Store unavailable"
//	@Router			/v1/identities [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	probe, err := probeInput(req.Template, req.FaceImage, req.FingerprintImage)
	if err != nil {
		authsdk.ErrInvalidProbe.WithDescription(err.Error()).WriteError(w)
		return
	}

	identity, err := h.IdentityService.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Probe:    probe,
	})
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	session, err := h.SessionService.Issue(identity, jwtx.AMRPassword)
	if err != nil {
		log.Error("failed to issue session", "identity_id", identity.ID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Identity:     identityInfo(identity),
		SessionToken: *sessionToken(session),
	})
}

type DeactivateHandler struct {
	IdentityService *service.IdentityService
}

// ServeHTTP soft-deletes the caller's own identity.
//
//	@Summary		Deactivate an identity
//	@Description	Marks the identity inactive. It is never matched or allowed to log in again. Requires a password session.
//	@Tags			Identities
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Identity ID"
//	@Success		204
//	@Failure		401	{object}	authsdk.APIError	"Invalid or missing session token"
//	@Failure		403	{object}	authsdk.APIError	"Not the caller's identity, or not a password session"
//	@Failure		404	{object}	authsdk.APIError	"Identity not found"
//	@Router			/v1/identities/{id}/deactivate [post].
func (h *DeactivateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject, ok := httpx.SubjectFromContext(ctx)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	id := r.PathValue("id")
	if id != subject {
		log.Warn("deactivate of another identity refused", "subject", subject, "identity_id", id)
		authsdk.ErrForbidden.WriteError(w)
		return
	}

	if err := h.IdentityService.Deactivate(ctx, id); err != nil {
		writeServiceError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
