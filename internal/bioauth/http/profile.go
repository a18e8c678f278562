package http

import (
	"net/http"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/aussiebroadwan/bioauth/pkg/httpx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

type ProfileHandler struct {
	IdentityService *service.IdentityService
}

// ServeHTTP returns the caller's identity and recent attempts.
//
//	@Summary		Get profile
//	@Description	Returns the authenticated identity and its most recent authentication attempts, newest first.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse	"Identity and recent attempts"
//	@Failure		401	{object}	authsdk.APIError		"Invalid or missing session token"
//	@Failure		404	{object}	authsdk.APIError		"Identity not found"
//	@Router			/v1/profile [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject, ok := httpx.SubjectFromContext(ctx)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	identity, attempts, err := h.IdentityService.Profile(ctx, subject)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	resp := authsdk.ProfileResponse{
		Identity:       identityInfo(identity),
		RecentAttempts: make([]authsdk.AttemptInfo, 0, len(attempts)),
	}
	for _, a := range attempts {
		resp.RecentAttempts = append(resp.RecentAttempts, attemptInfo(a))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}
