package http

import (
	"net/http"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/aussiebroadwan/bioauth/pkg/httpx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

type StatsHandler struct {
	StatsService *service.StatsService
}

// ServeHTTP summarizes the caller's authentication attempts.
//
//	@Summary		Get statistics
//	@Description	Success rate and distance figures over every recorded attempt of the caller.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.StatsResponse	"Summary"
//	@Failure		401	{object}	authsdk.APIError		"Invalid or missing session token"
//	@Failure		404	{object}	authsdk.APIError		"Identity not found"
//	@Router			/v1/stats [get].
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject, ok := httpx.SubjectFromContext(ctx)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	sum, err := h.StatsService.Summarize(ctx, subject)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, StatsResponse(sum))
}

// StatsResponse renders a summary on the wire.
func StatsResponse(s service.Summary) authsdk.StatsResponse {
	return authsdk.StatsResponse{
		TotalAttempts:      s.TotalAttempts,
		SuccessfulAttempts: s.SuccessfulAttempts,
		SuccessRate:        s.SuccessRate,
		AverageDistance:    s.AverageDistance,
		BestDistance:       s.BestDistance,
		WorstDistance:      s.WorstDistance,
	}
}
