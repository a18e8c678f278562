package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/pkg/idx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

// AuditRecorder appends authentication attempts to the store. Recording is
// best effort: a failed write is logged and counted, never returned.
type AuditRecorder struct {
	Store   store.Store
	Timeout time.Duration

	// OnFailure, when set, is called with every write error.
	OnFailure func(error)

	// Now defaults to time.Now.
	Now func() time.Time

	failures atomic.Int64
}

// Record appends one attempt. The write is detached from ctx cancellation
// so an attempt made by a client that hung up is still kept.
func (a *AuditRecorder) Record(
	ctx context.Context,
	identityID *string,
	method domain.AuthMethod,
	success bool,
	distance *int,
) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	ts := now()

	attempt := domain.AuthAttempt{
		ID:         idx.NewAt(ts).String(),
		IdentityID: identityID,
		Timestamp:  ts,
		Success:    success,
		Distance:   distance,
		Method:     method,
	}

	wctx := context.WithoutCancel(ctx)
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(wctx, a.Timeout)
		defer cancel()
	}

	if err := a.Store.Attempts().CreateAttempt(wctx, attempt); err != nil {
		a.failures.Add(1)

		attrs := []any{
			slog.String("method", method.String()),
			slog.Bool("success", success),
			slog.Any("error", err),
		}
		if identityID != nil {
			attrs = append(attrs, slog.String("identity_id", *identityID))
		}
		slogx.FromContext(ctx).Error("audit_write_failed", attrs...)

		if a.OnFailure != nil {
			a.OnFailure(err)
		}
	}
}

// Failures returns how many attempts could not be written.
func (a *AuditRecorder) Failures() int64 {
	return a.failures.Load()
}
