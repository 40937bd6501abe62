package profile

import (
	"context"
	"errors"

	applog "github.com/janisto/profile-directory/internal/platform/logging"
	"github.com/janisto/profile-directory/internal/platform/metrics"
)

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidUsername):
		return "invalid_username"
	default:
		return "internal_error"
	}
}

// audit records the outcome of a mutating store operation as a metric and an
// audit log entry.
func audit(ctx context.Context, backend, action, key string, err error) {
	ev := applog.AuditEvent{
		Action:     action,
		Resource:   "profile",
		ResourceID: key,
		Backend:    backend,
		Outcome:    applog.OutcomeSuccess,
	}
	if err != nil {
		ev.Outcome = applog.OutcomeFailure
		ev.Reason = categorizeError(err)
	}

	result := ev.Outcome
	if err != nil {
		result = ev.Reason
	}
	metrics.ObserveStoreOperation(backend, action, result)
	applog.Audit(ctx, ev)
}
