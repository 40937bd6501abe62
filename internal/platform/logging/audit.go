package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuditEvent records a state change on a resource. Reason is an error
// category and never raw error text.
type AuditEvent struct {
	Action     string
	Resource   string
	ResourceID string
	Backend    string
	Outcome    string
	Reason     string
}

func (e AuditEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("action", e.Action)
	enc.AddString("resource_type", e.Resource)
	enc.AddString("resource_id", e.ResourceID)
	enc.AddString("result", e.Outcome)
	if e.Backend != "" {
		enc.AddString("backend", e.Backend)
	}
	if e.Reason != "" {
		enc.AddString("reason", e.Reason)
	}
	return nil
}

// Audit logs ev under the "audit" key with the request-scoped logger, so the
// request ID and trace fields come along.
func Audit(ctx context.Context, ev AuditEvent) {
	LoggerFromContext(ctx).Info("audit event", zap.Object("audit", ev))
}
