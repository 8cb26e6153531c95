package session

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSignUp                ActivityEventType = "session.signup"
	ActivityEventSignInSuccess         ActivityEventType = "session.signin.success"
	ActivityEventSignInFailure         ActivityEventType = "session.signin.failure"
	ActivityEventSocialSignIn          ActivityEventType = "session.signin.social"
	ActivityEventSignOut               ActivityEventType = "session.signout"
	ActivityEventSessionRestored       ActivityEventType = "session.restored"
	ActivityEventVerificationSent      ActivityEventType = "session.verification.sent"
	ActivityEventVerificationConfirmed ActivityEventType = "session.verification.confirmed"
	ActivityEventPasswordResetRequest  ActivityEventType = "session.password.reset.requested"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UID        string
	Provider   ProviderKind
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort: failures are logged and never block a flow.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
