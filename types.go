package session

import (
	"context"
	"fmt"
	"time"
)

// Logger is the minimal logging surface this package needs. Hosts plug in
// their own implementation through the WithLogger options.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity is the provider-side view of an account, as returned by the
// Identity Provider on every credential or social operation. It is a
// point-in-time snapshot; RefreshIdentity returns a newer one.
type Identity struct {
	ID            string
	Email         string
	DisplayName   string
	EmailVerified bool
	PhotoURL      string
	// Providers lists the linked sign-in methods; the first one wins as
	// the record's provider tag.
	Providers []ProviderKind
}

// ProviderTag returns the provider tag for a record synthesized from this
// identity, defaulting to email when the provider reports none.
func (i Identity) ProviderTag() ProviderKind {
	if len(i.Providers) > 0 && i.Providers[0] != "" {
		return i.Providers[0]
	}
	return ProviderEmail
}

// IdentityProvider is the hosted identity service this core orchestrates.
// Implementations normalize transport failures into *ProviderError values
// so Translate can surface them as user-facing errors.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (*Identity, error)
	VerifyCredentials(ctx context.Context, email, password string) (*Identity, error)

	// SocialSignIn runs the provider's interactive flow. A second call
	// while one is in flight must fail with CodeConcurrentPopup rather
	// than queue.
	SocialSignIn(ctx context.Context, kind ProviderKind, scopes []string) (*Identity, error)

	UpdateDisplayName(ctx context.Context, id, name string) error
	SendVerificationEmail(ctx context.Context, id string) error
	SendPasswordReset(ctx context.Context, email string) error

	// RefreshIdentity re-reads the live identity, picking up out-of-band
	// changes such as the user clicking a verification link.
	RefreshIdentity(ctx context.Context, id string) (*Identity, error)

	SignOut(ctx context.Context) error

	// SubscribeSessionChanges delivers the identity (or nil on sign-out)
	// for every provider-level session change, including the initial
	// load. The returned function cancels the subscription.
	SubscribeSessionChanges(fn func(*Identity)) (unsubscribe func())
}

// Directory is the user-record document store. Reads and writes are
// write-through; this core keeps no cache in front of it. Get returns a
// go-errors NotFound error when no record exists.
type Directory interface {
	Get(ctx context.Context, uid string) (*UserRecord, error)
	Put(ctx context.Context, record *UserRecord) (*UserRecord, error)
	Patch(ctx context.Context, uid string, patch DirectoryPatch) error
}

// DirectoryPatch is a partial record update; nil fields are left untouched.
type DirectoryPatch struct {
	EmailVerified *bool
	LastLoginAt   *time.Time
	DisplayName   *string
	PhotoURL      *string
}

// IsZero reports whether the patch would change nothing.
func (p DirectoryPatch) IsZero() bool {
	return p.EmailVerified == nil && p.LastLoginAt == nil &&
		p.DisplayName == nil && p.PhotoURL == nil
}

// Navigator is the navigation sink consumed by guards and the poller. It
// is owned by the host application, typically a router adapter.
type Navigator interface {
	NavigateTo(path string, params map[string]string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string, params map[string]string)

func (f NavigatorFunc) NavigateTo(path string, params map[string]string) {
	if f != nil {
		f(path, params)
	}
}

// Config holds session options
type Config interface {
	GetLoginRoute() string
	GetVerifyEmailRoute() string
	GetLandingRoute() string
	GetRejectedRouteKey() string
	GetRedirectParam() string
	GetVerificationPollInterval() time.Duration
	GetResendCooldown() time.Duration
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
