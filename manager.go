package session

import (
	"context"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Stopper is anything that owns cancellable timers; pollers register with
// the Manager so SignOut can stop them before clearing the session.
type Stopper interface {
	Stop()
}

// Manager is the single source of truth for the current session. It
// drives the sign-up/sign-in/sign-out flows against the Identity Provider,
// reconciles provider identity state with the persisted user record, and
// republishes one consistent State value after every completed operation.
//
// Mutating operations are serialized; the provider enforces one active
// credential flow at a time and the Manager mirrors that with a lock.
type Manager struct {
	provider     IdentityProvider
	directory    Directory
	logger       Logger
	activitySink ActivitySink
	cell         *stateCell
	now          func() time.Time

	opMu sync.Mutex

	stopMu   sync.Mutex
	stoppers []Stopper

	subMu       sync.Mutex
	unsubscribe func()
}

// ManagerOption customizes Manager construction.
type ManagerOption func(*Manager)

// WithLogger overrides the default stdout logger.
func WithLogger(logger Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithActivitySink configures an ActivitySink for emitting session events.
func WithActivitySink(sink ActivitySink) ManagerOption {
	return func(m *Manager) {
		m.activitySink = normalizeActivitySink(sink)
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// NewManager returns a Manager mediating between the given provider and
// directory. The initial state is empty with Loading=true until the first
// provider notification is reconciled (see Start).
func NewManager(provider IdentityProvider, directory Directory, opts ...ManagerOption) *Manager {
	m := &Manager{
		provider:     provider,
		directory:    directory,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		cell:         newStateCell(),
		now:          time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Current returns the latest published session snapshot.
func (m *Manager) Current() State {
	return m.cell.current()
}

// Subscribe registers a callback invoked with the current snapshot and on
// every subsequent publish. The returned function cancels the
// subscription and is safe to call more than once.
func (m *Manager) Subscribe(fn SubscriberFunc) func() {
	return m.cell.subscribe(fn)
}

// RegisterStopper records a timer owner to be stopped on sign-out.
func (m *Manager) RegisterStopper(s Stopper) {
	if s == nil {
		return
	}
	m.stopMu.Lock()
	m.stoppers = append(m.stoppers, s)
	m.stopMu.Unlock()
}

// Start subscribes to the provider's session-change stream and reconciles
// every notification, including the initial load. Restored sessions with
// no directory record are synthesized exactly like a first social login;
// whether restoration alone should ever create a record is pending product
// confirmation, so both paths stay identical for now. Start is idempotent.
func (m *Manager) Start(ctx context.Context) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	if m.unsubscribe != nil {
		return
	}

	m.unsubscribe = m.provider.SubscribeSessionChanges(func(identity *Identity) {
		m.reconcile(ctx, identity)
	})
}

// Stop cancels the provider subscription. Safe to call when never started.
func (m *Manager) Stop() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// SignUp creates a credential account, requests the display-name update
// and the verification email, persists the new default record and
// publishes it as the current session.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) (*UserRecord, error) {
	if err := validateSignUp(email, password, displayName); err != nil {
		return nil, err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	prev := m.cell.current().User
	m.setLoading(prev)

	identity, err := m.provider.CreateAccount(ctx, email, password)
	if err != nil {
		m.clearLoading(prev)
		return nil, Translate(err)
	}

	if err := m.provider.UpdateDisplayName(ctx, identity.ID, displayName); err != nil {
		m.clearLoading(prev)
		return nil, Translate(err)
	}

	if err := m.provider.SendVerificationEmail(ctx, identity.ID); err != nil {
		m.clearLoading(prev)
		return nil, Translate(err)
	}

	record := NewRecordFromIdentity(identity)
	record.DisplayName = displayName
	record.Provider = ProviderEmail
	record.EmailVerified = false

	record, err = m.directory.Put(ctx, record)
	if err != nil {
		m.clearLoading(prev)
		return nil, Translate(err)
	}

	m.cell.publish(State{User: record})
	m.emit(ctx, ActivityEventSignUp, record.UID, ProviderEmail, nil)
	m.emit(ctx, ActivityEventVerificationSent, record.UID, ProviderEmail, nil)

	return record.Clone(), nil
}

// SignIn verifies credentials, refreshes the last-login timestamp and the
// live verification flag, and republishes the stored record. A missing
// directory record is tolerated: the session is simply not republished.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*UserRecord, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	prev := m.cell.current().User
	m.setLoading(prev)

	identity, err := m.provider.VerifyCredentials(ctx, email, password)
	if err != nil {
		m.clearLoading(prev)
		translated := Translate(err)
		m.emit(ctx, ActivityEventSignInFailure, "", ProviderEmail, map[string]any{
			"email": email,
			"code":  translated.TextCode,
		})
		return nil, translated
	}

	record, err := m.adopt(ctx, identity)
	if err != nil {
		// directory enrichment is best effort on sign in
		m.logger.Warn("sign in directory lookup failed", "uid", identity.ID, "error", err)
		m.clearLoading(prev)
		return nil, nil
	}
	if record == nil {
		m.logger.Info("sign in with no directory record", "uid", identity.ID)
		m.clearLoading(prev)
		return nil, nil
	}

	m.cell.publish(State{User: record})
	m.emit(ctx, ActivityEventSignInSuccess, record.UID, ProviderEmail, nil)

	return record.Clone(), nil
}

// SignInWithProvider runs the interactive social flow for google or
// facebook. Unknown identifiers get a default record synthesized; known
// ones are refreshed and republished. A concurrent interactive request
// fails fast with the cancelled-popup code.
func (m *Manager) SignInWithProvider(ctx context.Context, kind ProviderKind) (*UserRecord, error) {
	if kind != ProviderGoogle && kind != ProviderFacebook {
		return nil, ErrUnsupportedProvider.Clone().WithMetadata(map[string]any{
			"provider": kind,
		})
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	prev := m.cell.current().User
	m.setLoading(prev)

	identity, err := m.provider.SocialSignIn(ctx, kind, SocialScopes(kind))
	if err != nil {
		m.clearLoading(prev)
		translated := Translate(err)
		m.emit(ctx, ActivityEventSignInFailure, "", kind, map[string]any{
			"code": translated.TextCode,
		})
		return nil, translated
	}

	record, err := m.adoptOrSynthesize(ctx, identity, kind)
	if err != nil {
		m.clearLoading(prev)
		return nil, Translate(err)
	}

	m.cell.publish(State{User: record})
	m.emit(ctx, ActivityEventSocialSignIn, record.UID, kind, nil)

	return record.Clone(), nil
}

// SignOut stops every registered timer owner, signs out of the provider
// and clears the current session. Local state ends consistent regardless
// of the provider call outcome.
func (m *Manager) SignOut(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.stopMu.Lock()
	stoppers := m.stoppers
	m.stoppers = nil
	m.stopMu.Unlock()

	for _, s := range stoppers {
		s.Stop()
	}

	uid := ""
	if cur := m.cell.current(); cur.User != nil {
		uid = cur.User.UID
	}

	err := m.provider.SignOut(ctx)

	m.cell.publish(State{})
	m.emit(ctx, ActivityEventSignOut, uid, "", nil)

	if err != nil {
		return Translate(err)
	}
	return nil
}

// ResetPassword asks the provider to dispatch a password-reset message.
// It has no session-state effect.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return ErrInvalidEmail.Clone().WithMetadata(map[string]any{"email": email})
	}

	if err := m.provider.SendPasswordReset(ctx, email); err != nil {
		return Translate(err)
	}

	m.emit(ctx, ActivityEventPasswordResetRequest, "", ProviderEmail, map[string]any{
		"email": email,
	})
	return nil
}

// ResendVerificationEmail re-requests the verification message. It is a
// no-op when nobody is signed in or the email is already verified.
func (m *Manager) ResendVerificationEmail(ctx context.Context) error {
	cur := m.cell.current()
	if cur.User == nil || cur.User.EmailVerified {
		return nil
	}

	if err := m.provider.SendVerificationEmail(ctx, cur.User.UID); err != nil {
		return Translate(err)
	}

	m.emit(ctx, ActivityEventVerificationSent, cur.User.UID, cur.User.Provider, nil)
	return nil
}

// CheckEmailVerification forces a fresh provider read to pick up
// out-of-band verification. On the first true result it writes the flag
// through to the directory and updates the published session; repeated
// calls afterwards are safe no-ops that keep returning true. The check
// never touches the Loading flag, it is an advisory background read.
func (m *Manager) CheckEmailVerification(ctx context.Context) (bool, error) {
	cur := m.cell.current()
	if cur.User == nil {
		return false, ErrNoActiveSession
	}

	if cur.User.EmailVerified {
		return true, nil
	}

	identity, err := m.provider.RefreshIdentity(ctx, cur.User.UID)
	if err != nil {
		return false, Translate(err)
	}

	if identity == nil || !identity.EmailVerified {
		return false, nil
	}

	verified := true
	if err := m.directory.Patch(ctx, cur.User.UID, DirectoryPatch{EmailVerified: &verified}); err != nil {
		return false, Translate(err)
	}

	record := cur.User.Clone()
	record.EmailVerified = true
	m.cell.publish(State{User: record})
	m.emit(ctx, ActivityEventVerificationConfirmed, record.UID, record.Provider, nil)

	return true, nil
}

// reconcile handles one provider session-change notification.
func (m *Manager) reconcile(ctx context.Context, identity *Identity) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if identity == nil {
		m.cell.publish(State{})
		return
	}

	record, err := m.adoptOrSynthesize(ctx, identity, identity.ProviderTag())
	if err != nil {
		m.logger.Error("session reconciliation failed", "uid", identity.ID, "error", err)
		m.cell.publish(State{User: m.cell.current().User})
		return
	}

	m.cell.publish(State{User: record})
	m.emit(ctx, ActivityEventSessionRestored, record.UID, record.Provider, nil)
}

// adopt fetches the stored record for the identity and refreshes its
// last-login timestamp and verification flag. Returns nil, nil when the
// directory has no record.
func (m *Manager) adopt(ctx context.Context, identity *Identity) (*UserRecord, error) {
	record, err := m.directory.Get(ctx, identity.ID)
	if err != nil {
		// adapters built straight on the repository layer report misses
		// with its error shape, both count as a miss here
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	now := m.now()
	patch := DirectoryPatch{LastLoginAt: &now}
	if record.EmailVerified != identity.EmailVerified {
		patch.EmailVerified = &identity.EmailVerified
	}

	if err := m.directory.Patch(ctx, record.UID, patch); err != nil {
		// write through is best effort here, the live provider flag wins
		m.logger.Warn("failed to refresh directory record", "uid", record.UID, "error", err)
	}

	record.LastLoginAt = &now
	record.EmailVerified = identity.EmailVerified
	record.EnsureDefaults()

	return record, nil
}

// adoptOrSynthesize adopts an existing record or persists a new default
// one built from whatever identity fields the provider supplies.
func (m *Manager) adoptOrSynthesize(ctx context.Context, identity *Identity, kind ProviderKind) (*UserRecord, error) {
	record, err := m.adopt(ctx, identity)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	record = NewRecordFromIdentity(identity)
	if kind != "" {
		record.Provider = kind
	}

	return m.directory.Put(ctx, record)
}

func (m *Manager) setLoading(prev *UserRecord) {
	m.cell.publish(State{User: prev, Loading: true})
}

func (m *Manager) clearLoading(prev *UserRecord) {
	m.cell.publish(State{User: prev, Loading: false})
}

func (m *Manager) emit(ctx context.Context, eventType ActivityEventType, uid string, provider ProviderKind, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		UID:        uid,
		Provider:   provider,
		Metadata:   metadata,
		OccurredAt: m.now(),
	}

	sink := normalizeActivitySink(m.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink record error", "error", err)
	}
}

func validateSignUp(email, password, displayName string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return ErrInvalidEmail.Clone().WithMetadata(map[string]any{"email": email})
	}
	if err := validation.Validate(password, validation.Required, validation.Length(6, 128)); err != nil {
		return ErrWeakPassword.Clone()
	}
	if err := validation.Validate(displayName, validation.Required, validation.Length(1, 200)); err != nil {
		return goerrors.New("display name is required", goerrors.CategoryValidation).
			WithTextCode("invalid-display-name").
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

func validateCredentials(email, password string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return ErrInvalidEmail.Clone().WithMetadata(map[string]any{"email": email})
	}
	if err := validation.Validate(password, validation.Required); err != nil {
		return ErrWrongPassword.Clone()
	}
	return nil
}
