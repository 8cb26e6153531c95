package session_test

import (
	"context"
	"io"
	"mime/multipart"
	"sync"
	"time"

	session "github.com/fieldops/go-session"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
)

// MockIdentityProvider implements session.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock

	mu          sync.Mutex
	subscribers []func(*session.Identity)
}

func (m *MockIdentityProvider) CreateAccount(ctx context.Context, email, password string) (*session.Identity, error) {
	args := m.Called(ctx, email, password)
	identity, _ := args.Get(0).(*session.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) VerifyCredentials(ctx context.Context, email, password string) (*session.Identity, error) {
	args := m.Called(ctx, email, password)
	identity, _ := args.Get(0).(*session.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) SocialSignIn(ctx context.Context, kind session.ProviderKind, scopes []string) (*session.Identity, error) {
	args := m.Called(ctx, kind, scopes)
	identity, _ := args.Get(0).(*session.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) UpdateDisplayName(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockIdentityProvider) SendVerificationEmail(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIdentityProvider) SendPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockIdentityProvider) RefreshIdentity(ctx context.Context, id string) (*session.Identity, error) {
	args := m.Called(ctx, id)
	identity, _ := args.Get(0).(*session.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIdentityProvider) SubscribeSessionChanges(fn func(*session.Identity)) func() {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	idx := len(m.subscribers) - 1
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.subscribers[idx] = nil
		m.mu.Unlock()
	}
}

// EmitSessionChange pushes a provider notification to every subscriber,
// standing in for the hosted stream.
func (m *MockIdentityProvider) EmitSessionChange(identity *session.Identity) {
	m.mu.Lock()
	subs := make([]func(*session.Identity), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(identity)
		}
	}
}

// MockDirectory implements session.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Get(ctx context.Context, uid string) (*session.UserRecord, error) {
	args := m.Called(ctx, uid)
	record, _ := args.Get(0).(*session.UserRecord)
	return record, args.Error(1)
}

func (m *MockDirectory) Put(ctx context.Context, record *session.UserRecord) (*session.UserRecord, error) {
	args := m.Called(ctx, record)
	stored, _ := args.Get(0).(*session.UserRecord)
	return stored, args.Error(1)
}

func (m *MockDirectory) Patch(ctx context.Context, uid string, patch session.DirectoryPatch) error {
	args := m.Called(ctx, uid, patch)
	return args.Error(0)
}

// MockActivitySink records every event for later inspection.
type MockActivitySink struct {
	mu     sync.Mutex
	events []session.ActivityEvent
	err    error
}

func (m *MockActivitySink) Record(ctx context.Context, event session.ActivityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *MockActivitySink) Events() []session.ActivityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]session.ActivityEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockActivitySink) Types() []session.ActivityEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]session.ActivityEventType, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.EventType)
	}
	return out
}

// MockConfig implements session.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetLoginRoute() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetVerifyEmailRoute() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetLandingRoute() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetRejectedRouteKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetRedirectParam() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetVerificationPollInterval() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockConfig) GetResendCooldown() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// captureLogger swallows log lines so test output stays quiet.
type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) log(format string) {
	l.mu.Lock()
	l.lines = append(l.lines, format)
	l.mu.Unlock()
}

func (l *captureLogger) Debug(format string, args ...any) { l.log(format) }
func (l *captureLogger) Info(format string, args ...any)  { l.log(format) }
func (l *captureLogger) Warn(format string, args ...any)  { l.log(format) }
func (l *captureLogger) Error(format string, args ...any) { l.log(format) }

func (l *captureLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// MockContext mocks router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) QueryValues(key string) []string {
	args := m.Called(key)
	v, _ := args.Get(0).([]string)
	return v
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) LocalsMerge(key any, value map[string]any) map[string]any {
	args := m.Called(key, value)
	v, _ := args.Get(0).(map[string]any)
	return v
}

func (m *MockContext) FormFile(key string) (*multipart.FileHeader, error) {
	args := m.Called(key)
	fh, _ := args.Get(0).(*multipart.FileHeader)
	return fh, args.Error(1)
}

func (m *MockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) IP() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) SendStatus(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) SendStream(r io.Reader) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *MockContext) RouteName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) RouteParams() map[string]string {
	args := m.Called()
	v, _ := args.Get(0).(map[string]string)
	return v
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}
