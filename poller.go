package session

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultPollInterval is the cadence of the verification check timer.
	DefaultPollInterval = 3 * time.Second
	// DefaultResendCooldown is how long resend requests are rejected
	// after a successful dispatch.
	DefaultResendCooldown = 60 * time.Second
)

// VerificationSource is the slice of the Manager the poller drives.
type VerificationSource interface {
	CheckEmailVerification(ctx context.Context) (bool, error)
	ResendVerificationEmail(ctx context.Context) error
}

type stopperRegistry interface {
	RegisterStopper(Stopper)
}

// VerificationPoller re-checks email verification on a fixed interval and
// owns the resend cooldown countdown. Both timers are independently
// cancellable; Start and Stop are idempotent and at most one tick per
// timer is ever scheduled.
type VerificationPoller struct {
	source       VerificationSource
	logger       Logger
	interval     time.Duration
	cooldown     time.Duration
	cooldownTick time.Duration
	navigator    Navigator
	verifiedPath string
	onVerified   []func()

	mu           sync.Mutex
	pollDone     chan struct{}
	cooldownDone chan struct{}
	remaining    int
}

// PollerOption customizes VerificationPoller construction.
type PollerOption func(*VerificationPoller)

// WithPollerLogger overrides the default stdout logger.
func WithPollerLogger(logger Logger) PollerOption {
	return func(p *VerificationPoller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPollerConfig pulls the check interval and resend cooldown from the
// host configuration.
func WithPollerConfig(cfg Config) PollerOption {
	return func(p *VerificationPoller) {
		if cfg == nil {
			return
		}
		if d := cfg.GetVerificationPollInterval(); d > 0 {
			p.interval = d
		}
		if d := cfg.GetResendCooldown(); d > 0 {
			p.cooldown = d
		}
	}
}

// WithPollInterval overrides the verification check cadence.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *VerificationPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithResendCooldown overrides the resend cooldown duration.
func WithResendCooldown(d time.Duration) PollerOption {
	return func(p *VerificationPoller) {
		if d > 0 {
			p.cooldown = d
		}
	}
}

// WithCooldownTick overrides the tick driving the once-per-second
// countdown decrement. Tests shorten it to keep runs fast.
func WithCooldownTick(d time.Duration) PollerOption {
	return func(p *VerificationPoller) {
		if d > 0 {
			p.cooldownTick = d
		}
	}
}

// WithVerifiedNavigation navigates to path once verification confirms.
func WithVerifiedNavigation(nav Navigator, path string) PollerOption {
	return func(p *VerificationPoller) {
		p.navigator = nav
		p.verifiedPath = path
	}
}

// OnVerified registers a callback fired once when verification confirms.
func OnVerified(fn func()) PollerOption {
	return func(p *VerificationPoller) {
		if fn != nil {
			p.onVerified = append(p.onVerified, fn)
		}
	}
}

// NewVerificationPoller builds a poller over the given source. When the
// source is a *Manager the poller registers itself so SignOut stops its
// timers.
func NewVerificationPoller(source VerificationSource, opts ...PollerOption) *VerificationPoller {
	p := &VerificationPoller{
		source:       source,
		logger:       defLogger{},
		interval:     DefaultPollInterval,
		cooldown:     DefaultResendCooldown,
		cooldownTick: time.Second,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if reg, ok := source.(stopperRegistry); ok {
		reg.RegisterStopper(p)
	}

	return p
}

// Start activates the verification check timer. It is a no-op while the
// timer is already active.
func (p *VerificationPoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.pollDone != nil {
		p.mu.Unlock()
		return
	}
	done := make(chan struct{})
	p.pollDone = done
	p.mu.Unlock()

	go p.pollLoop(ctx, done)
}

// Polling reports whether the check timer is active.
func (p *VerificationPoller) Polling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pollDone != nil
}

// Stop cancels both timers. Safe to call repeatedly and on a poller that
// was never started.
func (p *VerificationPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopPollingLocked()
	p.stopCooldownLocked()
}

// Resend re-requests the verification email and arms the cooldown. It is
// rejected while the cooldown is counting.
func (p *VerificationPoller) Resend(ctx context.Context) error {
	p.mu.Lock()
	if p.remaining > 0 {
		remaining := p.remaining
		p.mu.Unlock()
		return ErrResendCoolingDown.Clone().WithMetadata(map[string]any{
			"seconds_remaining": remaining,
		})
	}
	p.mu.Unlock()

	if err := p.source.ResendVerificationEmail(ctx); err != nil {
		return err
	}

	p.startCooldown(ctx)
	return nil
}

// CooldownRemaining returns the seconds left before resend is allowed.
func (p *VerificationPoller) CooldownRemaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remaining
}

// CooldownActive reports whether the countdown is running.
func (p *VerificationPoller) CooldownActive() bool {
	return p.CooldownRemaining() > 0
}

func (p *VerificationPoller) pollLoop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			p.mu.Lock()
			if p.pollDone == done {
				p.stopPollingLocked()
			}
			p.mu.Unlock()
			return
		case <-ticker.C:
			verified, err := p.source.CheckEmailVerification(ctx)
			if err != nil {
				// transient failures never stop the timer, the check is
				// advisory and re-attempted on the next tick
				p.logger.Warn("verification check failed", "error", err)
				continue
			}

			if !verified {
				continue
			}

			p.mu.Lock()
			if p.pollDone != done {
				// a stop/start pair superseded this timer while the
				// check was in flight, the late result belongs to nobody
				p.mu.Unlock()
				return
			}
			p.stopPollingLocked()
			p.mu.Unlock()

			for _, fn := range p.onVerified {
				fn()
			}
			if p.navigator != nil && p.verifiedPath != "" {
				p.navigator.NavigateTo(p.verifiedPath, nil)
			}
			return
		}
	}
}

func (p *VerificationPoller) startCooldown(ctx context.Context) {
	p.mu.Lock()
	if p.cooldownDone != nil {
		p.mu.Unlock()
		return
	}

	seconds := int(p.cooldown / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	done := make(chan struct{})
	p.cooldownDone = done
	p.remaining = seconds
	p.mu.Unlock()

	go p.cooldownLoop(ctx, done)
}

func (p *VerificationPoller) cooldownLoop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(p.cooldownTick)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			p.mu.Lock()
			if p.cooldownDone == done {
				p.stopCooldownLocked()
			}
			p.mu.Unlock()
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.cooldownDone != done {
				p.mu.Unlock()
				return
			}
			if p.remaining > 0 {
				p.remaining--
			}
			if p.remaining == 0 {
				p.stopCooldownLocked()
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
		}
	}
}

// callers hold p.mu
func (p *VerificationPoller) stopPollingLocked() {
	if p.pollDone != nil {
		close(p.pollDone)
		p.pollDone = nil
	}
}

func (p *VerificationPoller) stopCooldownLocked() {
	if p.cooldownDone != nil {
		close(p.cooldownDone)
		p.cooldownDone = nil
	}
	p.remaining = 0
}
