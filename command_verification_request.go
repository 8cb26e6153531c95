package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerificationRequestMessage struct {
	OnResponse func(r *VerificationRequestResponse)
}

type VerificationRequestResponse struct {
	Sent     bool     `json:"sent" example:"true" doc:"Was a verification email dispatched?"`
	Verified bool     `json:"verified" example:"false" doc:"Is the account already verified?"`
	Errors   []string `json:"errors" example:"['no active session']" doc:"Error messages."`
}

type VerificationRequestHandler struct {
	manager *Manager
}

func NewVerificationRequestHandler(manager *Manager) *VerificationRequestHandler {
	return &VerificationRequestHandler{manager: manager}
}

func (h *VerificationRequestHandler) Execute(ctx context.Context, event VerificationRequestMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerificationRequestHandler) execute(ctx context.Context, event VerificationRequestMessage) error {
	resp := &VerificationRequestResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	state := h.manager.Current()
	if !state.SignedIn() {
		return ErrNoActiveSession
	}

	if state.User.EmailVerified {
		// already verified, resending would be noise
		resp.Verified = true
		if event.OnResponse != nil {
			event.OnResponse(resp)
		}
		return nil
	}

	if err := h.manager.ResendVerificationEmail(ctx); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to request verification email")
	}

	resp.Sent = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
