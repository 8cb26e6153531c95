package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type PasswordResetMessage struct {
	Email      string `json:"email" example:"user@example.com" doc:"Account email to send the reset link to"`
	OnResponse func(r *PasswordResetResponse)
}

type PasswordResetResponse struct {
	Success bool     `json:"success" example:"true" doc:"Was the reset email dispatched?"`
	Email   string   `json:"email" example:"user@example.com" doc:"Email the reset link was sent to."`
	Errors  []string `json:"errors" example:"['invalid email']" doc:"Error messages."`
}

type PasswordResetHandler struct {
	manager *Manager
}

func NewPasswordResetHandler(manager *Manager) *PasswordResetHandler {
	return &PasswordResetHandler{manager: manager}
}

func (h *PasswordResetHandler) Execute(ctx context.Context, event PasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password reset request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *PasswordResetHandler) execute(ctx context.Context, event PasswordResetMessage) error {
	resp := &PasswordResetResponse{Email: event.Email}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := h.manager.ResetPassword(ctx, event.Email); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to request password reset")
	}

	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
