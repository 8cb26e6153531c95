package session

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/goliatone/go-router"
)

// FlashCookieKey names the cookie carrying a one-shot view message
// across a render or redirect.
const FlashCookieKey = "session_flash"

const (
	flashLevelError   = "error"
	flashLevelSuccess = "success"
)

type flashPayload struct {
	Level string             `json:"level"`
	Data  router.ViewContext `json:"data"`
}

// flashScope chains the stored message into the terminal render or
// redirect call.
type flashScope struct {
	ctx router.Context
}

func flashWithError(ctx router.Context, data router.ViewContext) flashScope {
	setFlash(ctx, flashLevelError, data)
	return flashScope{ctx: ctx}
}

func flashWithSuccess(ctx router.Context, data router.ViewContext) flashScope {
	setFlash(ctx, flashLevelSuccess, data)
	return flashScope{ctx: ctx}
}

func (f flashScope) Status(code int) flashScope {
	f.ctx.Status(code)
	return f
}

func (f flashScope) Render(view string, data router.ViewContext) error {
	return f.ctx.Render(view, data)
}

func (f flashScope) Redirect(path string, status int) error {
	return f.ctx.Redirect(path, status)
}

func setFlash(ctx router.Context, level string, data router.ViewContext) {
	raw, err := json.Marshal(flashPayload{Level: level, Data: data})
	if err != nil {
		return
	}

	ctx.Cookie(&router.Cookie{
		Name:     FlashCookieKey,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Expires:  time.Now().Add(time.Minute),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// ConsumeFlash returns the pending message level and data and clears
// the cookie. The level is empty when nothing was stored.
func ConsumeFlash(ctx router.Context) (string, router.ViewContext) {
	raw := ctx.Cookies(FlashCookieKey)
	if raw == "" {
		return "", nil
	}

	ctx.Cookie(&router.Cookie{
		Name:     FlashCookieKey,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return "", nil
	}

	var payload flashPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return "", nil
	}

	return payload.Level, payload.Data
}
