package session

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterVerificationRoutes mounts the verify-email pages and endpoints.
func RegisterVerificationRoutes[T any](app router.Router[T], opts ...VerificationControllerOption) {

	controller := NewVerificationController(opts...)

	app.
		Get(controller.Routes.VerifyEmail,
			controller.VerifyEmailShow,
		).
		SetName("verify-email.get")

	app.
		Post(
			controller.Routes.Resend,
			controller.ResendPost,
		).
		SetName("verify-email.resend.post")

	app.Get(controller.Routes.Status, controller.StatusGet).
		SetName("verify-email.status.get")

	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).
		SetName("pwd-reset.post")
}

type VerificationControllerRoutes struct {
	VerifyEmail   string
	Resend        string
	Status        string
	PasswordReset string
}

type VerificationControllerViews struct {
	VerifyEmail   string
	PasswordReset string
}

type VerificationController struct {
	Debug        bool
	Logger       Logger
	Manager      *Manager
	Poller       *VerificationPoller
	Routes       *VerificationControllerRoutes
	Views        *VerificationControllerViews
	ErrorHandler router.ErrorHandler
}

type VerificationControllerOption func(*VerificationController) *VerificationController

func WithControllerManager(m *Manager) VerificationControllerOption {
	return func(c *VerificationController) *VerificationController {
		c.Manager = m
		return c
	}
}

func WithControllerPoller(p *VerificationPoller) VerificationControllerOption {
	return func(c *VerificationController) *VerificationController {
		c.Poller = p
		return c
	}
}

func WithControllerLogger(l Logger) VerificationControllerOption {
	return func(c *VerificationController) *VerificationController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithControllerRoutes(r *VerificationControllerRoutes) VerificationControllerOption {
	return func(c *VerificationController) *VerificationController {
		if r != nil {
			c.Routes = r
		}
		return c
	}
}

func WithControllerViews(v *VerificationControllerViews) VerificationControllerOption {
	return func(c *VerificationController) *VerificationController {
		if v != nil {
			c.Views = v
		}
		return c
	}
}

func NewVerificationController(opts ...VerificationControllerOption) *VerificationController {
	c := &VerificationController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &VerificationControllerRoutes{
			VerifyEmail:   "/verify-email",
			Resend:        "/verify-email/resend",
			Status:        "/verify-email/status",
			PasswordReset: "/password-reset",
		},
		Views: &VerificationControllerViews{
			VerifyEmail:   "verify_email",
			PasswordReset: "password_reset",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Manager == nil {
		panic("Missing Manager in verification controller...")
	}

	if c.Poller == nil {
		panic("Missing VerificationPoller in verification controller...")
	}

	return c
}

func (a *VerificationController) VerifyEmailShow(ctx router.Context) error {
	state := a.Manager.Current()
	if !state.SignedIn() {
		return ctx.Redirect("/login", router.StatusSeeOther)
	}

	level, msg := ConsumeFlash(ctx)

	return ctx.Render(a.Views.VerifyEmail, router.ViewContext{
		"errors":             nil,
		"email":              state.User.Email,
		"verified":           state.User.EmailVerified,
		"cooldown_remaining": a.Poller.CooldownRemaining(),
		"flash":              msg,
		"flash_level":        level,
	})
}

func (a *VerificationController) ResendPost(ctx router.Context) error {
	if err := a.Poller.Resend(ctx.Context()); err != nil {
		a.Logger.Error("resend verification email: ", "error", err)

		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryRateLimit {
			return flashWithError(ctx, router.ViewContext{
				"error_message":  richErr.Message,
				"system_message": "Verification email was sent recently",
			}).Status(fiber.StatusTooManyRequests).Render(a.Views.VerifyEmail, router.ViewContext{
				"errors":             map[string]string{"resend": richErr.Message},
				"cooldown_remaining": a.Poller.CooldownRemaining(),
			})
		}

		return flashWithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Could not send verification email",
		}).Render(a.Views.VerifyEmail, router.ViewContext{
			"errors": []string{err.Error()},
		})
	}

	return flashWithSuccess(ctx, router.ViewContext{
		"system_message": "Verification email sent",
	}).Redirect(a.Routes.VerifyEmail, fiber.StatusSeeOther)
}

func (a *VerificationController) StatusGet(ctx router.Context) error {
	verified, err := a.Manager.CheckEmailVerification(ctx.Context())
	if err != nil {
		a.Logger.Error("verification status check: ", "error", err)

		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return ctx.JSON(richErr.Code, map[string]any{
				"error": richErr.Message,
				"code":  richErr.TextCode,
			})
		}
		return ctx.JSON(fiber.StatusInternalServerError, map[string]any{
			"error": err.Error(),
		})
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"verified": verified,
	})
}

// PasswordResetRequestPayload holds values for a password reset request
type PasswordResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

func (a *VerificationController) PasswordResetPost(ctx router.Context) error {
	payload := new(PasswordResetRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset parse payload: ", "error", err)
		return flashWithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.PasswordReset, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("password reset validate payload: ", "error", err)
		return flashWithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.PasswordReset, router.ViewContext{
			"record":     payload,
			"validation": err.Error(),
		})
	}

	var res *PasswordResetResponse

	req := PasswordResetMessage{
		Email: payload.Email,
		OnResponse: func(resp *PasswordResetResponse) {
			res = resp
		},
	}

	resetHandler := PasswordResetHandler{manager: a.Manager}
	if err := resetHandler.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset error: ", "error", err)
		return flashWithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error requesting password reset",
		}).Render(a.Views.PasswordReset, router.ViewContext{
			"record": payload,
			"errors": []string{err.Error()},
		})
	}

	if a.Debug {
		fmt.Println("======= PASSWORD RESET ======")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("=============================")
	}

	return flashWithSuccess(ctx, router.ViewContext{
		"system_message": "Password reset email sent",
	}).Redirect("/", fiber.StatusSeeOther)
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
