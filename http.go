package session

import (
	"net/http"
	"net/url"
	"time"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// StateLocalsKey is where the guard stashes the session snapshot for
// downstream handlers.
const StateLocalsKey = "session_state"

// StateSource yields the latest session snapshot. Guards call it per
// request so decisions never run against a stale value.
type StateSource func() State

// RouteGuard turns policy evaluations into router middleware: allowed
// requests continue down the chain, denials redirect to the target the
// evaluator picked.
type RouteGuard struct {
	source       StateSource
	cfg          Config
	routes       GuardRoutes
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewRouteGuard(source StateSource, cfg Config) (*RouteGuard, error) {
	if source == nil {
		source = func() State { return State{} }
	}

	g := &RouteGuard{
		source: source,
		cfg:    cfg,
		routes: GuardRoutesFromConfig(cfg),
		Logger: defLogger{},
	}

	g.ErrorHandler = g.defaultErrHandler

	return g, nil
}

// Protect guards every wrapped handler with the given policy.
func (g *RouteGuard) Protect(policy Policy) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			state := g.source()
			decision := Evaluate(state, policy, g.routes, ctx.OriginalURL())

			if decision.Allow {
				ctx.Locals(StateLocalsKey, state)
				return hf(ctx)
			}

			g.Logger.Info(
				"Route denied, redirecting",
				"policy", string(policy),
				"path", ctx.OriginalURL(),
				"target", decision.Redirect,
				"params", print.MaybePrettyJSON(decision.Params),
			)

			if decision.Redirect == g.routes.Login {
				g.SetRedirect(ctx)
			}

			statusCode := http.StatusSeeOther
			if ctx.Method() == string(router.GET) {
				statusCode = http.StatusFound
			}
			return ctx.Redirect(redirectTarget(decision), statusCode)
		}
	}
}

// GetRedirect returns the path stored by SetRedirect and clears the
// cookie, falling back to def when none was stored.
func (g *RouteGuard) GetRedirect(ctx router.Context, def ...string) string {
	rejectedRoute := g.cfg.GetRejectedRouteKey()
	r := ctx.Cookies(rejectedRoute)
	if r == "" {
		return def[0]
	}
	g.cookieDel(ctx, rejectedRoute)
	return r
}

// GetRedirectOrDefault resolves the post-login destination: the stored
// rejected route, then the referer, then the landing route.
func (g *RouteGuard) GetRedirectOrDefault(ctx router.Context) string {
	rejectedRoute := g.cfg.GetRejectedRouteKey()
	refererHeader := string(ctx.Referer())

	r := ctx.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = g.cfg.GetLandingRoute()
	}
	g.cookieDel(ctx, rejectedRoute)
	return r
}

// SetRedirect remembers the originally requested route so the login flow
// can resume there.
func (g *RouteGuard) SetRedirect(ctx router.Context) {
	rejectedRoute := g.cfg.GetRejectedRouteKey()

	g.Logger.Info("Setting redirect cookie", "key", rejectedRoute, "path", ctx.OriginalURL())

	ctx.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (g *RouteGuard) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (g *RouteGuard) defaultErrHandler(c router.Context, err error) error {
	g.Logger.Error("Guard middleware error", "error", err, "path", c.OriginalURL())
	return c.Redirect(g.routes.Landing, http.StatusSeeOther)
}

func redirectTarget(d Decision) string {
	if len(d.Params) == 0 {
		return d.Redirect
	}

	q := url.Values{}
	for k, v := range d.Params {
		q.Set(k, v)
	}
	return d.Redirect + "?" + q.Encode()
}
