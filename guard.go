package session

// Policy names a route access category. The set is closed; Evaluate denies
// anything it does not recognize.
type Policy string

const (
	PolicyAuthenticated Policy = "authenticated"
	PolicyAdmin         Policy = "admin"
	PolicyTechnician    Policy = "technician"
	PolicyGuestOnly     Policy = "guest-only"
)

// GuardRoutes holds the redirect targets denials resolve to.
type GuardRoutes struct {
	Login         string
	VerifyEmail   string
	Landing       string
	RedirectParam string
}

// GuardRoutesFromConfig lifts the host configuration into guard routes.
func GuardRoutesFromConfig(cfg Config) GuardRoutes {
	return GuardRoutes{
		Login:         cfg.GetLoginRoute(),
		VerifyEmail:   cfg.GetVerifyEmailRoute(),
		Landing:       cfg.GetLandingRoute(),
		RedirectParam: cfg.GetRedirectParam(),
	}
}

// Decision is the outcome of a guard evaluation. When Allow is false,
// Redirect carries the target path and Params any query values to attach.
type Decision struct {
	Allow    bool
	Redirect string
	Params   map[string]string
}

// Evaluate decides whether the session snapshot may access a route guarded
// by policy. It is a pure function: same snapshot and policy, same
// decision. requestedPath is the route being guarded and is carried to the
// login page so the flow can resume after sign in. Guards never mutate
// session state.
func Evaluate(state State, policy Policy, routes GuardRoutes, requestedPath string) Decision {
	switch policy {
	case PolicyAuthenticated:
		return evaluateAuthenticated(state, routes, requestedPath)
	case PolicyAdmin:
		return evaluateRole(state, RoleAdmin, routes)
	case PolicyTechnician:
		return evaluateRole(state, RoleTechnician, routes)
	case PolicyGuestOnly:
		return evaluateGuestOnly(state, routes)
	default:
		return deny(routes.Landing, nil)
	}
}

func evaluateAuthenticated(state State, routes GuardRoutes, requestedPath string) Decision {
	if state.SignedIn() && verifiedOrSocial(state.User) {
		return allow()
	}

	if pendingEmailVerification(state.User) {
		return deny(routes.VerifyEmail, nil)
	}

	var params map[string]string
	if requestedPath != "" && routes.RedirectParam != "" {
		params = map[string]string{routes.RedirectParam: requestedPath}
	}
	return deny(routes.Login, params)
}

func evaluateRole(state State, role UserRole, routes GuardRoutes) Decision {
	if state.SignedIn() && state.User.EmailVerified && state.User.Role == role {
		return allow()
	}
	return deny(routes.Landing, nil)
}

func evaluateGuestOnly(state State, routes GuardRoutes) Decision {
	if !state.SignedIn() {
		return allow()
	}

	if pendingEmailVerification(state.User) {
		return deny(routes.VerifyEmail, nil)
	}
	return deny(routes.Landing, nil)
}

// verifiedOrSocial reports whether the record clears the verification bar:
// social providers vouch for the email themselves.
func verifiedOrSocial(user *UserRecord) bool {
	return user.EmailVerified || user.Provider != ProviderEmail
}

func pendingEmailVerification(user *UserRecord) bool {
	return user != nil && !user.EmailVerified && user.Provider == ProviderEmail
}

func allow() Decision {
	return Decision{Allow: true}
}

func deny(redirect string, params map[string]string) Decision {
	return Decision{Redirect: redirect, Params: params}
}
