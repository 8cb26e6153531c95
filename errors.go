package session

import "github.com/goliatone/go-errors"

// Normalized provider failure codes. These mirror the wire-level codes the
// Identity Provider reports; Translate maps them onto the user-facing
// error values below. CodeUnknown is the fallback for anything unmapped.
const (
	CodeUserNotFound    = "user-not-found"
	CodeWrongPassword   = "wrong-password"
	CodeEmailInUse      = "email-already-in-use"
	CodeWeakPassword    = "weak-password"
	CodeInvalidEmail    = "invalid-email"
	CodeUserDisabled    = "user-disabled"
	CodeTooManyRequests = "too-many-requests"
	CodeNetworkFailure  = "network-request-failed"
	CodePopupClosed     = "popup-closed-by-user"
	CodeConcurrentPopup = "cancelled-popup-request"
	CodeUnknown         = "unknown"
)

// ErrUserNotFound is returned when no account exists for the email.
var ErrUserNotFound = errors.New("we could not find an account with that email", errors.CategoryAuth).
	WithTextCode(CodeUserNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrWrongPassword is returned when the password does not match.
var ErrWrongPassword = errors.New("the password entered is incorrect", errors.CategoryAuth).
	WithTextCode(CodeWrongPassword).
	WithCode(errors.CodeUnauthorized)

// ErrEmailInUse is returned when the email is already registered.
var ErrEmailInUse = errors.New("an account already exists with that email", errors.CategoryConflict).
	WithTextCode(CodeEmailInUse).
	WithCode(errors.CodeConflict)

// ErrWeakPassword is returned when the provider rejects a weak password.
var ErrWeakPassword = errors.New("the password provided is too weak", errors.CategoryValidation).
	WithTextCode(CodeWeakPassword).
	WithCode(errors.CodeBadRequest)

// ErrInvalidEmail is returned when the provider rejects a malformed email.
var ErrInvalidEmail = errors.New("the email address is not valid", errors.CategoryValidation).
	WithTextCode(CodeInvalidEmail).
	WithCode(errors.CodeBadRequest)

// ErrUserDisabled is returned when the account has been disabled.
var ErrUserDisabled = errors.New("this account has been disabled", errors.CategoryAuth).
	WithTextCode(CodeUserDisabled).
	WithCode(errors.CodeForbidden)

// ErrTooManyRequests is returned when the provider rate limits the account.
var ErrTooManyRequests = errors.New("too many attempts, try again later", errors.CategoryRateLimit).
	WithTextCode(CodeTooManyRequests)

// ErrNetworkFailure is returned on transient network errors.
var ErrNetworkFailure = errors.New("a network error occurred, check your connection", errors.CategoryOperation).
	WithTextCode(CodeNetworkFailure)

// ErrPopupClosed is returned when the user closes the social sign-in window.
var ErrPopupClosed = errors.New("the sign in window was closed before completing", errors.CategoryAuth).
	WithTextCode(CodePopupClosed).
	WithCode(errors.CodeBadRequest)

// ErrConcurrentPopup is returned when a social sign-in window is already
// open; the duplicate request fails fast instead of queueing.
var ErrConcurrentPopup = errors.New("a sign in request is already in progress", errors.CategoryAuth).
	WithTextCode(CodeConcurrentPopup).
	WithCode(errors.CodeBadRequest)

// ErrUnknown is the generic fallback for unmapped provider codes.
var ErrUnknown = errors.New("something went wrong, please try again", errors.CategoryInternal).
	WithTextCode(CodeUnknown).
	WithCode(errors.CodeInternal)

// ErrNoActiveSession is returned by operations that require a signed-in
// user when the current session is empty.
var ErrNoActiveSession = errors.New("no active session", errors.CategoryAuth).
	WithTextCode("no-active-session").
	WithCode(errors.CodeUnauthorized)

// ErrUnsupportedProvider is returned for social kinds outside the closed
// google/facebook set.
var ErrUnsupportedProvider = errors.New("unsupported social provider", errors.CategoryValidation).
	WithTextCode("unsupported-provider").
	WithCode(errors.CodeBadRequest)

// ErrResendCoolingDown is returned while the verification resend cooldown
// is counting.
var ErrResendCoolingDown = errors.New("verification email was just sent, wait before retrying", errors.CategoryRateLimit).
	WithTextCode("resend-cooldown-active")

// ErrorCode extracts the normalized failure code carried by an error,
// falling back to CodeUnknown.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode != "" {
		return richErr.TextCode
	}

	var perr *ProviderError
	if errors.As(err, &perr) && perr.Code != "" {
		return perr.Code
	}

	return CodeUnknown
}
