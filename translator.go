package session

import goerrors "github.com/goliatone/go-errors"

var translations = map[string]*goerrors.Error{
	CodeUserNotFound:    ErrUserNotFound,
	CodeWrongPassword:   ErrWrongPassword,
	CodeEmailInUse:      ErrEmailInUse,
	CodeWeakPassword:    ErrWeakPassword,
	CodeInvalidEmail:    ErrInvalidEmail,
	CodeUserDisabled:    ErrUserDisabled,
	CodeTooManyRequests: ErrTooManyRequests,
	CodeNetworkFailure:  ErrNetworkFailure,
	CodePopupClosed:     ErrPopupClosed,
	CodeConcurrentPopup: ErrConcurrentPopup,
	CodeUnknown:         ErrUnknown,
}

// Translate maps any collaborator failure to a single user-facing error
// value. Already translated errors pass through untouched; provider errors
// resolve through their normalized code; everything else falls back to the
// generic unknown error. Translate never returns a raw provider error.
func Translate(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	var perr *ProviderError
	if goerrors.As(err, &perr) && perr != nil {
		code := perr.Code
		if code == "" {
			code = CodeUnknown
		}

		base, ok := translations[code]
		if !ok {
			base = ErrUnknown
		}

		return cloneWithSource(base, err, perr.Metadata())
	}

	return cloneWithSource(ErrUnknown, err, map[string]any{
		"error": err.Error(),
	})
}

func cloneWithSource(base *goerrors.Error, source error, meta map[string]any) *goerrors.Error {
	clone := base.Clone()
	if clone == nil {
		return base
	}

	clone.Source = source
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}

	return clone
}
