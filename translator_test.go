package session_test

import (
	"errors"
	"testing"

	session "github.com/fieldops/go-session"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateNil(t *testing.T) {
	assert.Nil(t, session.Translate(nil))
}

func TestTranslatePassesThroughRichErrors(t *testing.T) {
	original := session.ErrNoActiveSession

	translated := session.Translate(original)
	require.NotNil(t, translated)
	assert.Equal(t, original.TextCode, translated.TextCode)
	assert.Equal(t, original.Category, translated.Category)
}

func TestTranslateMapsProviderCodes(t *testing.T) {
	testCases := []struct {
		code     string
		want     *goerrors.Error
		category goerrors.Category
	}{
		{session.CodeUserNotFound, session.ErrUserNotFound, goerrors.CategoryAuth},
		{session.CodeWrongPassword, session.ErrWrongPassword, goerrors.CategoryAuth},
		{session.CodeEmailInUse, session.ErrEmailInUse, goerrors.CategoryConflict},
		{session.CodeWeakPassword, session.ErrWeakPassword, goerrors.CategoryValidation},
		{session.CodeInvalidEmail, session.ErrInvalidEmail, goerrors.CategoryValidation},
		{session.CodeUserDisabled, session.ErrUserDisabled, goerrors.CategoryAuth},
		{session.CodeTooManyRequests, session.ErrTooManyRequests, goerrors.CategoryRateLimit},
		{session.CodeNetworkFailure, session.ErrNetworkFailure, goerrors.CategoryOperation},
		{session.CodePopupClosed, session.ErrPopupClosed, goerrors.CategoryAuth},
		{session.CodeConcurrentPopup, session.ErrConcurrentPopup, goerrors.CategoryAuth},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			perr := session.NewProviderError("identity", "op", tc.code, nil)

			translated := session.Translate(perr)
			require.NotNil(t, translated)
			assert.Equal(t, tc.want.TextCode, translated.TextCode)
			assert.Equal(t, tc.want.Message, translated.Message)
			assert.Equal(t, tc.category, translated.Category)
			assert.Equal(t, tc.code, translated.Metadata["code"])
		})
	}
}

func TestTranslateUnmappedCodeFallsBack(t *testing.T) {
	perr := session.NewProviderError("identity", "op", "auth/some-new-code", nil)

	translated := session.Translate(perr)
	require.NotNil(t, translated)
	assert.Equal(t, session.CodeUnknown, translated.TextCode)
}

func TestTranslateEmptyCodeDefaultsToUnknown(t *testing.T) {
	perr := session.NewProviderError("identity", "op", "", errors.New("boom"))

	translated := session.Translate(perr)
	require.NotNil(t, translated)
	assert.Equal(t, session.CodeUnknown, translated.TextCode)
}

func TestTranslatePlainErrorFallsBack(t *testing.T) {
	translated := session.Translate(errors.New("socket closed"))
	require.NotNil(t, translated)
	assert.Equal(t, session.CodeUnknown, translated.TextCode)
	assert.Equal(t, "socket closed", translated.Metadata["error"])
}

func TestTranslateDoesNotMutateTableEntries(t *testing.T) {
	perr := session.NewProviderError("identity", "op", session.CodeWrongPassword, nil)

	translated := session.Translate(perr)
	require.NotNil(t, translated)
	translated.Message = "mutated"

	assert.Equal(t, "the password entered is incorrect", session.ErrWrongPassword.Message)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", session.ErrorCode(nil))
	assert.Equal(t, session.CodeWrongPassword, session.ErrorCode(session.ErrWrongPassword))
	assert.Equal(t, session.CodeEmailInUse,
		session.ErrorCode(session.NewProviderError("identity", "op", session.CodeEmailInUse, nil)))
	assert.Equal(t, session.CodeUnknown, session.ErrorCode(errors.New("boom")))
}

func TestProviderErrorMessageAndUnwrap(t *testing.T) {
	inner := errors.New("tls handshake failed")
	perr := session.NewProviderError("identity", "verify_credentials", session.CodeNetworkFailure, inner)

	assert.Contains(t, perr.Error(), "identity verify_credentials")
	assert.Contains(t, perr.Error(), session.CodeNetworkFailure)
	assert.ErrorIs(t, perr, inner)
}
