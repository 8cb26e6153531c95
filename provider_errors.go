package session

import "fmt"

// ProviderError captures a normalized Identity Provider failure. Provider
// adapters wrap their SDK errors in this type so Translate can map the
// Code onto a user-facing error value.
type ProviderError struct {
	Provider  string
	Operation string
	Code      string
	Err       error
	Raw       map[string]any
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}

	scope := "provider"
	if e.Provider != "" && e.Operation != "" {
		scope = fmt.Sprintf("%s %s", e.Provider, e.Operation)
	} else if e.Provider != "" {
		scope = e.Provider
	} else if e.Operation != "" {
		scope = e.Operation
	}

	if e.Code != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", scope, e.Err)
	}

	return fmt.Sprintf("%s failed", scope)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Metadata renders the failure details for attachment to translated errors.
func (e *ProviderError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{}
	if e.Provider != "" {
		meta["provider"] = e.Provider
	}
	if e.Operation != "" {
		meta["operation"] = e.Operation
	}
	if e.Code != "" {
		meta["code"] = e.Code
	}
	if len(e.Raw) > 0 {
		meta["raw"] = e.Raw
	}

	return meta
}

// NewProviderError builds a ProviderError for adapter implementations.
func NewProviderError(provider, operation, code string, err error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Operation: operation,
		Code:      code,
		Err:       err,
	}
}
