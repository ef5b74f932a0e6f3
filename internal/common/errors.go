package common

import (
	"errors"
	"fmt"
)

// Service-level error taxonomy. Handlers map these onto the JSON envelope;
// services never return transport errors directly.
var (
	// ErrNotFound covers both "does not exist" and "exists but is not
	// owned by the caller" so ownership probing is impossible.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName reports a per-user name uniqueness violation.
	ErrDuplicateName = errors.New("name already in use")

	// ErrInvalidReference reports a foreign id (LLM config, tool) that does
	// not exist or belongs to another user.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrMissingLLMConfig reports an agent with no usable LLM configuration.
	ErrMissingLLMConfig = errors.New("agent has no llm configuration")

	// ErrCredentialUnavailable reports a stored credential that could not
	// be decrypted.
	ErrCredentialUnavailable = errors.New("credential unavailable")

	// ErrUnsupportedProvider reports an LLM config naming a provider the
	// dispatch layer has no client for.
	ErrUnsupportedProvider = errors.New("unsupported llm provider")

	// ErrRateLimited reports a chat send rejected by the per-user limiter.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ProviderCallError wraps a failed external provider call, keeping the
// original cause for logging while callers match on the type.
type ProviderCallError struct {
	Provider string
	Err      error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("provider %s call failed: %v", e.Provider, e.Err)
}

func (e *ProviderCallError) Unwrap() error { return e.Err }
