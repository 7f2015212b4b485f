package secret

import "errors"

var (
	// ErrMissingEnv indicates ${VAR} named an unset variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")

	// ErrProviderNotRegistered indicates a reference named an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrEmptySecret indicates a strict resolver received an empty value.
	ErrEmptySecret = errors.New("secret: provider returned empty value")

	// ErrSecretNotFound indicates a provider has no value for a reference.
	ErrSecretNotFound = errors.New("secret: not found")
)
