package notify

import (
	"errors"
	"strings"
)

type redactedError struct {
	message string
	err     error
}

func (e *redactedError) Error() string { return e.message }
func (e *redactedError) Unwrap() error { return e.err }

// redact replaces secret in err's message while keeping err in the chain.
func redact(err error, secret string) error {
	if err == nil || secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return &redactedError{
		message: strings.ReplaceAll(err.Error(), secret, "<redacted>"),
		err:     errors.Unwrap(err),
	}
}
