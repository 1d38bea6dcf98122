package gservice

import (
	"errors"
	"fmt"
)

// ErrMessageNotFound indicates the provider does not know the requested message id.
var ErrMessageNotFound = errors.New("message not found")

// ProviderError wraps a network or API failure from the mail backend. It is
// recoverable at the tool level.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("gmail %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
