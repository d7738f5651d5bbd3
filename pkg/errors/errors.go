// Package errors contains the error helpers shared by all emoji-mirror
// packages.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// New returns an error with the given message.
func New(msg string, args ...interface{}) error {
	if len(args) == 0 {
		return pkgerrors.New(msg)
	}
	return pkgerrors.Errorf(msg, args...)
}

// WithContext annotates err with a short description of what was being
// attempted. It returns nil if err is nil.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessage(err, context)
}

// RootCause unwraps all the context added by WithContext.
func RootCause(err error) error {
	return pkgerrors.Cause(err)
}

// FriendlyError is an error whose message is meant to be shown to users
// as-is, without any of the context used for debugging.
type FriendlyError struct {
	msg string
}

// NewFriendlyError formats a FriendlyError.
func NewFriendlyError(template string, args ...interface{}) error {
	return FriendlyError{fmt.Sprintf(template, args...)}
}

func (err FriendlyError) Error() string {
	return err.msg
}

// FriendlyMessage returns the message that should be shown to the user.
func (err FriendlyError) FriendlyMessage() string {
	return err.msg
}

// Friendly is implemented by errors that carry a user facing message.
type Friendly interface {
	FriendlyMessage() string
}

// GetFriendlyMessage returns the friendly message of err's root cause, if it
// has one.
func GetFriendlyMessage(err error) (string, bool) {
	if friendly, ok := RootCause(err).(Friendly); ok {
		return friendly.FriendlyMessage(), true
	}
	return "", false
}
