package errors

import (
	"fmt"
)

// ErrPassInProgress is returned when a synchronization pass is requested
// while another one is still running.
var ErrPassInProgress = New("synchronization pass already in progress")

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// RemoteError represents a failed call to the remote emoji API. Either the
// request failed outright, or the API answered with `ok: false`.
type RemoteError struct {
	Op         string
	StatusCode int
	Reason     string
}

func (err RemoteError) Error() string {
	if err.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %s", err.Op, err.StatusCode, err.Reason)
	}
	return fmt.Sprintf("%s: %s", err.Op, err.Reason)
}

// InvalidNameError is returned for emoji names that can't be used as a file
// name inside the data directory.
type InvalidNameError struct {
	Name string
}

func (err InvalidNameError) Error() string {
	return fmt.Sprintf("invalid emoji name %q", err.Name)
}

// TooLargeError is returned when a remote response exceeds the size the
// mirror is willing to read.
type TooLargeError struct {
	Limit int64
}

func (err TooLargeError) Error() string {
	return fmt.Sprintf("response exceeds %d bytes", err.Limit)
}
