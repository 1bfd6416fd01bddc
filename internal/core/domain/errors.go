package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error kinds. Structured errors below unwrap to one of these so callers can
// branch with errors.Is.
var (
	ErrNetwork    = errors.New("network error")
	ErrAuth       = errors.New("authentication error")
	ErrValidation = errors.New("validation error")
	ErrLockout    = errors.New("account locked")
)

var (
	ErrAccessTokenMissing = fmt.Errorf("%w: access token missing", ErrAuth)
	ErrNoToken            = fmt.Errorf("%w: no token held", ErrAuth)
	ErrLoginInProgress    = errors.New("login already in progress")
	ErrKeyNotFound        = errors.New("key not found")
)

// RemoteError is a failed call to the remote API. StatusCode is zero when
// the request never produced a response.
type RemoteError struct {
	StatusCode   int
	Message      string
	Blocked      bool
	BlockedUntil *time.Time
	Err          error
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("remote api unreachable: %v", e.Err)
		}
		return "remote api unreachable"
	}
	if e.Message != "" {
		return fmt.Sprintf("remote api %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote api %d", e.StatusCode)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Kind maps the failure onto the error taxonomy.
func (e *RemoteError) Kind() error {
	switch {
	case e.Blocked || e.StatusCode == http.StatusLocked || e.StatusCode == http.StatusTooManyRequests:
		return ErrLockout
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrAuth
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity ||
		e.StatusCode == http.StatusConflict:
		return ErrValidation
	default:
		return ErrNetwork
	}
}

func (e *RemoteError) Is(target error) bool {
	return target == e.Kind()
}

// LoginError is returned by a failed login. Blocked and BlockedUntil carry
// the remote lockout policy when the API reports one.
type LoginError struct {
	Message      string
	Blocked      bool
	BlockedUntil *time.Time
	Err          error
}

func (e *LoginError) Error() string { return "login: " + e.Message }

func (e *LoginError) Unwrap() error { return e.Err }

// RegistrationError carries the server-supplied reason a registration was
// rejected.
type RegistrationError struct {
	Message string
	Err     error
}

func (e *RegistrationError) Error() string { return "register: " + e.Message }

func (e *RegistrationError) Unwrap() error { return e.Err }

// ProfileUpdateError is returned when the profile could not be saved.
type ProfileUpdateError struct {
	Err error
}

func (e *ProfileUpdateError) Error() string { return "Failed to update profile" }

func (e *ProfileUpdateError) Unwrap() error { return e.Err }
