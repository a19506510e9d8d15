package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")

	ErrShareExpired      = errors.New("share expired")
	ErrShareExhausted    = errors.New("share view limit reached")
	ErrShareRevoked      = errors.New("share revoked")
	ErrPasswordRequired  = errors.New("share password required")
	ErrPasswordIncorrect = errors.New("share password incorrect")
	ErrAccessLevelDenied = errors.New("share access level denied")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsPasswordChallenge reports whether err asks the recipient for a (different) password.
func IsPasswordChallenge(err error) bool {
	return errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrPasswordIncorrect)
}
