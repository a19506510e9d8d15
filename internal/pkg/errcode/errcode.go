package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrTooMany
	ErrInternal
	ErrShareExpired
	ErrShareExhausted
	ErrShareRevoked
	ErrPasswordRequired
	ErrAccessLevelDenied
	ErrDownloadFailed
)
