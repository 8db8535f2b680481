package errors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrDeliveryFailed     = errors.New("email delivery failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsTokenInvalid(err error) bool {
	return errors.Is(err, ErrTokenInvalid)
}
