package errcode

const (
	ErrInvalid = 10000000 + iota
	ErrInvalidEmail
	ErrTokenInvalid
	ErrTooMany
	ErrDeliveryFailed
	ErrInternal
)
