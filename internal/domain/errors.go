package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrDuplicateEvent    = errors.New("duplicate event")
	ErrBindingNotFound   = errors.New("chain binding not found")
	ErrSignerUnavailable = errors.New("signer unavailable")
	ErrValidation        = errors.New("validation failed")
	ErrChain             = errors.New("chain failure")
	ErrChainTimeout      = errors.New("chain confirmation timeout")
	ErrPersistence       = errors.New("persistence failure")
)
