package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrMissingContact     = fmt.Errorf("%w: email missing", ErrValidation)
	ErrAmountMismatch     = fmt.Errorf("%w: final amount mismatch", ErrValidation)
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
	ErrNotFound           = errors.New("not found")           // 404
	ErrConflict           = errors.New("conflict")            // 409
	ErrPersistence        = errors.New("persistence failure") // 500
	ErrDelivery           = errors.New("delivery failure")    // 500
	ErrUnavailable        = errors.New("unavailable")         // 503
)
