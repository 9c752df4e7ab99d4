package faults

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by services and stores. Handlers map the classes to
// HTTP statuses: validation -> 400, not found -> 404, anything else -> 500.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

type classified struct {
	class error
	msg   string
}

func (e *classified) Error() string { return e.msg }

func (e *classified) Is(target error) bool { return target == e.class }

// Validationf builds a validation error whose message is shown to the caller
// verbatim.
func Validationf(format string, args ...any) error {
	return &classified{class: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error whose message is shown to the caller
// verbatim.
func NotFoundf(format string, args ...any) error {
	return &classified{class: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}
