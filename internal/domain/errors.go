package domain

import (
	"errors"
	"fmt"
	"strings"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError reports one or more human-readable violations. Gates fill
// Details with every message they collected instead of stopping at the first.
type ValidationError struct {
	Field   string
	Msg     string
	Details []string
	Err     error
}

func (e ValidationError) Error() string {
	if len(e.Details) > 0 {
		head := e.Msg
		if head == "" {
			head = "validation failed"
		}
		return head + ": " + strings.Join(e.Details, "; ")
	}
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// Messages returns the violation list, falling back to the single message.
func (e ValidationError) Messages() []string {
	if len(e.Details) > 0 {
		out := make([]string, len(e.Details))
		copy(out, e.Details)
		return out
	}
	return []string{e.Error()}
}

// NewValidationFailure wraps collected gate messages. It returns nil when
// there is nothing to report.
func NewValidationFailure(msg string, details []string) error {
	if len(details) == 0 {
		return nil
	}
	return ValidationError{Msg: msg, Details: details}
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

// ValidationMessages extracts the violation list from err, or nil when err is
// not a validation failure.
func ValidationMessages(err error) []string {
	var target ValidationError
	if errors.As(err, &target) {
		return target.Messages()
	}
	return nil
}
