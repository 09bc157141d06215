package ormerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrIDRequired is returned when an entity without a primary key is used
	// where one is mandatory.
	ErrIDRequired = errors.New("ID required")

	// ErrMissingField is returned when a decoded row lacks a requested column.
	ErrMissingField = errors.New("field missing")

	// ErrMissingEagerLoad is returned when a relationship is resolved without a
	// populated eager load for its current key.
	ErrMissingEagerLoad = errors.New("eager load missing")

	// ErrNotFound is returned when a direct lookup matches no row.
	ErrNotFound = errors.New("entity not found")
)

// MissingFieldError names the column that could not be decoded.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field missing: %s", e.Name)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// MissingEagerLoadError names the relationship whose eager load is absent and
// the referenced entity it was registered under.
type MissingEagerLoadError struct {
	Name   string
	Entity string
}

func (e *MissingEagerLoadError) Error() string {
	return fmt.Sprintf("eager load missing: %s", e.Name)
}

func (e *MissingEagerLoadError) Is(target error) bool {
	return target == ErrMissingEagerLoad
}

// IDRequiredError names the entity that lacked a primary key.
type IDRequiredError struct {
	Entity string
}

func (e *IDRequiredError) Error() string {
	if e.Entity == "" {
		return ErrIDRequired.Error()
	}
	return fmt.Sprintf("ID required: %s", e.Entity)
}

func (e *IDRequiredError) Is(target error) bool {
	return target == ErrIDRequired
}

// NotFoundError represents a direct lookup that matched nothing.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsMissingEagerLoad reports whether err is a missing eager load.
func IsMissingEagerLoad(err error) bool {
	return errors.Is(err, ErrMissingEagerLoad)
}

// IsIDRequired reports whether err is an ID required error.
func IsIDRequired(err error) bool {
	return errors.Is(err, ErrIDRequired)
}
