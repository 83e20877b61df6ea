package todo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eleven-am/todolist/internal/store"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("resource not found")
	ErrStorage            = errors.New("storage failure")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError represents a missing or malformed field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors. It matches
// ErrInvalidInput under errors.Is.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e ValidationErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// translate maps storage errors onto the service error kinds.
func translate(err error, subject string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrForeignKey):
		return fmt.Errorf("%s: %w", subject, ErrNotFound)
	case errors.Is(err, store.ErrConnectionFailed), errors.Is(err, store.ErrTimeout):
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}

func isStorageError(err error) bool {
	return errors.Is(err, ErrStorage) || errors.Is(err, ErrStorageUnavailable)
}
