package core

import "github.com/pkg/errors"

var ErrInvalidData = errors.New("The given data was invalid.")

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	if err == nil {
		err = ErrInvalidData
	}
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldMessages groups messages by field, dropping duplicates while keeping their order.
func (err ValidationError) FieldMessages() map[string][]string {
	msgs := make(map[string][]string, len(err.Fields))
	for _, fe := range err.Fields {
		dup := false
		for _, m := range msgs[fe.Field] {
			if m == fe.Error {
				dup = true
				break
			}
		}
		if !dup {
			msgs[fe.Field] = append(msgs[fe.Field], fe.Error)
		}
	}
	return msgs
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
