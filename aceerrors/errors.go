// Package aceerrors defines the typed error taxonomy surfaced by the
// generation pipeline, in the same sentinel-plus-wrap style the teacher
// uses for its API errors.
package aceerrors

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline error so callers can branch on errors.Is
// without parsing message text.
type Kind string

const (
	MissingConditioning      Kind = "missing_conditioning"
	ConditionBatchMismatch   Kind = "condition_batch_mismatch"
	InvalidLatentShape       Kind = "invalid_latent_shape"
	InvalidDecodedAudioShape Kind = "invalid_decoded_audio_shape"
	WeightFormat             Kind = "weight_format"
	UnsupportedModel         Kind = "unsupported_model"
)

// sentinel values so callers can do errors.Is(err, aceerrors.ErrMissingConditioning).
var (
	ErrMissingConditioning      = &Error{Kind: MissingConditioning}
	ErrConditionBatchMismatch   = &Error{Kind: ConditionBatchMismatch}
	ErrInvalidLatentShape       = &Error{Kind: InvalidLatentShape}
	ErrInvalidDecodedAudioShape = &Error{Kind: InvalidDecodedAudioShape}
	ErrWeightFormat             = &Error{Kind: WeightFormat}
	ErrUnsupportedModel         = &Error{Kind: UnsupportedModel}
)

// Error is a kinded, wrappable pipeline error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so a wrapped *Error compares equal to its sentinel
// regardless of Message/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// As is re-exported for convenience so callers importing aceerrors don't
// also need the stdlib errors package for the common case.
func As(err error, target any) bool { return errors.As(err, target) }
