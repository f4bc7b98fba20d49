package schema

import (
	"errors"
	"fmt"
)

// ErrorKind classifies analysis failures.
type ErrorKind string

// All error kinds an analysis can produce.
const (
	InvalidRepository    ErrorKind = "InvalidRepository"
	CloneFailure         ErrorKind = "CloneFailure"
	NoBranchesAvailable  ErrorKind = "NoBranchesAvailable"
	InvalidAuthorPattern ErrorKind = "InvalidAuthorPattern"
	InvalidDate          ErrorKind = "InvalidDate"
)

// Sentinels for errors.Is checks against an *AnalysisError.
var (
	ErrInvalidRepository    = &AnalysisError{Kind: InvalidRepository}
	ErrCloneFailure         = &AnalysisError{Kind: CloneFailure}
	ErrNoBranchesAvailable  = &AnalysisError{Kind: NoBranchesAvailable}
	ErrInvalidAuthorPattern = &AnalysisError{Kind: InvalidAuthorPattern}
	ErrInvalidDate          = &AnalysisError{Kind: InvalidDate}
)

// AnalysisError is a structured, renderable analysis failure.
// Message must never carry credentials.
type AnalysisError struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
	Err     error     `json:"-" yaml:"-"`
}

// NewAnalysisError builds an AnalysisError of the given kind.
func NewAnalysisError(kind ErrorKind, err error, format string, args ...any) *AnalysisError {
	return &AnalysisError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *AnalysisError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Is matches any AnalysisError of the same kind.
func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	return ok && t.Kind == e.Kind
}

// AsAnalysisError extracts an *AnalysisError from err, if any.
func AsAnalysisError(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
