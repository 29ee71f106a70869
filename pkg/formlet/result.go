package formlet

import (
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Failure is one validation failure. Path is a dotted field path, empty for
// failures not attributed to a named field.
type Failure struct {
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (f Failure) Error() string {
	if f.Path == "" {
		return f.Message
	}
	return f.Path + ": " + f.Message
}

// Result is the outcome of Collect: either a value or a non-empty list of
// failures. Value is the zero T whenever Failures is non-empty.
type Result[T any] struct {
	Value    T
	Failures []Failure
}

// Success wraps value.
func Success[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Fail builds a failed result. Passing no failures still produces a failed
// result carrying a generic message.
func Fail[T any](failures ...Failure) Result[T] {
	if len(failures) == 0 {
		failures = []Failure{{Message: "validation failed"}}
	}
	return Result[T]{Failures: append([]Failure(nil), failures...)}
}

// OK reports whether the result carries a value.
func (r Result[T]) OK() bool {
	return len(r.Failures) == 0
}

// Err aggregates the failures into a single error, or nil on success.
func (r Result[T]) Err() error {
	if r.OK() {
		return nil
	}
	var merr *multierror.Error
	for _, failure := range r.Failures {
		merr = multierror.Append(merr, failure)
	}
	merr.ErrorFormat = formatFailures
	return merr.ErrorOrNil()
}

func formatFailures(errs []error) string {
	if len(errs) == 1 {
		return "formlet: " + errs[0].Error()
	}
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return "formlet: " + strings.Join(parts, "; ")
}

// prefixed returns failures with name prepended to their paths.
func prefixed(name string, failures []Failure) []Failure {
	if name == "" || len(failures) == 0 {
		return failures
	}
	out := make([]Failure, len(failures))
	for i, failure := range failures {
		path := name
		if failure.Path != "" {
			path = name + "." + failure.Path
		}
		out[i] = Failure{Path: path, Message: failure.Message}
	}
	return out
}
