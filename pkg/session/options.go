package session

import (
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/goliatone/go-formlet/pkg/layout"
)

// ErrorHandler receives failures of deferred rebuilds.
type ErrorHandler func(err error)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOrientation sets the default orientation used to render and flatten.
func WithOrientation(orientation layout.Orientation) Option {
	return func(s *Session) {
		s.orientation = orientation
	}
}

// WithErrorHandler registers a callback for deferred rebuild failures.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(s *Session) {
		s.onError = fn
	}
}

// WithID fixes the session identity instead of generating a random one.
func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		s.id = id
	}
}
