package tui

import (
	"io"

	"github.com/hashicorp/go-hclog"
)

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling host logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the terminal host.
type Option func(*Host)

// WithPromptDriver overrides the prompt driver used by the host.
func WithPromptDriver(driver PromptDriver) Option {
	return func(h *Host) {
		if driver != nil {
			h.driver = driver
		}
	}
}

// WithOutput sets where the default driver prints informational messages.
func WithOutput(out io.Writer) Option {
	return func(h *Host) {
		h.out = out
	}
}

// WithLogger sets the host logger.
func WithLogger(logger hclog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMaxAttempts caps how many prompt passes Run makes before giving up.
// Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.maxAttempts = n
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(h *Host) {
		h.theme = theme
	}
}
