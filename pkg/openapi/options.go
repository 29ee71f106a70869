package openapi

import "github.com/hashicorp/go-hclog"

// defaultMediaTypes lists the request content types inspected, in order.
var defaultMediaTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// Options configures Import.
type Options struct {
	// ResolveReferences allows external $ref resolution and validates the
	// document before importing.
	ResolveReferences bool
	// MediaTypes overrides the request content types inspected, in order of
	// preference. When none match the first declared content is used.
	MediaTypes []string
	Logger     hclog.Logger
}

// Option mutates Options prior to import.
type Option func(*Options)

// WithReferenceResolution enables external references and validation.
func WithReferenceResolution() Option {
	return func(o *Options) {
		o.ResolveReferences = true
	}
}

// WithMediaTypes sets the preferred request content types.
func WithMediaTypes(types ...string) Option {
	return func(o *Options) {
		if len(types) > 0 {
			o.MediaTypes = append([]string(nil), types...)
		}
	}
}

// WithLogger sets the logger used to report skipped properties.
func WithLogger(logger hclog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

func newOptions(opts ...Option) Options {
	cfg := Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if len(cfg.MediaTypes) == 0 {
		cfg.MediaTypes = defaultMediaTypes
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.L().Named("openapi")
	}
	return cfg
}
