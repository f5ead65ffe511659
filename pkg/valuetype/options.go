package valuetype

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-valuetype/pkg/validators"
)

// Options configures a Manager.
type Options struct {
	// DisableBuiltinTypes skips seeding the built-in catalog.
	DisableBuiltinTypes bool
	// Validators backs the string-format rules of the built-in catalog.
	Validators validators.Validators
	// Logger receives registration diagnostics. Defaults to a discarding
	// logger.
	Logger logrus.FieldLogger
}

// Option mutates Options during construction.
type Option func(*Options)

// WithoutBuiltinTypes creates an empty manager.
func WithoutBuiltinTypes() Option {
	return WithBuiltinTypes(false)
}

// WithBuiltinTypes toggles seeding of the built-in catalog.
func WithBuiltinTypes(enabled bool) Option {
	return func(opts *Options) {
		opts.DisableBuiltinTypes = !enabled
	}
}

// WithValidators swaps the string validators used by the built-in catalog.
func WithValidators(v validators.Validators) Option {
	return func(opts *Options) {
		if v != nil {
			opts.Validators = v
		}
	}
}

// WithLogger routes manager diagnostics to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(opts *Options) {
		if logger != nil {
			opts.Logger = logger
		}
	}
}

// NewOptions applies options on top of the defaults.
func NewOptions(options ...Option) Options {
	cfg := Options{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.Validators == nil {
		cfg.Validators = validators.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	return cfg
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
