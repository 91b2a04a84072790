package openapi

import "log/slog"

// Config is the rendering policy. Each Parse call works on its own copy, so
// concurrent calls with different options never observe each other.
type Config struct {
	// ModelAsComponent extracts every model into Components and references it
	// with $ref. Models that reference themselves are always extracted.
	ModelAsComponent bool
	// EnumAsComponent extracts every enum into Components.
	EnumAsComponent bool
	// Logger receives debug records about component extraction. Nil discards.
	Logger *slog.Logger
}

// DefaultConfig extracts both models and enums.
func DefaultConfig() Config {
	return Config{ModelAsComponent: true, EnumAsComponent: true}
}

// Option customizes a Config.
type Option func(*Config)

// WithModelAsComponent toggles model extraction.
func WithModelAsComponent(on bool) Option {
	return func(c *Config) { c.ModelAsComponent = on }
}

// WithEnumAsComponent toggles enum extraction.
func WithEnumAsComponent(on bool) Option {
	return func(c *Config) { c.EnumAsComponent = on }
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

func newConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}
