package logger

import "go.uber.org/zap"

// Option modifies a logger Config before it is built
type Option func(*Config)

func WithLevel(level string) Option {
	return func(c *Config) { c.Level = level }
}

func WithFormat(format string) Option {
	return func(c *Config) { c.Format = format }
}

func WithOutput(output string) Option {
	return func(c *Config) { c.Output = output }
}

// WithFile enables rotation into filename using the default size and age limits
func WithFile(filename string) Option {
	return func(c *Config) { c.File.Filename = filename }
}

func WithCaller(enabled bool) Option {
	return func(c *Config) { c.EnableCaller = enabled }
}

func WithStacktrace(enabled bool) Option {
	return func(c *Config) { c.EnableStacktrace = enabled }
}

// NewWithOptions builds a logger from DefaultConfig plus opts
func NewWithOptions(opts ...Option) (*Logger, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return New(cfg)
}

// Development returns a colored console logger at debug level
func Development() (*Logger, error) {
	return NewWithOptions(
		WithLevel("debug"),
		WithFormat("console"),
		WithOutput("console"),
	)
}

// Nop returns a logger that discards everything; used by tests and optional collaborators
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), config: DefaultConfig()}
}
