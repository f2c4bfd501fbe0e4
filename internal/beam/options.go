package beam

import "go.uber.org/zap"

// Option configures a search.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger attaches a logger for per-step debug output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
