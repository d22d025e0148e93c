package alloc

import "log/slog"

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger reports ignored releases to l at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.log = l
		}
	}
}
