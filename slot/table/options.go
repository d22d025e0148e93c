package table

import "log/slog"

// Option configures a Table.
type Option func(*config)

type config struct {
	log *slog.Logger
}

// WithLogger reports ignored removes and releases to l at debug level.
// The same logger is handed to the underlying allocator.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}
