package discovery

import (
	"log/slog"
	"time"
)

// Option configures a Service.
type Option func(s *Service)

// WithPageSize sets the number of items per page. Non-positive sizes are
// ignored.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithScope selects the stores the feed covers.
func WithScope(scope Scope) Option {
	return func(s *Service) {
		s.scope = scope
	}
}

// WithCache caches rendered pages for ttl.
func WithCache(cache PageCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
