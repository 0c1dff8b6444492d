package dedupe

// Option applies a configuration option to a Deduper.
type Option func(*settings)

type settings struct {
	maxSize int
}

// WithMaxSize sets the maximum number of keys to remember.
// If maxSize > 0: bounded mode, oldest key evicted first.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(s *settings) {
		s.maxSize = maxSize
	}
}
