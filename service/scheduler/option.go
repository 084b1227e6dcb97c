package scheduler

// Option represents scheduler option
type Option func(s *Service)

// WithConfig sets the scheduler configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithBigStride overrides the pass numerator
func WithBigStride(bigStride uint64) Option {
	return func(s *Service) {
		s.config.BigStride = bigStride
	}
}
