package actorloop

// contextOptions holds configuration resolved at Context construction.
type contextOptions struct {
	logger  Logger
	metrics *Metrics
}

// ContextOption configures a Context at construction time.
type ContextOption interface {
	applyContext(*contextOptions)
}

type contextOptionFunc func(*contextOptions)

func (f contextOptionFunc) applyContext(o *contextOptions) { f(o) }

// WithLogger installs a Logger scoped to a single Context, overriding the
// package-level global installed via SetLogger for every actor spawned on
// that context's loop.
func WithLogger(l Logger) ContextOption {
	return contextOptionFunc(func(o *contextOptions) {
		if l != nil {
			o.logger = l
		}
	})
}

// WithMetrics installs a Metrics sink on a Context. Every actor spawned on
// the context records its reactive time, queue depth, and wake-coalescing
// counts into it. A nil Metrics (the default) makes every recording call a
// no-op.
func WithMetrics(m *Metrics) ContextOption {
	return contextOptionFunc(func(o *contextOptions) {
		o.metrics = m
	})
}

// resolveContextOptions applies options over sensible zero-value defaults,
// skipping nil options so a caller can build a slice conditionally.
func resolveContextOptions(opts []ContextOption) *contextOptions {
	cfg := &contextOptions{
		logger:  getGlobalLogger(),
		metrics: nil,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyContext(cfg)
	}
	return cfg
}
