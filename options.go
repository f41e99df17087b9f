package hwp

import "log/slog"

type readConfig struct {
	limits      Limits
	logger      *slog.Logger
	concurrency int
	binData     bool
	viewText    bool
}

type ReadOption func(*readConfig)

func newReadConfig(opts []ReadOption) readConfig {
	cfg := readConfig{limits: defaultLimits(), concurrency: 1, binData: true, viewText: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}
	return cfg
}

// WithReadLimits sets the size and count limits. Zero fields keep their defaults.
func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithLogger sets the logger decode progress is reported to. The default
// discards everything.
func WithLogger(l *slog.Logger) ReadOption {
	return func(c *readConfig) { c.logger = l }
}

// WithSectionConcurrency decodes up to n sections of a body at once. Section
// order in the result is unaffected.
func WithSectionConcurrency(n int) ReadOption {
	return func(c *readConfig) { c.concurrency = n }
}

// WithBinData controls whether BinData attachments are extracted.
func WithBinData(v bool) ReadOption {
	return func(c *readConfig) { c.binData = v }
}

// WithViewText controls whether the ViewText body of distributed documents is
// decrypted and decoded.
func WithViewText(v bool) ReadOption {
	return func(c *readConfig) { c.viewText = v }
}
