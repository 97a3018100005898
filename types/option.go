package types

import (
	"time"

	"github.com/mcuadros/go-defaults"
)

func NewEngineOptions() *EngineOptions {
	opts := &EngineOptions{}
	defaults.SetDefaults(opts)
	return opts
}

type EngineOptions struct {
	/**
	 * default: 4
	 * upper bound on nodes executing concurrently within one batch.
	 * The worker pool for a batch is sized min(batch size, this).
	 */
	MaxParallelNodes int `default:"4"`
	/**
	 * default: 60s, applied to nodes that declare no timeout of
	 * their own.
	 */
	DefaultTimeout time.Duration `default:"60s"`
	/**
	 * default: 0, applied to nodes that declare no retry budget of
	 * their own. A node is attempted MaxRetries+1 times.
	 */
	DefaultMaxRetries int `default:"0"`
	/**
	 * Backoff between attempt n and n+1 is BackoffUnit * BackoffBase^n,
	 * capped at BackoffCap. The sleep throttles only the retrying
	 * node's worker, never its batch siblings.
	 */
	BackoffBase float64       `default:"2"`
	BackoffUnit time.Duration `default:"1s"`
	BackoffCap  time.Duration `default:"30s"`
}

type EngineOption func(*EngineOptions)

func WithMaxParallelNodes(n int) EngineOption {
	return func(opts *EngineOptions) {
		opts.MaxParallelNodes = n
	}
}

func WithDefaultTimeout(d time.Duration) EngineOption {
	return func(opts *EngineOptions) {
		opts.DefaultTimeout = d
	}
}

func WithDefaultMaxRetries(n int) EngineOption {
	return func(opts *EngineOptions) {
		opts.DefaultMaxRetries = n
	}
}

func WithBackoff(base float64, unit, cap time.Duration) EngineOption {
	return func(opts *EngineOptions) {
		opts.BackoffBase = base
		opts.BackoffUnit = unit
		opts.BackoffCap = cap
	}
}
