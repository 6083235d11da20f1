package cache

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Threshold float64
	TTL       time.Duration
	Context   context.Context
}

// WithThreshold sets the minimum similarity score for a lookup to count as
// a hit. Higher trades recall for precision.
func WithThreshold(threshold float64) Option {
	return func(o *Options) {
		o.Threshold = threshold
	}
}

// WithTTL sets how long entries stay visible. Expired entries are masked at
// read time, not reclaimed.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Threshold: 0.95,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
