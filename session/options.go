package session

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Prefix  string
	TTL     time.Duration
	Context context.Context
}

func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithTTL makes stored sessions expire at the storage layer; each save
// resets the clock.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Prefix:  "session:",
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
