package rag

import "context"

type Option func(*Options)

type Options struct {
	TopK     int
	Splitter *Splitter
	Context  context.Context
}

// WithTopK sets the default number of documents retrieved per query.
func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func WithSplitter(s *Splitter) Option {
	return func(o *Options) {
		o.Splitter = s
	}
}

// WithoutChunking stores texts as-is instead of splitting them first.
func WithoutChunking() Option {
	return func(o *Options) {
		o.Splitter = nil
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		TopK:     4,
		Splitter: NewSplitter(),
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
