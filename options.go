package vecstore

import (
	"context"
	"time"

	"github.com/w-h-a/vecstore/index"
)

type Option func(*Options)

type Options struct {
	IndexName      string
	CacheIndexName string
	Dimensions     int
	Metric         index.Metric
	MetadataFields []string
	CacheThreshold float64
	CacheTTL       time.Duration
	SessionTTL     time.Duration
	TopK           int
	Context        context.Context
}

func WithIndexName(name string) Option {
	return func(o *Options) {
		o.IndexName = name
	}
}

func WithCacheIndexName(name string) Option {
	return func(o *Options) {
		o.CacheIndexName = name
	}
}

func WithDimensions(dims int) Option {
	return func(o *Options) {
		o.Dimensions = dims
	}
}

func WithMetric(metric index.Metric) Option {
	return func(o *Options) {
		o.Metric = metric
	}
}

func WithMetadataFields(fields ...string) Option {
	return func(o *Options) {
		o.MetadataFields = fields
	}
}

func WithCacheThreshold(threshold float64) Option {
	return func(o *Options) {
		o.CacheThreshold = threshold
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.CacheTTL = ttl
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.SessionTTL = ttl
	}
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		IndexName:      "default_vector_index",
		CacheIndexName: "semantic_cache",
		Dimensions:     768,
		Metric:         index.Cosine,
		MetadataFields: []string{"source", "filename", "chunk", "parent_id"},
		CacheThreshold: 0.95,
		TopK:           4,
		Context:        context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
