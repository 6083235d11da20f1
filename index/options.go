package index

import "context"

type Option func(*Options)

type Options struct {
	Name           string
	Dimensions     int
	Metric         Metric
	Prefix         string
	MetadataFields []string
	TextField      string
	VectorField    string
	Location       string
	Context        context.Context
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

func WithDimensions(dims int) Option {
	return func(o *Options) {
		o.Dimensions = dims
	}
}

func WithMetric(metric Metric) Option {
	return func(o *Options) {
		o.Metric = metric
	}
}

// WithPrefix sets the prefix carried by every record id in this index.
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithMetadataFields declares the allowlist of metadata fields persisted
// with each record. Fields outside the list are dropped on Add.
func WithMetadataFields(fields ...string) Option {
	return func(o *Options) {
		o.MetadataFields = fields
	}
}

func WithTextField(name string) Option {
	return func(o *Options) {
		o.TextField = name
	}
}

func WithVectorField(name string) Option {
	return func(o *Options) {
		o.VectorField = name
	}
}

// WithLocation sets the backend address for providers that dial out
// themselves, e.g. postgres or qdrant.
func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Name:        "default_vector_index",
		Dimensions:  768,
		Metric:      Cosine,
		Prefix:      "doc:",
		TextField:   "text",
		VectorField: "embedding",
		Context:     context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
