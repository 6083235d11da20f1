package generator

import "context"

type Option func(*Options)

type Options struct {
	ApiKey       string
	Model        string
	PromptPrefix string
	MaxTokens    int
	Context      context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithPromptPrefix(prefix string) Option {
	return func(o *Options) {
		o.PromptPrefix = prefix
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// Prompt applies the configured prefix, when set, to a prompt. Providers
// call this so prefix handling stays identical across backends.
func (o Options) Prompt(prompt string) string {
	if len(o.PromptPrefix) == 0 {
		return prompt
	}
	return o.PromptPrefix + "\n" + prompt
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxTokens: 1024,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
