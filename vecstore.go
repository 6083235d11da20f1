package vecstore

import (
	"github.com/w-h-a/vecstore/cache"
	"github.com/w-h-a/vecstore/embedder"
	"github.com/w-h-a/vecstore/generator"
	"github.com/w-h-a/vecstore/index"
	kvindex "github.com/w-h-a/vecstore/index/kv"
	"github.com/w-h-a/vecstore/kv"
	"github.com/w-h-a/vecstore/rag"
	"github.com/w-h-a/vecstore/session"
)

// Toolkit wires a key-value store, an embedder, and a generator into a
// document index, a semantic cache, a RAG pipeline, and a session store
// sharing the same backend.
type Toolkit struct {
	kv       kv.KV
	index    index.Store
	cache    *cache.Cache
	rag      *rag.RAG
	sessions *session.Store
}

func (t *Toolkit) Index() index.Store {
	return t.index
}

func (t *Toolkit) Cache() *cache.Cache {
	return t.cache
}

func (t *Toolkit) RAG() *rag.RAG {
	return t.rag
}

func (t *Toolkit) Sessions() *session.Store {
	return t.sessions
}

func (t *Toolkit) Close() error {
	return t.kv.Close()
}

func New(store kv.KV, embed embedder.Embedder, gen generator.Generator, opts ...Option) *Toolkit {
	options := NewOptions(opts...)

	documents := kvindex.NewStore(
		store,
		index.WithName(options.IndexName),
		index.WithDimensions(options.Dimensions),
		index.WithMetric(options.Metric),
		index.WithMetadataFields(options.MetadataFields...),
	)

	entries := kvindex.NewStore(
		store,
		index.WithName(options.CacheIndexName),
		index.WithDimensions(options.Dimensions),
		index.WithMetric(options.Metric),
		index.WithPrefix("cache:"),
		index.WithMetadataFields(cache.MetadataFields...),
	)

	return &Toolkit{
		kv:    store,
		index: documents,
		cache: cache.New(
			entries,
			embed,
			cache.WithThreshold(options.CacheThreshold),
			cache.WithTTL(options.CacheTTL),
		),
		rag: rag.New(
			documents,
			embed,
			gen,
			rag.WithTopK(options.TopK),
		),
		sessions: session.NewStore(
			store,
			session.WithTTL(options.SessionTTL),
		),
	}
}
