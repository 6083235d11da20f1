package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/w-h-a/vecstore"
	"github.com/w-h-a/vecstore/embedder"
	openaiembedder "github.com/w-h-a/vecstore/embedder/openai"
	"github.com/w-h-a/vecstore/generator"
	openaigenerator "github.com/w-h-a/vecstore/generator/openai"
	"github.com/w-h-a/vecstore/kv"
	rediskv "github.com/w-h-a/vecstore/kv/redis"
	httpserver "github.com/w-h-a/vecstore/server/http"
)

var (
	cfg struct {
		// Server config
		Address string `help:"Address for the http server to listen on" default:":8080"`

		// Store config
		RedisLocation string `help:"Address of the backing redis instance" default:"redis://localhost:6379"`
		IndexName     string `help:"Name of the document index" default:"default_vector_index"`
		Dimensions    int    `help:"Vector dimensions of the embedding model" default:"1536"`

		// Embedder config
		EmbedderKey string `help:"API key for the embedder" default:""`
		Embedder    string `help:"Model identifier for the embedder" default:"text-embedding-3-small"`

		// Generator config
		GeneratorKey string `help:"API key for the generator" default:""`
		Generator    string `help:"Model identifier for the generator" default:"gpt-3.5-turbo"`

		// Cache config
		CacheThreshold float64 `help:"Similarity threshold for cache hits" default:"0.95"`
	}
)

func main() {
	// Parse inputs
	_ = kong.Parse(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the backing store
	store := rediskv.NewKV(
		kv.WithLocation(cfg.RedisLocation),
	)
	defer store.Close()

	// Create the toolkit
	toolkit := vecstore.New(
		store,
		openaiembedder.NewEmbedder(
			embedder.WithApiKey(cfg.EmbedderKey),
			embedder.WithModel(cfg.Embedder),
		),
		openaigenerator.NewGenerator(
			generator.WithApiKey(cfg.GeneratorKey),
			generator.WithModel(cfg.Generator),
		),
		vecstore.WithIndexName(cfg.IndexName),
		vecstore.WithDimensions(cfg.Dimensions),
		vecstore.WithCacheThreshold(cfg.CacheThreshold),
	)

	// Serve
	server := httpserver.NewServer(
		toolkit,
		httpserver.WithAddress(cfg.Address),
	)

	if err := server.Run(ctx); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
