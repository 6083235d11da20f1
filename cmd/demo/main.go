package main

import (
	"context"
	"fmt"
	"log"

	"github.com/alecthomas/kong"
	"github.com/w-h-a/vecstore"
	"github.com/w-h-a/vecstore/embedder"
	openaiembedder "github.com/w-h-a/vecstore/embedder/openai"
	"github.com/w-h-a/vecstore/generator"
	openaigenerator "github.com/w-h-a/vecstore/generator/openai"
	"github.com/w-h-a/vecstore/kv"
	rediskv "github.com/w-h-a/vecstore/kv/redis"
)

var (
	cfg struct {
		// Store config
		RedisLocation string `help:"Address of the backing redis instance" default:"redis://localhost:6379"`
		IndexName     string `help:"Name of the document index" default:"vehicle_knowledge"`
		Dimensions    int    `help:"Vector dimensions of the embedding model" default:"1536"`

		// Embedder config
		EmbedderKey string `help:"API key for the embedder" default:""`
		Embedder    string `help:"Model identifier for the embedder" default:"text-embedding-3-small"`

		// Generator config
		GeneratorKey string `help:"API key for the generator" default:""`
		Generator    string `help:"Model identifier for the generator" default:"gpt-3.5-turbo"`

		// Cache config
		CacheThreshold float64 `help:"Similarity threshold for cache hits" default:"0.9"`
	}
)

func main() {
	// Parse inputs
	_ = kong.Parse(&cfg)
	ctx := context.Background()

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

	// Ingest sample knowledge
	texts := []string{
		"The KAMAZ-5490 is a long-haul truck with a 428 hp engine and a gross weight of 44 tonnes.",
		"The GAZelle NEXT is a light commercial van rated for 1.5 tonnes of cargo.",
		"The Kirovets K-742 is a heavy agricultural tractor designed for deep tillage.",
	}

	ids, err := toolkit.RAG().AddTexts(ctx, texts, nil)
	if err != nil {
		log.Fatalf("failed to add texts: %v", err)
	}
	fmt.Printf("indexed %d documents\n", len(ids))

	// Record the conversation
	transcript := toolkit.Sessions().CreateSession(ctx, map[string]string{"channel": "demo"})

	// Answer questions through the semantic cache
	questions := []string{
		"Which truck is suited for long-haul freight?",
		"What truck should I pick for long distance hauling?", // paraphrase, should hit the cache
	}

	for _, question := range questions {
		answer, hit, err := toolkit.Cache().GetOrSet(ctx, question, func(ctx context.Context, query string) (string, error) {
			result, err := toolkit.RAG().Query(ctx, query, 0)
			if err != nil {
				return "", err
			}
			return result.Response, nil
		})
		if err != nil {
			log.Fatalf("failed to answer %q: %v", question, err)
		}

		toolkit.Sessions().AddUserMessage(ctx, transcript.SessionId, question)
		toolkit.Sessions().AddAssistantMessage(ctx, transcript.SessionId, answer)

		fmt.Printf("Q: %s\nA: %s (cache hit: %t)\n\n", question, answer, hit)
	}

	// Show the transcript
	for _, turn := range toolkit.Sessions().GetMessageHistory(ctx, transcript.SessionId, 0) {
		fmt.Printf("[%s]: %s\n", turn.Role, turn.Content)
	}
}
