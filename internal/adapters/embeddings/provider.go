package embeddings

import "context"

// Provider generates vector embeddings for decision memory recall.
type Provider interface {
	// GenerateEmbedding creates a vector embedding for a single text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateBatchEmbeddings embeds multiple texts in one request
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the width of vectors this provider produces
	Dimensions() int

	// Name returns the provider name (e.g. "openai")
	Name() string
}
