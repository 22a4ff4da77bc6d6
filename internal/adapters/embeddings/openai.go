package embeddings

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// OpenAIProvider generates embeddings through the OpenAI embeddings API.
type OpenAIProvider struct {
	client  openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
	log     *logger.Logger
}

// NewOpenAIProvider builds a provider for the given model. An empty model
// defaults to text-embedding-3-small.
func NewOpenAIProvider(apiKey string, model string, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "openai API key is required")
	}

	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:  client,
		model:   openai.EmbeddingModel(model),
		timeout: timeout,
		log:     logger.Get().With("component", "openai_embeddings", "model", model),
	}, nil
}

// GenerateEmbedding embeds a single text.
func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "text cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	response, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: p.model,
	})
	if err != nil {
		return nil, errors.Wrap(err, "openai embeddings call failed")
	}

	if len(response.Data) == 0 {
		return nil, errors.Wrapf(errors.ErrInternal, "no embedding data returned")
	}

	result := toFloat32(response.Data[0].Embedding)

	p.log.Debugw("embedding generated",
		"text_length", len(text),
		"dims", len(result),
		"tokens", response.Usage.TotalTokens)

	return result, nil
}

// GenerateBatchEmbeddings embeds several texts in one request. The result
// preserves input order.
func (p *OpenAIProvider) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "texts cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	response, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: p.model,
	})
	if err != nil {
		return nil, errors.Wrap(err, "openai batch embeddings call failed")
	}

	if len(response.Data) != len(texts) {
		return nil, errors.Wrapf(errors.ErrInternal, "expected %d embeddings, got %d", len(texts), len(response.Data))
	}

	embeddings := make([][]float32, len(response.Data))
	for i, data := range response.Data {
		embeddings[i] = toFloat32(data.Embedding)
	}

	p.log.Debugw("batch embeddings generated",
		"batch_size", len(texts),
		"dims", len(embeddings[0]),
		"tokens", response.Usage.TotalTokens)

	return embeddings, nil
}

// Dimensions returns the vector width the configured model produces.
func (p *OpenAIProvider) Dimensions() int {
	switch p.model {
	case openai.EmbeddingModelTextEmbedding3Large:
		return 3072
	default:
		// text-embedding-3-small and ada-002 both produce 1536
		return 1536
	}
}

// Name reports the model identifier. Stored alongside each vector so that
// recall only compares embeddings produced by the same model.
func (p *OpenAIProvider) Name() string {
	return string(p.model)
}

// The API returns float64; pgvector columns store float32.
func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
