package store

import (
	"context"
	"errors"
	"log"
	"math"
	"os"
	"strings"
)

// Embedder is a pluggable text-embedding provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrNotSupported is returned when a provider yields no usable embedding.
var ErrNotSupported = errors.New("embedding not supported")

// DummyEmbedder folds bytes into a fixed-size vector. Deterministic and
// offline; used by tests and as the fallback when no provider is configured.
type DummyEmbedder struct{}

func (DummyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return DummyEmbedding(text), nil
}

// DummyEmbedding is kept exported for tests.
func DummyEmbedding(text string) []float32 {
	vec := make([]float32, 768)
	for i, ch := range []byte(text) {
		vec[i%768] += float32(ch) / 255.0
	}
	return vec
}

// AutoEmbedder chooses a provider from env:
// SYLLABUS_EMBED_PROVIDER=openai|gemini|ollama|fastembed
// SYLLABUS_EMBED_MODEL=<model string>
// If unset, it infers from available API keys/OLLAMA_HOST, else dummy.
// Provider-backed embedders are wrapped in an LRU cache.
func AutoEmbedder() Embedder {
	embedder := autoEmbedder()
	if _, ok := embedder.(DummyEmbedder); ok {
		return embedder
	}
	return NewCachingEmbedder(embedder, 0, 0)
}

func autoEmbedder() Embedder {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("SYLLABUS_EMBED_PROVIDER")))
	model := strings.TrimSpace(os.Getenv("SYLLABUS_EMBED_MODEL"))

	switch provider {
	case "openai":
		if e, err := NewOpenAIEmbedder(model); err == nil {
			return e
		}
	case "gemini", "google":
		if e, err := NewGeminiEmbedder(context.Background(), model); err == nil {
			return e
		}
	case "ollama":
		if e, err := NewOllamaEmbedder(model); err == nil {
			return e
		}
	case "fastembed":
		if e, err := NewFastEmbedder(context.Background(), nil); err == nil {
			return e
		}
	case "", "auto":
		if os.Getenv("OPENAI_API_KEY") != "" || os.Getenv("OPENAI_KEY") != "" {
			if e, err := NewOpenAIEmbedder(model); err == nil {
				return e
			}
		}
		if os.Getenv("GOOGLE_API_KEY") != "" || os.Getenv("GEMINI_API_KEY") != "" {
			if e, err := NewGeminiEmbedder(context.Background(), model); err == nil {
				return e
			}
		}
		if os.Getenv("OLLAMA_HOST") != "" {
			if e, err := NewOllamaEmbedder(model); err == nil {
				return e
			}
		}
	}

	log.Printf("no embedding provider configured, using dummy embeddings")
	return DummyEmbedder{}
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	length := len(a)
	if len(b) < length {
		length = len(b)
	}
	for i := 0; i < length; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
