// Package embedding provides text embedding for the recommendation core.
package embedding

import (
	"context"
	"fmt"
)

// Embedder produces unit-length vector embeddings for text. Implementations
// guarantee the returned vectors are L2-normalized.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// New creates an embedder for the given backend.
// Supported backends: "onnx" (requires CGO, the onnxruntime library, and a
// MiniLM-style model file) and "mock" (deterministic, no model).
func New(backend, modelPath string, dimensions, maxTokens, cacheSize int) (Embedder, error) {
	switch backend {
	case "onnx", "":
		return NewONNXEmbedder(modelPath, dimensions, maxTokens, cacheSize)
	case "mock":
		return NewMockEmbedder(dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend: %s (supported: onnx, mock)", backend)
	}
}
