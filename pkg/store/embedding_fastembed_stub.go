//go:build !fastembed

package store

import (
	"context"
	"fmt"
)

type FastEmbedOptions struct {
	CacheDir  string
	MaxLength int
	BatchSize int
}

type FastEmbedder struct{}

func NewFastEmbedder(ctx context.Context, opt *FastEmbedOptions) (Embedder, error) {
	return nil, fmt.Errorf("fastembed support not included; rebuild with -tags fastembed")
}

func (FastEmbedder) Close() error { return nil }

func (FastEmbedder) EmbedPassages(ctx context.Context, docs []string) ([][]float32, error) {
	return nil, fmt.Errorf("fastembed support not included")
}

func (FastEmbedder) Embed(ctx context.Context, q string) ([]float32, error) {
	return nil, fmt.Errorf("fastembed support not included")
}
