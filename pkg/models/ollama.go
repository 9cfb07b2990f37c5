package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

type OllamaLLM struct {
	Client       *ollama.Client
	Model        string
	SystemPrompt string
}

func NewOllamaLLM(model string) (*OllamaLLM, error) {
	if model == "" {
		model = "llama3.2"
	}
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	c := ollama.NewClient(u, httpClient)
	return &OllamaLLM{Client: c, Model: model, SystemPrompt: defaultSystemPrompt}, nil
}

func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (any, error) {
	var text strings.Builder

	req := &ollama.GenerateRequest{
		Model:  o.Model,
		System: o.SystemPrompt,
		Prompt: prompt,
	}

	if err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return text.String(), nil
}
