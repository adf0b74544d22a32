package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultTimeout = 60 * time.Second
)

// SamplingConfig controls generation. TopK is ignored by providers that
// do not support it.
type SamplingConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// TextGenerator produces a completion for a single prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, sampling SamplingConfig) (string, error)
}

// VisionDescriber answers a prompt about one image.
type VisionDescriber interface {
	DescribeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

type Config struct {
	Provider    string
	APIKey      string
	Model       string
	VisionModel string
	BaseURL     string
	Timeout     time.Duration
}

// Models bundles the clients selected for a provider.
type Models struct {
	Text   TextGenerator
	Vision VisionDescriber
}

// New builds the text and vision clients for cfg.Provider.
func New(cfg Config) (Models, error) {
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		client, err := NewGeminiClient(cfg)
		if err != nil {
			return Models{}, err
		}
		return Models{Text: client, Vision: client}, nil
	case ProviderOpenAI:
		client, err := NewOpenAIClient(cfg)
		if err != nil {
			return Models{}, err
		}
		return Models{Text: client, Vision: client}, nil
	default:
		return Models{}, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
