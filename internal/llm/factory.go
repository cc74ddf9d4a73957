package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Options carries the provider settings taken from config
type Options struct {
	Provider string
	Model    string
	Endpoint string
	Region   string
	APIKey   string
	Timeout  time.Duration
}

// NewProviderFromConfig creates a Provider from config fields.
// A nil provider with a nil error means the provider is not usable because
// its credential is missing; callers treat that as "AI unavailable".
func NewProviderFromConfig(ctx context.Context, o Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(o.Provider)) {
	case "gemini", "":
		if strings.TrimSpace(o.APIKey) == "" {
			return nil, nil
		}
		g, err := NewGemini(ctx, o.APIKey, o.Model, "", o.Timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "ollama":
		return NewClient(o.Endpoint, o.Model, o.Timeout), nil
	case "bedrock":
		b, err := NewBedrock(ctx, o.Region, o.Model, o.Timeout)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", o.Provider)
	}
}
