package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ajramos/inboxpilot/internal/config"
	"github.com/ajramos/inboxpilot/internal/kv"
	"github.com/ajramos/inboxpilot/internal/prompts"
)

// PromptServiceImpl implements PromptService. Each customized prompt is a
// string record named "prompt-<key>"; an absent or empty record means the
// default applies.
type PromptServiceImpl struct {
	records  *kv.Records
	defaults map[prompts.Key]string
	mu       sync.Mutex
}

// NewPromptService creates a new prompt service. Defaults come from the
// prompts section of cfg (template file, then inline text) and fall back to
// the built-in texts.
func NewPromptService(records *kv.Records, cfg *config.Config) *PromptServiceImpl {
	defaults := make(map[prompts.Key]string, len(prompts.Keys))
	for _, k := range prompts.Keys {
		text := prompts.Default(k)
		if cfg != nil {
			text = cfg.Prompts.Resolve(string(k), text)
		}
		defaults[k] = text
	}
	return &PromptServiceImpl{records: records, defaults: defaults}
}

func recordName(key prompts.Key) string {
	return "prompt-" + string(key)
}

func (s *PromptServiceImpl) custom(ctx context.Context, key prompts.Key) (string, bool) {
	var text string
	if !s.records.Get(ctx, recordName(key), &text) || strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// Get returns the customized text for key or its default
func (s *PromptServiceImpl) Get(ctx context.Context, key prompts.Key) string {
	if text, ok := s.custom(ctx, key); ok {
		return text
	}
	return s.defaults[key]
}

func (s *PromptServiceImpl) Save(ctx context.Context, key prompts.Key, text string) error {
	if !key.Valid() {
		return fmt.Errorf("unknown prompt key %q: %w", key, ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("prompt text cannot be empty: %w", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.records.Set(ctx, recordName(key), text); err != nil {
		return fmt.Errorf("failed to save prompt: %w", err)
	}
	return nil
}

func (s *PromptServiceImpl) Reset(ctx context.Context, key prompts.Key) error {
	if !key.Valid() {
		return fmt.Errorf("unknown prompt key %q: %w", key, ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.records.Delete(ctx, recordName(key)); err != nil {
		return fmt.Errorf("failed to reset prompt: %w", err)
	}
	return nil
}

// List returns every prompt in display order
func (s *PromptServiceImpl) List(ctx context.Context) []prompts.Prompt {
	out := make([]prompts.Prompt, 0, len(prompts.Keys))
	for _, k := range prompts.Keys {
		text, ok := s.custom(ctx, k)
		if !ok {
			text = s.defaults[k]
		}
		out = append(out, prompts.Prompt{Key: k, Text: text, IsCustom: ok})
	}
	return out
}
