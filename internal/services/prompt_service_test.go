package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ajramos/inboxpilot/internal/config"
	"github.com/ajramos/inboxpilot/internal/kv"
	"github.com/ajramos/inboxpilot/internal/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptService_DefaultsAndOverride(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryBackend()
	svc := NewPromptService(kv.NewRecords(backend, "", nil), nil)

	assert.Equal(t, prompts.Default(prompts.Categorization), svc.Get(ctx, prompts.Categorization))

	require.NoError(t, svc.Save(ctx, prompts.Categorization, "Label it: Work or Home."))
	assert.Equal(t, "Label it: Work or Home.", svc.Get(ctx, prompts.Categorization))

	raw, ok, err := backend.Load(ctx, "email-ext-prompt-categorization")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"Label it: Work or Home."`, string(raw))

	require.NoError(t, svc.Reset(ctx, prompts.Categorization))
	assert.Equal(t, prompts.Default(prompts.Categorization), svc.Get(ctx, prompts.Categorization))
}

func TestPromptService_List(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(newTestRecords(), nil)
	require.NoError(t, svc.Save(ctx, prompts.QuickReply, "Two replies please."))

	list := svc.List(ctx)
	require.Len(t, list, 4)
	for _, p := range list {
		if p.Key == prompts.QuickReply {
			assert.True(t, p.IsCustom)
			assert.Equal(t, "Two replies please.", p.Text)
		} else {
			assert.False(t, p.IsCustom)
			assert.Equal(t, prompts.Default(p.Key), p.Text)
		}
	}
}

func TestPromptService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(newTestRecords(), nil)

	assert.ErrorIs(t, svc.Save(ctx, prompts.Key("summary"), "x"), ErrInvalidInput)
	assert.ErrorIs(t, svc.Save(ctx, prompts.AutoReply, "   "), ErrInvalidInput)
	assert.ErrorIs(t, svc.Reset(ctx, prompts.Key("summary")), ErrInvalidInput)
}

func TestPromptService_ConfigDefaults(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tpl := filepath.Join(dir, "actions.md")
	require.NoError(t, os.WriteFile(tpl, []byte("  From file.  \n"), 0o600))

	cfg := config.DefaultConfig()
	cfg.Prompts.ActionItemsTemplate = tpl
	cfg.Prompts.ActionItems = "inline loses to file"
	cfg.Prompts.AutoReply = "Inline reply prompt."

	svc := NewPromptService(newTestRecords(), cfg)
	assert.Equal(t, "From file.", svc.Get(ctx, prompts.ActionItems))
	assert.Equal(t, "Inline reply prompt.", svc.Get(ctx, prompts.AutoReply))
	assert.Equal(t, prompts.Default(prompts.QuickReply), svc.Get(ctx, prompts.QuickReply))

	// a stored custom prompt still wins over configured defaults
	require.NoError(t, svc.Save(ctx, prompts.AutoReply, "Stored."))
	assert.Equal(t, "Stored.", svc.Get(ctx, prompts.AutoReply))
}

func TestPromptService_EmptyStoredTextMeansDefault(t *testing.T) {
	ctx := context.Background()
	records := newTestRecords()
	require.NoError(t, records.Set(ctx, "prompt-auto-reply", ""))

	svc := NewPromptService(records, nil)
	assert.Equal(t, prompts.Default(prompts.AutoReply), svc.Get(ctx, prompts.AutoReply))
}
