package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_UniqueTags(t *testing.T) {
	ctx := context.Background()
	svc := NewTagService(newTestRecords())

	assert.Empty(t, svc.ListUniqueTags(ctx))

	require.NoError(t, svc.Save(ctx, "e1", "Work"))
	require.NoError(t, svc.Save(ctx, "e2", "Work"))
	require.NoError(t, svc.Save(ctx, "e3", "Finance"))

	assert.Equal(t, []string{"Finance", "Work"}, svc.ListUniqueTags(ctx))

	tag, ok := svc.Get(ctx, "e3")
	assert.True(t, ok)
	assert.Equal(t, "Finance", tag)
	_, ok = svc.Get(ctx, "nope")
	assert.False(t, ok)
}

func TestTagService_OverwriteDropsOldTag(t *testing.T) {
	ctx := context.Background()
	svc := NewTagService(newTestRecords())
	require.NoError(t, svc.Save(ctx, "e1", "Urgent"))
	require.NoError(t, svc.Save(ctx, "e1", "Work"))

	assert.Equal(t, []string{"Work"}, svc.ListUniqueTags(ctx))
	assert.Equal(t, map[string]string{"e1": "Work"}, svc.All(ctx))
}

func TestTagService_Validation(t *testing.T) {
	svc := NewTagService(newTestRecords())
	assert.ErrorIs(t, svc.Save(context.Background(), "e1", " "), ErrInvalidInput)
	assert.ErrorIs(t, svc.Save(context.Background(), "", "Work"), ErrInvalidInput)
}

func TestTagService_FilterByTag(t *testing.T) {
	ctx := context.Background()
	svc := NewTagService(newTestRecords())
	require.NoError(t, svc.Save(ctx, "e1", "Work"))
	require.NoError(t, svc.Save(ctx, "e2", "Finance"))

	emails := []Email{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}
	assert.Len(t, svc.FilterByTag(ctx, emails, ""), 3)
	assert.Len(t, svc.FilterByTag(ctx, emails, "all"), 3)

	got := svc.FilterByTag(ctx, emails, "Work")
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
	assert.Empty(t, svc.FilterByTag(ctx, emails, "Travel"))
}
