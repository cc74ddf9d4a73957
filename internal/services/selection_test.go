package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestSelectionTracker_NewSelectionCancelsPrevious(t *testing.T) {
	defer goleak.VerifyNone(t)
	tr := NewSelectionTracker()

	first, releaseFirst := tr.Select(context.Background(), "a")
	defer releaseFirst()
	assert.NoError(t, first.Err())
	assert.Equal(t, "a", tr.Current())

	second, releaseSecond := tr.Select(context.Background(), "b")
	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())
	assert.Equal(t, "b", tr.Current())

	// releasing a stale selection leaves the newer one alone
	releaseFirst()
	assert.NoError(t, second.Err())

	releaseSecond()
	assert.ErrorIs(t, second.Err(), context.Canceled)
}

func TestSelectionTracker_ParentCancellation(t *testing.T) {
	tr := NewSelectionTracker()
	parent, cancel := context.WithCancel(context.Background())
	ctx, release := tr.Select(parent, "a")
	defer release()

	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
