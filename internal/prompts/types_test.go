package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range Keys {
		assert.NotEmpty(t, Default(k), k)
		assert.True(t, k.Valid(), k)
	}
	assert.True(t, strings.HasSuffix(Default(Categorization), "Return only the category name."))
	assert.Contains(t, Default(ActionItems), "JSON array of objects")
	assert.Contains(t, Default(QuickReply), "exactly 3")
	assert.Empty(t, Default(Key("summary")))
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("action-items")
	require.NoError(t, err)
	assert.Equal(t, ActionItems, k)

	_, err = ParseKey("action_items")
	assert.Error(t, err)
}
