package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stateDefault, state)

	require.NoError(t, store.Set(ctx, 1, stateAwaitingPayment))
	state, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stateAwaitingPayment, state)

	require.NoError(t, store.Clear(ctx, 1))
	state, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stateDefault, state)
}

func TestParseStartParam(t *testing.T) {
	category, channel := parseStartParam("of_paywall_channel")
	assert.Equal(t, "of", category)
	assert.Equal(t, "paywall_channel", channel)

	category, channel = parseStartParam("ref_123")
	assert.Empty(t, category)
	assert.Empty(t, channel)

	category, channel = parseStartParam("")
	assert.Empty(t, category)
	assert.Empty(t, channel)
}
