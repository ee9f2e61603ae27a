//go:build integration

package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
	"github.com/MandalaChain/E-Certificate/pkg/testutil/containers"
)

func TestRedisNonceStore_Integration(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	store := NewRedisNonceStore(rc.Client)
	identity := newTestSigner(t).Identity()

	current, err := store.Current(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), current, "missing key counts as nonce 0")

	require.NoError(t, store.Advance(ctx, identity, 0))
	assert.ErrorIs(t, store.Advance(ctx, identity, 0), sentinel.ErrConflict)
	require.NoError(t, store.Advance(ctx, identity, 1))

	current, err = store.Current(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), current)

	// Identities have independent nonce spaces.
	other := newTestSigner(t).Identity()
	current, err = store.Current(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), current)
}
