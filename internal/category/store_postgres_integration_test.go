//go:build integration

package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MandalaChain/E-Certificate/pkg/digest"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
	"github.com/MandalaChain/E-Certificate/pkg/testutil/containers"
)

func TestPostgresStore_Integration(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store := NewPostgresStore(pg.DB)
	require.NoError(t, store.EnsureSchema(ctx))

	key := digest.HashCategory("diploma")

	approved, err := store.IsApproved(ctx, key)
	require.NoError(t, err)
	assert.False(t, approved)

	require.NoError(t, store.Approve(ctx, key))
	assert.ErrorIs(t, store.Approve(ctx, key), sentinel.ErrConflict)

	approved, err = store.IsApproved(ctx, key)
	require.NoError(t, err)
	assert.True(t, approved)
}
