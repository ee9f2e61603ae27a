//go:build integration

package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
	"github.com/MandalaChain/E-Certificate/pkg/testutil/containers"
)

func TestPostgresStore_Integration(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store := NewPostgresStore(pg.DB)
	require.NoError(t, store.EnsureSchema(ctx))

	identity := domain.Identity("0x1111111111111111111111111111111111111111")

	has, err := store.Has(ctx, identity, domain.RoleIssuer)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Grant(ctx, identity, domain.RoleIssuer))
	require.NoError(t, store.Grant(ctx, identity, domain.RoleIssuer), "re-grant is a no-op")

	has, err = store.Has(ctx, identity, domain.RoleIssuer)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = store.Has(ctx, identity, domain.RoleAdministrator)
	require.NoError(t, err)
	assert.False(t, has, "roles are independent")

	require.NoError(t, store.Revoke(ctx, identity, domain.RoleIssuer))
	has, err = store.Has(ctx, identity, domain.RoleIssuer)
	require.NoError(t, err)
	assert.False(t, has)
}
