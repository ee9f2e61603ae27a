package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MandalaChain/E-Certificate/internal/audit"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

var (
	admin    = domain.Identity("0x1111111111111111111111111111111111111111")
	issuer   = domain.Identity("0x2222222222222222222222222222222222222222")
	stranger = domain.Identity("0x3333333333333333333333333333333333333333")
)

func newTestService(t *testing.T) (*Service, *audit.InMemoryStore) {
	t.Helper()
	auditStore := audit.NewInMemoryStore()
	svc := NewService(NewInMemoryStore(), audit.NewPublisher(auditStore))
	require.NoError(t, svc.Seed(context.Background(), admin, domain.RoleAdministrator))
	return svc, auditStore
}

func TestService_GrantAndRevoke(t *testing.T) {
	svc, auditStore := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, admin, issuer, domain.RoleIssuer))

	has, err := svc.Has(ctx, issuer, domain.RoleIssuer)
	require.NoError(t, err)
	assert.True(t, has)

	// Re-grant is a no-op.
	require.NoError(t, svc.Grant(ctx, admin, issuer, domain.RoleIssuer))

	require.NoError(t, svc.Revoke(ctx, admin, issuer, domain.RoleIssuer))
	has, err = svc.Has(ctx, issuer, domain.RoleIssuer)
	require.NoError(t, err)
	assert.False(t, has)

	events := auditStore.All()
	require.Len(t, events, 3)
	assert.Equal(t, audit.ActionRoleGranted, events[0].Action)
	assert.Equal(t, audit.ActionRoleRevoked, events[2].Action)
}

func TestService_GrantRequiresAdministrator(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Grant(ctx, stranger, issuer, domain.RoleIssuer)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	has, err := svc.Has(ctx, issuer, domain.RoleIssuer)
	require.NoError(t, err)
	assert.False(t, has, "failed grant must not change membership")
}

func TestService_RevokeRequiresAdministrator(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Grant(ctx, admin, issuer, domain.RoleIssuer))

	err := svc.Revoke(ctx, issuer, issuer, domain.RoleIssuer)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestService_Require(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Require(ctx, admin, domain.RoleAdministrator))

	err := svc.Require(ctx, stranger, domain.RoleAdministrator)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestService_RequireAny(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Grant(ctx, admin, issuer, domain.RoleIssuer))

	require.NoError(t, svc.RequireAny(ctx, admin, domain.RoleAdministrator, domain.RoleIssuer))
	require.NoError(t, svc.RequireAny(ctx, issuer, domain.RoleAdministrator, domain.RoleIssuer))

	err := svc.RequireAny(ctx, stranger, domain.RoleAdministrator, domain.RoleIssuer)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestService_AdministratorCanGrantAdministrator(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, admin, stranger, domain.RoleAdministrator))
	require.NoError(t, svc.Require(ctx, stranger, domain.RoleAdministrator))

	// The second administrator can govern too.
	require.NoError(t, svc.Grant(ctx, stranger, issuer, domain.RoleIssuer))
}
