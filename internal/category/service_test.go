package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MandalaChain/E-Certificate/internal/audit"
	"github.com/MandalaChain/E-Certificate/internal/rbac"
	"github.com/MandalaChain/E-Certificate/pkg/digest"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

var (
	admin    = domain.Identity("0x1111111111111111111111111111111111111111")
	stranger = domain.Identity("0x2222222222222222222222222222222222222222")
)

func newTestService(t *testing.T) (*Service, *audit.InMemoryStore) {
	t.Helper()
	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditStore)
	roles := rbac.NewService(rbac.NewInMemoryStore(), publisher)
	require.NoError(t, roles.Seed(context.Background(), admin, domain.RoleAdministrator))
	return NewService(NewInMemoryStore(), roles, publisher), auditStore
}

func TestService_Approve(t *testing.T) {
	svc, auditStore := newTestService(t)
	ctx := context.Background()

	key, err := svc.Approve(ctx, admin, "diploma")
	require.NoError(t, err)
	assert.Equal(t, digest.HashCategory("diploma"), key)

	approved, err := svc.IsApproved(ctx, key)
	require.NoError(t, err)
	assert.True(t, approved)

	events := auditStore.All()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionCategoryApproved, events[0].Action)
	assert.Equal(t, key.String(), events[0].Category, "event keyed by digest, not raw name")
	assert.Equal(t, "diploma", events[0].Detail)
}

func TestService_ApproveTwiceFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Approve(ctx, admin, "diploma")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, admin, "diploma")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeCategoryAlreadyApproved, dErrors.CodeOf(err))
}

func TestService_ApproveRequiresAdministrator(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Approve(ctx, stranger, "diploma")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	approved, err := svc.IsApproved(ctx, digest.HashCategory("diploma"))
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestService_ApproveEmptyNameFails(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Approve(context.Background(), admin, "")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))
}

func TestService_IsApprovedUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	approved, err := svc.IsApproved(context.Background(), digest.HashCategory("unknown"))
	require.NoError(t, err)
	assert.False(t, approved)
}
