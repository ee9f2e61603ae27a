package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MandalaChain/E-Certificate/internal/audit"
	"github.com/MandalaChain/E-Certificate/internal/category"
	"github.com/MandalaChain/E-Certificate/internal/ledger"
	"github.com/MandalaChain/E-Certificate/internal/rbac"
	"github.com/MandalaChain/E-Certificate/pkg/digest"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

type relayFixture struct {
	svc        *Service
	ledger     *ledger.Service
	roles      *rbac.Service
	categories *category.Service
	auditStore *audit.InMemoryStore
	signer     *Signer
	admin      *Signer
}

// newRelayFixture wires the relay over the real ledger stack so relayed and
// direct invocations can be compared. The fixture's signer holds Issuer, the
// admin signer holds Administrator, and "diploma" is pre-approved.
func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	ctx := context.Background()

	f := &relayFixture{
		auditStore: audit.NewInMemoryStore(),
		signer:     newTestSigner(t),
		admin:      newTestSigner(t),
	}
	publisher := audit.NewPublisher(f.auditStore)
	f.roles = rbac.NewService(rbac.NewInMemoryStore(), publisher)
	require.NoError(t, f.roles.Seed(ctx, f.admin.Identity(), domain.RoleAdministrator))
	require.NoError(t, f.roles.Seed(ctx, f.signer.Identity(), domain.RoleIssuer))

	f.categories = category.NewService(category.NewInMemoryStore(), f.roles, publisher)
	_, err := f.categories.Approve(ctx, f.admin.Identity(), "diploma")
	require.NoError(t, err)

	f.ledger = ledger.NewService(
		ledger.NewInMemoryHashIndex(), ledger.NewInMemoryRecordStore(), ledger.NewInMemorySlotAllocator(),
		f.categories, f.roles, publisher,
	)
	f.svc = NewService(
		testDomain, Ed25519Verifier{}, NewInMemoryNonceStore(),
		NewLedgerDispatcher(f.ledger, f.categories, f.roles), publisher,
	)
	return f
}

func (f *relayFixture) signedCall(t *testing.T, signer *Signer, nonce uint64, method string, params any) SignedCall {
	t.Helper()
	call, err := EncodeCall(method, params)
	require.NoError(t, err)
	return signer.Sign(testDomain, nonce, call)
}

var (
	diploma  = digest.HashCategory("diploma")
	certHash = digest.HashFields("certificate", "c1")
)

func TestExecute_IssueMatchesDirect(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	result, err := f.svc.Execute(ctx, f.signedCall(t, f.signer, 0, "issue", map[string]string{
		"content_hash": certHash.String(),
		"category":     diploma.String(),
		"payload":      "relayed payload",
	}))
	require.NoError(t, err)

	var resp map[string]uint64
	require.NoError(t, json.Unmarshal(result, &resp))
	assert.Equal(t, uint64(1), resp["slot_id"])

	// The record looks exactly as if the signer had called directly.
	record, err := f.ledger.GetRecord(ctx, certHash, diploma)
	require.NoError(t, err)
	assert.Equal(t, f.signer.Identity(), record.OwnerIdentity)
	assert.Equal(t, "relayed payload", record.Payload)

	nonce, err := f.svc.Nonce(ctx, f.signer.Identity())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestExecute_NonceMismatchLeavesStateUntouched(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	_, err := f.svc.Execute(ctx, f.signedCall(t, f.signer, 5, "issue", map[string]string{
		"content_hash": certHash.String(),
		"category":     diploma.String(),
	}))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidNonce, dErrors.CodeOf(err))

	nonce, err := f.svc.Nonce(ctx, f.signer.Identity())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce, "failed nonce check must not advance")

	_, err = f.ledger.GetRecord(ctx, certHash, diploma)
	require.Error(t, err)
}

func TestExecute_ReplayRejected(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	signed := f.signedCall(t, f.signer, 0, "issue", map[string]string{
		"content_hash": certHash.String(),
		"category":     diploma.String(),
	})
	_, err := f.svc.Execute(ctx, signed)
	require.NoError(t, err)

	_, err = f.svc.Execute(ctx, signed)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidNonce, dErrors.CodeOf(err))
}

func TestExecute_BadSignatureRejected(t *testing.T) {
	f := newRelayFixture(t)

	signed := f.signedCall(t, f.signer, 0, "redeem", map[string]string{
		"content_hash": certHash.String(),
		"category":     diploma.String(),
	})
	signed.Signature[0] ^= 0x01

	_, err := f.svc.Execute(context.Background(), signed)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	nonce, err := f.svc.Nonce(context.Background(), f.signer.Identity())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)
}

func TestExecute_UndecodableCallConsumesNoNonce(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	signed := f.signer.Sign(testDomain, 0, []byte("not json"))
	_, err := f.svc.Execute(ctx, signed)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))

	nonce, err := f.svc.Nonce(ctx, f.signer.Identity())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)
}

func TestExecute_InnerFailureStillConsumesNonce(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	// The admin signer lacks Issuer, so the dispatched issue fails after
	// the nonce was already consumed.
	_, err := f.svc.Execute(ctx, f.signedCall(t, f.admin, 0, "issue", map[string]string{
		"content_hash": certHash.String(),
		"category":     diploma.String(),
	}))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	nonce, err := f.svc.Nonce(ctx, f.admin.Identity())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce, "a rejected inner call still invalidates its signed request")
}

func TestExecute_UnknownMethod(t *testing.T) {
	f := newRelayFixture(t)

	_, err := f.svc.Execute(context.Background(), f.signedCall(t, f.signer, 0, "mint", map[string]string{}))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))
}

func TestExecute_FullLifecycleOverRelay(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	certParams := map[string]string{
		"content_hash": certHash.String(),
		"category":     diploma.String(),
	}

	_, err := f.svc.Execute(ctx, f.signedCall(t, f.signer, 0, "issue", map[string]string{
		"content_hash": certHash.String(),
		"category":     diploma.String(),
		"payload":      "p",
		"valid_until":  time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}))
	require.NoError(t, err)

	_, err = f.svc.Execute(ctx, f.signedCall(t, f.signer, 1, "setExternalRef", map[string]string{
		"content_hash": certHash.String(),
		"category":     diploma.String(),
		"ref":          "ipfs://x",
	}))
	require.NoError(t, err)

	_, err = f.svc.Execute(ctx, f.signedCall(t, f.signer, 2, "extendDeadline", map[string]string{
		"content_hash": certHash.String(),
		"category":     diploma.String(),
		"valid_until":  time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	}))
	require.NoError(t, err)

	_, err = f.svc.Execute(ctx, f.signedCall(t, f.signer, 3, "redeem", certParams))
	require.NoError(t, err)

	record, err := f.ledger.GetRecord(ctx, certHash, diploma)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRedeemed, record.Status)
	assert.Equal(t, "ipfs://x", record.ExternalRef)
}

func TestExecute_AdminMethods(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()
	grantee := newTestSigner(t).Identity()

	result, err := f.svc.Execute(ctx, f.signedCall(t, f.admin, 0, "approveCategory", map[string]string{
		"name": "license",
	}))
	require.NoError(t, err)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(result, &resp))
	assert.Equal(t, digest.HashCategory("license").String(), resp["category"])

	_, err = f.svc.Execute(ctx, f.signedCall(t, f.admin, 1, "grantRole", map[string]string{
		"identity": grantee.String(),
		"role":     "issuer",
	}))
	require.NoError(t, err)
	require.NoError(t, f.roles.Require(ctx, grantee, domain.RoleIssuer))

	_, err = f.svc.Execute(ctx, f.signedCall(t, f.admin, 2, "revokeRole", map[string]string{
		"identity": grantee.String(),
		"role":     "issuer",
	}))
	require.NoError(t, err)
	has, err := f.roles.Has(ctx, grantee, domain.RoleIssuer)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestExecute_EmitsAuditEvent(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	_, err := f.svc.Execute(ctx, f.signedCall(t, f.admin, 0, "approveCategory", map[string]string{
		"name": "license",
	}))
	require.NoError(t, err)

	var relayEvents []audit.Event
	for _, e := range f.auditStore.All() {
		if e.Action == audit.ActionRelayExecuted {
			relayEvents = append(relayEvents, e)
		}
	}
	require.Len(t, relayEvents, 1)
	assert.Equal(t, f.admin.Identity().String(), relayEvents[0].Actor)
	assert.Equal(t, "approveCategory", relayEvents[0].Detail)
}

func TestInMemoryNonceStore_Advance(t *testing.T) {
	store := NewInMemoryNonceStore()
	ctx := context.Background()
	identity := newTestSigner(t).Identity()

	current, err := store.Current(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), current)

	require.NoError(t, store.Advance(ctx, identity, 0))
	require.Error(t, store.Advance(ctx, identity, 0), "stale expected value must conflict")
	require.NoError(t, store.Advance(ctx, identity, 1))

	current, err = store.Current(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), current)
}
