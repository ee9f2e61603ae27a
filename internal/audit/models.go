package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names the ledger operation an audit event records.
type Action string

const (
	ActionCertificateIssued    Action = "certificate_issued"
	ActionCertificateValidated Action = "certificate_validated"
	ActionCertificateRedeemed  Action = "certificate_redeemed"
	ActionDeadlineExtended     Action = "deadline_extended"
	ActionExternalRefUpdated   Action = "external_ref_updated"
	ActionCategoryApproved     Action = "category_approved"
	ActionRoleGranted          Action = "role_granted"
	ActionRoleRevoked          Action = "role_revoked"
	ActionRelayExecuted        Action = "relay_executed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`

	// Actor is the identity the operation executed as. Empty for
	// unauthenticated reads such as verification.
	Actor string `json:"actor,omitempty"`

	// ContentHash and Category key the certificate the event refers to.
	// Category approvals carry only the category digest.
	ContentHash string `json:"content_hash,omitempty"`
	Category    string `json:"category,omitempty"`

	Slot uint64 `json:"slot,omitempty"`

	// Valid carries the verification outcome for certificate_validated.
	Valid *bool `json:"valid,omitempty"`

	// Detail holds the action-specific payload: the new deadline for
	// extensions, the role for grants, the ref for pointer updates.
	Detail string `json:"detail,omitempty"`
}

// BoolPtr is a small helper for populating Event.Valid.
func BoolPtr(v bool) *bool { return &v }
