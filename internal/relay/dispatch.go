package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MandalaChain/E-Certificate/internal/category"
	"github.com/MandalaChain/E-Certificate/internal/ledger"
	"github.com/MandalaChain/E-Certificate/internal/rbac"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

// LedgerDispatcher maps relayed methods onto the ledger services. Every
// method here behaves exactly like its direct counterpart invoked by the
// verified identity; only mutating operations are relayable.
type LedgerDispatcher struct {
	ledger     *ledger.Service
	categories *category.Service
	roles      *rbac.Service
}

func NewLedgerDispatcher(ledgerSvc *ledger.Service, categories *category.Service, roles *rbac.Service) *LedgerDispatcher {
	return &LedgerDispatcher{ledger: ledgerSvc, categories: categories, roles: roles}
}

type issueParams struct {
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
	Payload     string `json:"payload"`
	ValidUntil  string `json:"valid_until,omitempty"`
}

type certificateParams struct {
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
}

type refParams struct {
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
	Ref         string `json:"ref"`
}

type deadlineParams struct {
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
	ValidUntil  string `json:"valid_until"`
}

type categoryParams struct {
	Name string `json:"name"`
}

type roleParams struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

func (d *LedgerDispatcher) Dispatch(ctx context.Context, caller domain.Identity, call Call) ([]byte, error) {
	switch call.Method {
	case "issue":
		var p issueParams
		hash, key, err := decodeCertParams(call.Params, &p, p.fields)
		if err != nil {
			return nil, err
		}
		validUntil, err := parseDeadline(p.ValidUntil, false)
		if err != nil {
			return nil, err
		}
		slot, err := d.ledger.Issue(ctx, caller, hash, key, p.Payload, validUntil)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]uint64{"slot_id": uint64(slot)})

	case "redeem":
		var p certificateParams
		hash, key, err := decodeCertParams(call.Params, &p, p.fields)
		if err != nil {
			return nil, err
		}
		return nil, d.ledger.Redeem(ctx, caller, hash, key)

	case "setExternalRef":
		var p refParams
		hash, key, err := decodeCertParams(call.Params, &p, p.fields)
		if err != nil {
			return nil, err
		}
		return nil, d.ledger.SetExternalRef(ctx, caller, hash, key, p.Ref)

	case "extendDeadline":
		var p deadlineParams
		hash, key, err := decodeCertParams(call.Params, &p, p.fields)
		if err != nil {
			return nil, err
		}
		deadline, err := parseDeadline(p.ValidUntil, true)
		if err != nil {
			return nil, err
		}
		return nil, d.ledger.ExtendDeadline(ctx, caller, hash, key, deadline)

	case "approveCategory":
		var p categoryParams
		if err := json.Unmarshal(call.Params, &p); err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid params")
		}
		key, err := d.categories.Approve(ctx, caller, p.Name)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]string{"category": key.String()})

	case "grantRole", "revokeRole":
		var p roleParams
		if err := json.Unmarshal(call.Params, &p); err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid params")
		}
		identity, err := domain.ParseIdentity(p.Identity)
		if err != nil {
			return nil, err
		}
		role, err := domain.ParseRole(p.Role)
		if err != nil {
			return nil, err
		}
		if call.Method == "grantRole" {
			return nil, d.roles.Grant(ctx, caller, identity, role)
		}
		return nil, d.roles.Revoke(ctx, caller, identity, role)

	default:
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown method %q", call.Method)
	}
}

func (p *issueParams) fields() (string, string)       { return p.ContentHash, p.Category }
func (p *certificateParams) fields() (string, string) { return p.ContentHash, p.Category }
func (p *refParams) fields() (string, string)         { return p.ContentHash, p.Category }
func (p *deadlineParams) fields() (string, string)    { return p.ContentHash, p.Category }

// decodeCertParams unmarshals params and parses the shared hash/category
// pair every certificate method carries.
func decodeCertParams(raw json.RawMessage, target any, fields func() (string, string)) (domain.ContentHash, domain.CategoryKey, error) {
	if err := json.Unmarshal(raw, target); err != nil {
		return domain.ContentHash{}, domain.CategoryKey{}, dErrors.New(dErrors.CodeInvalidInput, "invalid params")
	}
	hashStr, catStr := fields()
	hash, err := domain.ParseContentHash(hashStr)
	if err != nil {
		return domain.ContentHash{}, domain.CategoryKey{}, err
	}
	key, err := domain.ParseCategoryKey(catStr)
	if err != nil {
		return domain.ContentHash{}, domain.CategoryKey{}, err
	}
	return hash, key, nil
}

func parseDeadline(value string, required bool) (time.Time, error) {
	if value == "" {
		if required {
			return time.Time{}, dErrors.New(dErrors.CodeInvalidDate, "deadline is required")
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidDate, "deadline must be RFC3339")
	}
	return t, nil
}
