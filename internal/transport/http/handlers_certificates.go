package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MandalaChain/E-Certificate/internal/ledger"
	"github.com/MandalaChain/E-Certificate/internal/platform/middleware"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

type issueRequest struct {
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
	Payload     string `json:"payload"`
	ValidUntil  string `json:"valid_until,omitempty"`
}

type issueResponse struct {
	SlotID uint64 `json:"slot_id"`
}

type certificateRequest struct {
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
}

type refRequest struct {
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
	Ref         string `json:"ref"`
}

type deadlineRequest struct {
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
	ValidUntil  string `json:"valid_until"`
}

type transferRequest struct {
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
	To          string `json:"to"`
}

type recordResponse struct {
	SlotID      uint64 `json:"slot_id"`
	ContentHash string `json:"content_hash"`
	Category    string `json:"category"`
	Owner       string `json:"owner"`
	Payload     string `json:"payload"`
	ExternalRef string `json:"external_ref,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	ValidUntil  string `json:"valid_until,omitempty"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hash, key, ok := parseCertKeys(w, req.ContentHash, req.Category)
	if !ok {
		return
	}
	validUntil, err := parseOptionalTime(req.ValidUntil)
	if err != nil {
		writeError(w, err)
		return
	}

	caller := middleware.GetIdentity(r.Context())
	slot, err := h.ledger.Issue(r.Context(), caller, hash, key, req.Payload, validUntil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issueResponse{SlotID: uint64(slot)})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hash, key, ok := parseCertKeys(w, req.ContentHash, req.Category)
	if !ok {
		return
	}
	if err := h.ledger.Verify(r.Context(), hash, key); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hash, key, ok := parseCertKeys(w, req.ContentHash, req.Category)
	if !ok {
		return
	}
	caller := middleware.GetIdentity(r.Context())
	if err := h.ledger.Redeem(r.Context(), caller, hash, key); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": domain.StatusRedeemed.String()})
}

func (h *Handler) handleSetExternalRef(w http.ResponseWriter, r *http.Request) {
	var req refRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hash, key, ok := parseCertKeys(w, req.ContentHash, req.Category)
	if !ok {
		return
	}
	caller := middleware.GetIdentity(r.Context())
	if err := h.ledger.SetExternalRef(r.Context(), caller, hash, key, req.Ref); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExtendDeadline(w http.ResponseWriter, r *http.Request) {
	var req deadlineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hash, key, ok := parseCertKeys(w, req.ContentHash, req.Category)
	if !ok {
		return
	}
	deadline, err := time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidDate, "valid_until must be RFC3339"))
		return
	}
	caller := middleware.GetIdentity(r.Context())
	if err := h.ledger.ExtendDeadline(r.Context(), caller, hash, key, deadline); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hash, key, ok := parseCertKeys(w, req.ContentHash, req.Category)
	if !ok {
		return
	}
	to, err := domain.ParseIdentity(req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.GetIdentity(r.Context())
	if err := h.ledger.Transfer(r.Context(), caller, hash, key, to); err != nil {
		writeError(w, err)
		return
	}
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	hash, key, ok := parseCertQuery(w, r)
	if !ok {
		return
	}
	record, err := h.ledger.GetRecord(r.Context(), hash, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func (h *Handler) handleGetIssuedAt(w http.ResponseWriter, r *http.Request) {
	hash, key, ok := parseCertQuery(w, r)
	if !ok {
		return
	}
	issuedAt, err := h.ledger.GetIssuedAt(r.Context(), hash, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"issued_at": issuedAt.UTC().Format(time.RFC3339)})
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	hash, err := domain.ParseContentHash(chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.trail.List(r.Context(), hash.String())
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to load audit trail"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func parseCertKeys(w http.ResponseWriter, hashStr, categoryStr string) (domain.ContentHash, domain.CategoryKey, bool) {
	hash, err := domain.ParseContentHash(hashStr)
	if err != nil {
		writeError(w, err)
		return domain.ContentHash{}, domain.CategoryKey{}, false
	}
	key, err := domain.ParseCategoryKey(categoryStr)
	if err != nil {
		writeError(w, err)
		return domain.ContentHash{}, domain.CategoryKey{}, false
	}
	return hash, key, true
}

func parseCertQuery(w http.ResponseWriter, r *http.Request) (domain.ContentHash, domain.CategoryKey, bool) {
	return parseCertKeys(w, chi.URLParam(r, "hash"), r.URL.Query().Get("category"))
}

func parseOptionalTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidDate, "valid_until must be RFC3339")
	}
	return t, nil
}

func toRecordResponse(record ledger.Record) recordResponse {
	resp := recordResponse{
		SlotID:      uint64(record.Slot),
		ContentHash: record.ContentHash.String(),
		Category:    record.Category.String(),
		Owner:       record.OwnerIdentity.String(),
		Payload:     record.Payload,
		ExternalRef: record.ExternalRef,
		Status:      record.Status.String(),
		CreatedAt:   record.CreatedAt.UTC().Format(time.RFC3339),
	}
	if record.Expires() {
		resp.ValidUntil = record.ValidUntil.UTC().Format(time.RFC3339)
	}
	return resp
}
