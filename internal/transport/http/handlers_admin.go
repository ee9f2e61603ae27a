package httptransport

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/MandalaChain/E-Certificate/internal/platform/middleware"
	"github.com/MandalaChain/E-Certificate/internal/relay"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

type approveCategoryRequest struct {
	Name string `json:"name"`
}

type approveCategoryResponse struct {
	Category string `json:"category"`
}

type roleRequest struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

type roleResponse struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
	Granted  bool   `json:"granted"`
}

func (h *Handler) handleApproveCategory(w http.ResponseWriter, r *http.Request) {
	var req approveCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "category name is required"))
		return
	}
	actor := middleware.GetIdentity(r.Context())
	key, err := h.categories.Approve(r.Context(), actor, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, approveCategoryResponse{Category: key.String()})
}

func (h *Handler) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, true)
}

func (h *Handler) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, false)
}

func (h *Handler) handleRoleChange(w http.ResponseWriter, r *http.Request, grant bool) {
	var req roleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	identity, role, ok := parseRoleRequest(w, req)
	if !ok {
		return
	}
	actor := middleware.GetIdentity(r.Context())
	var err error
	if grant {
		err = h.roles.Grant(r.Context(), actor, identity, role)
	} else {
		err = h.roles.Revoke(r.Context(), actor, identity, role)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	identity, err := domain.ParseIdentity(r.URL.Query().Get("identity"))
	if err != nil {
		writeError(w, err)
		return
	}
	role, err := domain.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, err)
		return
	}
	granted, err := h.roles.Has(r.Context(), identity, role)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to check role"))
		return
	}
	writeJSON(w, http.StatusOK, roleResponse{
		Identity: identity.String(),
		Role:     role.String(),
		Granted:  granted,
	})
}

func parseRoleRequest(w http.ResponseWriter, req roleRequest) (domain.Identity, domain.Role, bool) {
	identity, err := domain.ParseIdentity(req.Identity)
	if err != nil {
		writeError(w, err)
		return "", "", false
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, err)
		return "", "", false
	}
	return identity, role, true
}

type relayExecuteRequest struct {
	Identity  string `json:"identity"`
	Nonce     uint64 `json:"nonce"`
	Call      string `json:"call"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

type relayExecuteResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
}

// handleRelayExecute accepts a signed call envelope. The relay endpoint is
// deliberately outside bearer auth: anyone may submit, the signature decides
// who the caller is.
func (h *Handler) handleRelayExecute(w http.ResponseWriter, r *http.Request) {
	var req relayExecuteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	identity, err := domain.ParseIdentity(req.Identity)
	if err != nil {
		writeError(w, err)
		return
	}
	callBytes, err := base64.StdEncoding.DecodeString(req.Call)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "call must be base64"))
		return
	}
	publicKey, err := base64.StdEncoding.DecodeString(req.PublicKey)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "public_key must be base64"))
		return
	}
	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "signature must be base64"))
		return
	}

	result, err := h.relay.Execute(r.Context(), relay.SignedCall{
		Identity:  identity,
		Nonce:     req.Nonce,
		Call:      callBytes,
		PublicKey: publicKey,
		Signature: signature,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relayExecuteResponse{Result: result})
}

func (h *Handler) handleRelayNonce(w http.ResponseWriter, r *http.Request) {
	identity, err := domain.ParseIdentity(r.URL.Query().Get("identity"))
	if err != nil {
		writeError(w, err)
		return
	}
	nonce, err := h.relay.Nonce(r.Context(), identity)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to load nonce"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"nonce": nonce})
}
