package handler

import (
	"net/http"

	"skinsol/vault-service/internal/model"
	"skinsol/vault-service/internal/service"
)

func (h *Handler) LinkNonce(w http.ResponseWriter, r *http.Request) {
	nonce, err := h.deps.Links.IssueNonce(r.Context(), r.URL.Query().Get("steam_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"nonce": nonce})
}

func (h *Handler) LinkVerify(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	token, err := h.deps.Links.Verify(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "token": token})
}

func (h *Handler) LinkLookup(w http.ResponseWriter, r *http.Request) {
	pubkey, err := h.deps.Links.Lookup(r.Context(), r.URL.Query().Get("steam_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Pubkey *model.Identity `json:"pubkey"`
	}{Pubkey: pubkey})
}
