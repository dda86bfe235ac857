package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skinsol/vault-service/internal/model"
	"skinsol/vault-service/internal/pricing"
)

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

type collateralRequest struct {
	SkinID uint64 `json:"skin_id"`
}

type vaultResponse struct {
	model.Vault
	CollateralStatus model.CollateralStatus `json:"collateral_status"`
	CollateralValue  uint64                 `json:"collateral_value"`
}

func newVaultResponse(v model.Vault) vaultResponse {
	return vaultResponse{
		Vault:            v,
		CollateralStatus: v.CollateralStatus(),
		CollateralValue:  pricing.PriceForSkin(v.SkinID),
	}
}

func (h *Handler) InitializeVault(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	v, err := h.deps.Vaults.Initialize(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newVaultResponse(v))
}

func (h *Handler) DepositSkinAsCollateral(w http.ResponseWriter, r *http.Request) {
	var req collateralRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, _ := callerFrom(r.Context())
	v, err := h.deps.Vaults.DepositSkinAsCollateral(r.Context(), caller, req.SkinID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newVaultResponse(v))
}

func (h *Handler) GetVault(w http.ResponseWriter, r *http.Request) {
	owner, ok := identityParam(w, r, "owner")
	if !ok {
		return
	}
	v, err := h.deps.Vaults.Get(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newVaultResponse(v))
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.amountOp(w, r, h.deps.Vaults.Deposit)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.amountOp(w, r, h.deps.Vaults.Withdraw)
}

func (h *Handler) Borrow(w http.ResponseWriter, r *http.Request) {
	h.amountOp(w, r, h.deps.Vaults.Borrow)
}

func (h *Handler) Repay(w http.ResponseWriter, r *http.Request) {
	h.amountOp(w, r, h.deps.Vaults.Repay)
}

func (h *Handler) AccrueRewards(w http.ResponseWriter, r *http.Request) {
	vaultRef, ok := identityParam(w, r, "owner")
	if !ok {
		return
	}
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.deps.Vaults.AccrueRewards(r.Context(), vaultRef, req.Amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newVaultResponse(v))
}

func (h *Handler) Liquidate(w http.ResponseWriter, r *http.Request) {
	vaultRef, ok := identityParam(w, r, "owner")
	if !ok {
		return
	}
	caller, _ := callerFrom(r.Context())
	v, err := h.deps.Vaults.Liquidate(r.Context(), caller, vaultRef)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newVaultResponse(v))
}

// amountOp runs a caller-scoped vault operation that takes an amount.
func (h *Handler) amountOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller, vaultRef model.Identity, amount uint64) (model.Vault, error)) {
	vaultRef, ok := identityParam(w, r, "owner")
	if !ok {
		return
	}
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, _ := callerFrom(r.Context())
	v, err := op(r.Context(), caller, vaultRef, req.Amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newVaultResponse(v))
}

func identityParam(w http.ResponseWriter, r *http.Request, name string) (model.Identity, bool) {
	id, err := model.ParseIdentity(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return model.Identity{}, false
	}
	return id, true
}
