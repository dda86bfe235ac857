package handler

import (
	"net/http"

	"skinsol/vault-service/internal/model"
)

type listRequest struct {
	Mint          model.Identity `json:"mint"`
	DailyPriceUSD uint64         `json:"daily_price_usd"`
}

type rentRequest struct {
	Days uint64 `json:"days"`
}

type listingResponse struct {
	model.Listing
	Status model.ListingStatus `json:"status"`
}

func (h *Handler) ListForRent(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Mint.IsNull() {
		writeError(w, http.StatusBadRequest, "BadRequest", "mint is required")
		return
	}
	caller, _ := callerFrom(r.Context())
	l, err := h.deps.Listings.ListForRent(r.Context(), caller, req.Mint, req.DailyPriceUSD)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listingResponse{Listing: l, Status: l.Status(h.deps.Listings.Now())})
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	mint, ok := identityParam(w, r, "mint")
	if !ok {
		return
	}
	l, err := h.deps.Listings.Get(r.Context(), mint)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingResponse{Listing: l, Status: l.Status(h.deps.Listings.Now())})
}

func (h *Handler) Rent(w http.ResponseWriter, r *http.Request) {
	mint, ok := identityParam(w, r, "mint")
	if !ok {
		return
	}
	var req rentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, _ := callerFrom(r.Context())
	l, err := h.deps.Listings.Rent(r.Context(), caller, mint, req.Days)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingResponse{Listing: l, Status: l.Status(h.deps.Listings.Now())})
}
