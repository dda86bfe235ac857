package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"skinsol/vault-service/internal/pricing"
	"skinsol/vault-service/internal/service/skinport"
)

func (h *Handler) ListSkinPrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pricing.Catalogue())
}

func (h *Handler) GetSkinPrice(w http.ResponseWriter, r *http.Request) {
	skinID, err := strconv.ParseUint(chi.URLParam(r, "skinID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "skin id must be an unsigned integer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{
		"skin_id": skinID,
		"price":   pricing.PriceForSkin(skinID),
	})
}

func (h *Handler) GetMarketItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.Market.GetAllItems(r.Context(), r.URL.Query().Get("app_id"), r.URL.Query().Get("currency"))
	if err != nil {
		h.writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type catalogueQuote struct {
	pricing.Skin
	MarketMinPrice *decimal.Decimal `json:"market_min_price"`
	MarketQuantity int              `json:"market_quantity"`
}

// GetCatalogueQuotes pairs each table skin with its current Skinport reference price.
func (h *Handler) GetCatalogueQuotes(w http.ResponseWriter, r *http.Request) {
	skins := pricing.Catalogue()
	names := make([]string, 0, len(skins))
	for _, s := range skins {
		names = append(names, s.MarketHashName)
	}

	quotes, err := h.deps.Market.Quotes(r.Context(), r.URL.Query().Get("currency"), names)
	if err != nil {
		h.writeMarketError(w, err)
		return
	}

	out := make([]catalogueQuote, 0, len(skins))
	for _, s := range skins {
		q := catalogueQuote{Skin: s}
		if item, ok := quotes[s.MarketHashName]; ok {
			q.MarketMinPrice = item.MinPrice()
			q.MarketQuantity = item.Quantity
		}
		out = append(out, q)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) writeMarketError(w http.ResponseWriter, err error) {
	h.log.Warn("skinport request failed", zap.Error(err))

	var apiErr *skinport.ErrorResponse
	if errors.As(err, &apiErr) {
		writeJSON(w, http.StatusBadGateway, apiErr)
		return
	}
	writeError(w, http.StatusBadGateway, "MarketUnavailable", err.Error())
}
