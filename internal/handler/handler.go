package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"skinsol/vault-service/internal/model"
	"skinsol/vault-service/internal/service"
	"skinsol/vault-service/internal/service/skinport"
)

type VaultManager interface {
	Initialize(ctx context.Context, owner model.Identity) (model.Vault, error)
	Get(ctx context.Context, owner model.Identity) (model.Vault, error)
	AccrueRewards(ctx context.Context, vaultRef model.Identity, amount uint64) (model.Vault, error)
	Deposit(ctx context.Context, caller, vaultRef model.Identity, amount uint64) (model.Vault, error)
	Withdraw(ctx context.Context, caller, vaultRef model.Identity, amount uint64) (model.Vault, error)
	DepositSkinAsCollateral(ctx context.Context, user model.Identity, skinID uint64) (model.Vault, error)
	Borrow(ctx context.Context, user, vaultRef model.Identity, amount uint64) (model.Vault, error)
	Repay(ctx context.Context, user, vaultRef model.Identity, amount uint64) (model.Vault, error)
	Liquidate(ctx context.Context, authority, vaultRef model.Identity) (model.Vault, error)
}

type ListingManager interface {
	ListForRent(ctx context.Context, owner, mint model.Identity, dailyPriceUSD uint64) (model.Listing, error)
	Get(ctx context.Context, mint model.Identity) (model.Listing, error)
	Rent(ctx context.Context, renter, mint model.Identity, days uint64) (model.Listing, error)
	Now() int64
}

type WalletLinker interface {
	IssueNonce(ctx context.Context, steamID string) (string, error)
	Verify(ctx context.Context, req service.VerifyRequest) (string, error)
	Lookup(ctx context.Context, steamID string) (*model.Identity, error)
}

type TokenParser interface {
	Parse(token string) (model.Identity, error)
}

type MarketQuoter interface {
	GetAllItems(ctx context.Context, appID, currency string) ([]skinport.Item, error)
	Quotes(ctx context.Context, currency string, names []string) (map[string]skinport.Item, error)
}

type Deps struct {
	Vaults   VaultManager
	Listings ListingManager
	Links    WalletLinker
	Tokens   TokenParser
	Market   MarketQuoter
	Log      *zap.Logger
}

type Handler struct {
	router *chi.Mux
	deps   Deps
	log    *zap.Logger
}

func NewHandler(deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)

	h := &Handler{
		router: router,
		deps:   deps,
		log:    log,
	}

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.router.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)

		r.Get("/pricing/skins", h.ListSkinPrices)
		r.Get("/pricing/skins/{skinID}", h.GetSkinPrice)
		r.Get("/market/items", h.GetMarketItems)
		r.Get("/market/skins", h.GetCatalogueQuotes)

		r.Get("/link/nonce", h.LinkNonce)
		r.Post("/link/verify", h.LinkVerify)
		r.Get("/link/lookup", h.LinkLookup)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticator)

			r.Route("/vaults", func(r chi.Router) {
				r.Post("/", h.InitializeVault)
				r.Post("/collateral", h.DepositSkinAsCollateral)
				r.Get("/{owner}", h.GetVault)
				r.Post("/{owner}/deposit", h.Deposit)
				r.Post("/{owner}/withdraw", h.Withdraw)
				r.Post("/{owner}/rewards", h.AccrueRewards)
				r.Post("/{owner}/borrow", h.Borrow)
				r.Post("/{owner}/repay", h.Repay)
				r.Post("/{owner}/liquidate", h.Liquidate)
			})

			r.Route("/listings", func(r chi.Router) {
				r.Post("/", h.ListForRent)
				r.Get("/{mint}", h.GetListing)
				r.Post("/{mint}/rent", h.Rent)
			})
		})
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
