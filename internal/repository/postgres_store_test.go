package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinsol/vault-service/internal/db"
	"skinsol/vault-service/internal/ledger"
	"skinsol/vault-service/internal/model"
	"skinsol/vault-service/internal/repository"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.ApplyMigrations(ctx, pool))

	// Truncate tables to ensure clean state
	_, err = pool.Exec(ctx, "TRUNCATE TABLE accounts, link_nonces, wallet_links")
	require.NoError(t, err)

	return pool
}

func TestPostgresStore_Vaults(t *testing.T) {
	store := repository.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()
	owner := model.Identity{1}

	require.NoError(t, store.CreateVault(ctx, model.Vault{Owner: owner}))
	err := store.CreateVault(ctx, model.Vault{Owner: owner})
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)

	err = store.RunAtomic(ctx, func(ctx context.Context) error {
		v, err := store.GetVaultForUpdate(ctx, owner)
		if err != nil {
			return err
		}
		v.TotalDeposits = 100
		v.SkinID = 2
		return store.UpdateVault(ctx, v)
	})
	require.NoError(t, err)

	v, err := store.GetVault(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, model.Vault{Owner: owner, SkinID: 2, TotalDeposits: 100}, v)

	_, err = store.GetVault(ctx, model.Identity{2})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestPostgresStore_RollbackOnError(t *testing.T) {
	store := repository.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()
	mint := model.Identity{9}

	require.NoError(t, store.CreateListing(ctx, model.Listing{Owner: model.Identity{1}, Mint: mint, DailyPriceUSD: 10, IsListed: true}))

	boom := errors.New("boom")
	err := store.RunAtomic(ctx, func(ctx context.Context) error {
		l, err := store.GetListingForUpdate(ctx, mint)
		if err != nil {
			return err
		}
		l.IsListed = false
		if err := store.UpdateListing(ctx, l); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	l, err := store.GetListing(ctx, mint)
	require.NoError(t, err)
	assert.True(t, l.IsListed)
}

func TestPostgresStore_Links(t *testing.T) {
	store := repository.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.PutNonce(ctx, "steam-1", "n1"))
	require.NoError(t, store.PutNonce(ctx, "steam-1", "n2"))
	nonce, err := store.GetNonce(ctx, "steam-1")
	require.NoError(t, err)
	assert.Equal(t, "n2", nonce)

	require.NoError(t, store.DeleteNonce(ctx, "steam-1"))
	_, err = store.GetNonce(ctx, "steam-1")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	linkedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.PutLink(ctx, model.WalletLink{SteamID: "steam-1", Pubkey: model.Identity{7}, LinkedAt: linkedAt}))
	link, err := store.GetLink(ctx, "steam-1")
	require.NoError(t, err)
	assert.Equal(t, model.Identity{7}, link.Pubkey)
	assert.True(t, linkedAt.Equal(link.LinkedAt))
}
