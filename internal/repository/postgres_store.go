package repository

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"skinsol/vault-service/internal/ledger"
	"skinsol/vault-service/internal/model"
)

const (
	kindVault   = "vault"
	kindListing = "listing"
)

// PostgresStore keeps vaults and listings as encoded account blobs in the
// accounts table, keyed by (kind, identity).
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ ledger.Store = (*PostgresStore)(nil)

type txKey struct{}

// RunAtomic executes fn within a transaction. Calls made with the context
// passed to fn join that transaction; nested calls reuse it.
func (r *PostgresStore) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is a no-op once Commit succeeded.
	defer tx.Rollback(ctx)

	ctx = context.WithValue(ctx, txKey{}, tx)
	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PgxExecutor is an interface that matches both *pgxpool.Pool and pgx.Tx
type PgxExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PostgresStore) getExecutor(ctx context.Context) PgxExecutor {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.db
}

func (r *PostgresStore) CreateVault(ctx context.Context, v model.Vault) error {
	return r.createAccount(ctx, kindVault, v.Owner, v)
}

func (r *PostgresStore) GetVault(ctx context.Context, owner model.Identity) (model.Vault, error) {
	var v model.Vault
	err := r.getAccount(ctx, kindVault, owner, false, &v)
	return v, err
}

// GetVaultForUpdate locks the vault row for the rest of the transaction.
func (r *PostgresStore) GetVaultForUpdate(ctx context.Context, owner model.Identity) (model.Vault, error) {
	var v model.Vault
	err := r.getAccount(ctx, kindVault, owner, true, &v)
	return v, err
}

func (r *PostgresStore) UpdateVault(ctx context.Context, v model.Vault) error {
	return r.updateAccount(ctx, kindVault, v.Owner, v)
}

func (r *PostgresStore) CreateListing(ctx context.Context, l model.Listing) error {
	return r.createAccount(ctx, kindListing, l.Mint, l)
}

func (r *PostgresStore) GetListing(ctx context.Context, mint model.Identity) (model.Listing, error) {
	var l model.Listing
	err := r.getAccount(ctx, kindListing, mint, false, &l)
	return l, err
}

// GetListingForUpdate locks the listing row for the rest of the transaction.
func (r *PostgresStore) GetListingForUpdate(ctx context.Context, mint model.Identity) (model.Listing, error) {
	var l model.Listing
	err := r.getAccount(ctx, kindListing, mint, true, &l)
	return l, err
}

func (r *PostgresStore) UpdateListing(ctx context.Context, l model.Listing) error {
	return r.updateAccount(ctx, kindListing, l.Mint, l)
}

func (r *PostgresStore) createAccount(ctx context.Context, kind string, key model.Identity, rec encoding.BinaryMarshaler) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	tag, err := r.getExecutor(ctx).Exec(ctx,
		"INSERT INTO accounts (kind, key, data) VALUES ($1, $2, $3) ON CONFLICT (kind, key) DO NOTHING",
		kind, key.Bytes(), data)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, key, ledger.ErrAlreadyExists)
	}
	return nil
}

func (r *PostgresStore) getAccount(ctx context.Context, kind string, key model.Identity, forUpdate bool, rec encoding.BinaryUnmarshaler) error {
	query := "SELECT data FROM accounts WHERE kind = $1 AND key = $2"
	if forUpdate {
		query += " FOR UPDATE"
	}
	var data []byte
	err := r.getExecutor(ctx).QueryRow(ctx, query, kind, key.Bytes()).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", kind, key, ledger.ErrNotFound)
		}
		return fmt.Errorf("failed to get %s: %w", kind, err)
	}
	if err := rec.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", kind, key, err)
	}
	return nil
}

func (r *PostgresStore) updateAccount(ctx context.Context, kind string, key model.Identity, rec encoding.BinaryMarshaler) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	tag, err := r.getExecutor(ctx).Exec(ctx,
		"UPDATE accounts SET data = $3, updated_at = now() WHERE kind = $1 AND key = $2",
		kind, key.Bytes(), data)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, key, ledger.ErrNotFound)
	}
	return nil
}

// PutNonce stores the pending link nonce for steamID, replacing any previous one.
func (r *PostgresStore) PutNonce(ctx context.Context, steamID, nonce string) error {
	_, err := r.getExecutor(ctx).Exec(ctx, `
		INSERT INTO link_nonces (steam_id, nonce) VALUES ($1, $2)
		ON CONFLICT (steam_id) DO UPDATE SET nonce = EXCLUDED.nonce, created_at = now()
	`, steamID, nonce)
	if err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	return nil
}

func (r *PostgresStore) GetNonce(ctx context.Context, steamID string) (string, error) {
	var nonce string
	err := r.getExecutor(ctx).QueryRow(ctx, "SELECT nonce FROM link_nonces WHERE steam_id = $1", steamID).Scan(&nonce)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("nonce for %s: %w", steamID, ledger.ErrNotFound)
		}
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}
	return nonce, nil
}

func (r *PostgresStore) DeleteNonce(ctx context.Context, steamID string) error {
	if _, err := r.getExecutor(ctx).Exec(ctx, "DELETE FROM link_nonces WHERE steam_id = $1", steamID); err != nil {
		return fmt.Errorf("failed to delete nonce: %w", err)
	}
	return nil
}

func (r *PostgresStore) PutLink(ctx context.Context, link model.WalletLink) error {
	_, err := r.getExecutor(ctx).Exec(ctx, `
		INSERT INTO wallet_links (steam_id, pubkey, linked_at) VALUES ($1, $2, $3)
		ON CONFLICT (steam_id) DO UPDATE SET pubkey = EXCLUDED.pubkey, linked_at = EXCLUDED.linked_at
	`, link.SteamID, link.Pubkey.Bytes(), link.LinkedAt)
	if err != nil {
		return fmt.Errorf("failed to store wallet link: %w", err)
	}
	return nil
}

func (r *PostgresStore) GetLink(ctx context.Context, steamID string) (model.WalletLink, error) {
	var (
		pubkey   []byte
		linkedAt time.Time
	)
	err := r.getExecutor(ctx).QueryRow(ctx, "SELECT pubkey, linked_at FROM wallet_links WHERE steam_id = $1", steamID).Scan(&pubkey, &linkedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.WalletLink{}, fmt.Errorf("wallet link for %s: %w", steamID, ledger.ErrNotFound)
		}
		return model.WalletLink{}, fmt.Errorf("failed to get wallet link: %w", err)
	}
	id, err := model.IdentityFromBytes(pubkey)
	if err != nil {
		return model.WalletLink{}, fmt.Errorf("failed to decode wallet link: %w", err)
	}
	return model.WalletLink{SteamID: steamID, Pubkey: id, LinkedAt: linkedAt}, nil
}
