package repository

import (
	"context"
	"encoding"
	"fmt"
	"maps"
	"sync"

	"skinsol/vault-service/internal/ledger"
	"skinsol/vault-service/internal/model"
)

type memState struct {
	accounts map[string][]byte
	nonces   map[string]string
	links    map[string]model.WalletLink
}

func (s *memState) clone() *memState {
	return &memState{
		accounts: maps.Clone(s.accounts),
		nonces:   maps.Clone(s.nonces),
		links:    maps.Clone(s.links),
	}
}

// MemoryStore is a process-local Store. RunAtomic calls are serialized and
// work on a copy of the state that replaces the original only on success.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memState{
			accounts: make(map[string][]byte),
			nonces:   make(map[string]string),
			links:    make(map[string]model.WalletLink),
		},
	}
}

var _ ledger.Store = (*MemoryStore)(nil)

type memTxKey struct{}

func (s *MemoryStore) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memState); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(context.WithValue(ctx, memTxKey{}, staged)); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// within runs fn against the transaction state in ctx, or in a fresh
// single-operation transaction.
func (s *MemoryStore) within(ctx context.Context, fn func(st *memState) error) error {
	if st, ok := ctx.Value(memTxKey{}).(*memState); ok {
		return fn(st)
	}
	return s.RunAtomic(ctx, func(ctx context.Context) error {
		return fn(ctx.Value(memTxKey{}).(*memState))
	})
}

func accountKey(kind string, key model.Identity) string {
	return kind + "/" + string(key[:])
}

func (s *MemoryStore) create(ctx context.Context, kind string, key model.Identity, rec encoding.BinaryMarshaler) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	return s.within(ctx, func(st *memState) error {
		k := accountKey(kind, key)
		if _, exists := st.accounts[k]; exists {
			return fmt.Errorf("%s %s: %w", kind, key, ledger.ErrAlreadyExists)
		}
		st.accounts[k] = data
		return nil
	})
}

func (s *MemoryStore) get(ctx context.Context, kind string, key model.Identity, rec encoding.BinaryUnmarshaler) error {
	return s.within(ctx, func(st *memState) error {
		data, ok := st.accounts[accountKey(kind, key)]
		if !ok {
			return fmt.Errorf("%s %s: %w", kind, key, ledger.ErrNotFound)
		}
		if err := rec.UnmarshalBinary(data); err != nil {
			return fmt.Errorf("failed to decode %s %s: %w", kind, key, err)
		}
		return nil
	})
}

func (s *MemoryStore) update(ctx context.Context, kind string, key model.Identity, rec encoding.BinaryMarshaler) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	return s.within(ctx, func(st *memState) error {
		k := accountKey(kind, key)
		if _, ok := st.accounts[k]; !ok {
			return fmt.Errorf("%s %s: %w", kind, key, ledger.ErrNotFound)
		}
		st.accounts[k] = data
		return nil
	})
}

func (s *MemoryStore) CreateVault(ctx context.Context, v model.Vault) error {
	return s.create(ctx, kindVault, v.Owner, v)
}

func (s *MemoryStore) GetVault(ctx context.Context, owner model.Identity) (model.Vault, error) {
	var v model.Vault
	err := s.get(ctx, kindVault, owner, &v)
	return v, err
}

// GetVaultForUpdate is GetVault: transactions are already serialized.
func (s *MemoryStore) GetVaultForUpdate(ctx context.Context, owner model.Identity) (model.Vault, error) {
	return s.GetVault(ctx, owner)
}

func (s *MemoryStore) UpdateVault(ctx context.Context, v model.Vault) error {
	return s.update(ctx, kindVault, v.Owner, v)
}

func (s *MemoryStore) CreateListing(ctx context.Context, l model.Listing) error {
	return s.create(ctx, kindListing, l.Mint, l)
}

func (s *MemoryStore) GetListing(ctx context.Context, mint model.Identity) (model.Listing, error) {
	var l model.Listing
	err := s.get(ctx, kindListing, mint, &l)
	return l, err
}

func (s *MemoryStore) GetListingForUpdate(ctx context.Context, mint model.Identity) (model.Listing, error) {
	return s.GetListing(ctx, mint)
}

func (s *MemoryStore) UpdateListing(ctx context.Context, l model.Listing) error {
	return s.update(ctx, kindListing, l.Mint, l)
}

func (s *MemoryStore) PutNonce(ctx context.Context, steamID, nonce string) error {
	return s.within(ctx, func(st *memState) error {
		st.nonces[steamID] = nonce
		return nil
	})
}

func (s *MemoryStore) GetNonce(ctx context.Context, steamID string) (string, error) {
	var nonce string
	err := s.within(ctx, func(st *memState) error {
		n, ok := st.nonces[steamID]
		if !ok {
			return fmt.Errorf("nonce for %s: %w", steamID, ledger.ErrNotFound)
		}
		nonce = n
		return nil
	})
	return nonce, err
}

func (s *MemoryStore) DeleteNonce(ctx context.Context, steamID string) error {
	return s.within(ctx, func(st *memState) error {
		delete(st.nonces, steamID)
		return nil
	})
}

func (s *MemoryStore) PutLink(ctx context.Context, link model.WalletLink) error {
	return s.within(ctx, func(st *memState) error {
		st.links[link.SteamID] = link
		return nil
	})
}

func (s *MemoryStore) GetLink(ctx context.Context, steamID string) (model.WalletLink, error) {
	var link model.WalletLink
	err := s.within(ctx, func(st *memState) error {
		l, ok := st.links[steamID]
		if !ok {
			return fmt.Errorf("wallet link for %s: %w", steamID, ledger.ErrNotFound)
		}
		link = l
		return nil
	})
	return link, err
}
