package service

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"skinsol/vault-service/internal/ledger"
	"skinsol/vault-service/internal/model"
)

var (
	ErrMissingFields    = errors.New("missing fields")
	ErrNonceMismatch    = errors.New("nonce mismatch")
	ErrInvalidSignature = errors.New("invalid signature")
)

// LinkStore persists pending nonces and established Steam → wallet links.
type LinkStore interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
	PutNonce(ctx context.Context, steamID, nonce string) error
	GetNonce(ctx context.Context, steamID string) (string, error)
	DeleteNonce(ctx context.Context, steamID string) error
	PutLink(ctx context.Context, link model.WalletLink) error
	GetLink(ctx context.Context, steamID string) (model.WalletLink, error)
}

// LinkService proves wallet ownership for a Steam account and hands out
// session tokens for the proven identity.
type LinkService struct {
	store  LinkStore
	tokens *TokenManager
	now    func() time.Time
	log    *zap.Logger
}

func NewLinkService(store LinkStore, tokens *TokenManager, log *zap.Logger) *LinkService {
	return &LinkService{store: store, tokens: tokens, now: time.Now, log: log.Named("link")}
}

// IssueNonce creates a fresh challenge for steamID, replacing any pending one.
func (s *LinkService) IssueNonce(ctx context.Context, steamID string) (string, error) {
	if steamID == "" {
		return "", fmt.Errorf("%w: steam_id", ErrMissingFields)
	}
	nonce := uuid.NewString()
	if err := s.store.PutNonce(ctx, steamID, nonce); err != nil {
		return "", err
	}
	return nonce, nil
}

type VerifyRequest struct {
	SteamID   string `json:"steam_id"`
	Pubkey    string `json:"pubkey"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
}

// Verify checks that pubkey signed the pending nonce, records the link and
// returns a session token for pubkey.
func (s *LinkService) Verify(ctx context.Context, req VerifyRequest) (string, error) {
	if req.SteamID == "" || req.Pubkey == "" || req.Signature == "" || req.Nonce == "" {
		return "", ErrMissingFields
	}
	pubkey, err := model.ParseIdentity(req.Pubkey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	sig, err := decodeSignature(req.Signature)
	if err != nil {
		return "", err
	}

	err = s.store.RunAtomic(ctx, func(ctx context.Context) error {
		stored, err := s.store.GetNonce(ctx, req.SteamID)
		if errors.Is(err, ledger.ErrNotFound) {
			return ErrNonceMismatch
		}
		if err != nil {
			return err
		}
		if stored != req.Nonce {
			return ErrNonceMismatch
		}
		if !ed25519.Verify(ed25519.PublicKey(pubkey.Bytes()), []byte(req.Nonce), sig) {
			return ErrInvalidSignature
		}
		if err := s.store.PutLink(ctx, model.WalletLink{SteamID: req.SteamID, Pubkey: pubkey, LinkedAt: s.now().UTC()}); err != nil {
			return err
		}
		return s.store.DeleteNonce(ctx, req.SteamID)
	})
	if err != nil {
		s.log.Info("link rejected", zap.String("steam_id", req.SteamID), zap.Error(err))
		return "", err
	}

	s.log.Info("wallet linked", zap.String("steam_id", req.SteamID), zap.Stringer("pubkey", pubkey))
	return s.tokens.Issue(pubkey)
}

// Lookup returns the wallet linked to steamID, or nil.
func (s *LinkService) Lookup(ctx context.Context, steamID string) (*model.Identity, error) {
	if steamID == "" {
		return nil, fmt.Errorf("%w: steam_id", ErrMissingFields)
	}
	link, err := s.store.GetLink(ctx, steamID)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link.Pubkey, nil
}

// decodeSignature accepts a 64-byte ed25519 signature in base64 or base58.
func decodeSignature(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if raw, err := base64.StdEncoding.DecodeString(s); err == nil && len(raw) == ed25519.SignatureSize {
		return raw, nil
	}
	if raw, err := base58.Decode(s); err == nil && len(raw) == ed25519.SignatureSize {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: signature must be %d bytes in base64 or base58", ErrInvalidSignature, ed25519.SignatureSize)
}
