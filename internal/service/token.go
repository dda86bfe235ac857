package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"skinsol/vault-service/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and checks HS256 session tokens whose subject is the
// caller's base58 identity.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(id model.Identity) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Parse validates the token and returns the identity it was issued for.
func (m *TokenManager) Parse(tokenString string) (model.Identity, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return model.NullIdentity, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := model.ParseIdentity(claims.Subject)
	if err != nil {
		return model.NullIdentity, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return id, nil
}
