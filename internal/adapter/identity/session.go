package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/port"
)

var ErrInvalidSession = errors.New("invalid or expired session")

type sessionClaims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues signed session tokens. Each token id is also kept in
// the session store so that logging out revokes it.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	store  port.CacheRepository
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, store port.CacheRepository) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		now:    time.Now,
	}
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *SessionManager) Issue(ctx context.Context, id domain.Identity) (string, error) {
	now := m.now()
	claims := sessionClaims{
		Name:    id.DisplayName,
		Email:   id.Email,
		Picture: id.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	if err := m.store.SaveSession(ctx, claims.ID, id.UID, m.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return signed, nil
}

func (m *SessionManager) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Identity returns who the token was issued to, if it is still active.
func (m *SessionManager) Identity(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := m.parse(token)
	if err != nil {
		return domain.Identity{}, err
	}

	active, err := m.store.SessionActive(ctx, claims.ID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("check session: %w", err)
	}
	if !active {
		return domain.Identity{}, ErrInvalidSession
	}

	return domain.Identity{
		UID:         claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		PhotoURL:    claims.Picture,
	}, nil
}

func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}
	return m.store.DeleteSession(ctx, claims.ID)
}
