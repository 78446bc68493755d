package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

const tokenTTL = 30 * 24 * time.Hour

// Repository stores token hashes; tokens themselves never touch storage.
type Repository interface {
	Save(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) error
	Lookup(ctx context.Context, tokenHash string) (int64, error)
	Revoke(ctx context.Context, tokenHash string) error
}

type Servicer interface {
	Create(ctx context.Context, userID int64) (string, error)
	Validate(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) Servicer {
	return &Service{
		repo: repo,
		log:  log.With("component", "session_service"),
	}
}

// Create mints a bearer token for the extension or CLI client and stores
// its sha256 hash with a TTL.
func (s *Service) Create(ctx context.Context, userID int64) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(raw)
	if err := s.repo.Save(ctx, hashToken(token), userID, time.Now().Add(tokenTTL)); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

func (s *Service) Validate(ctx context.Context, token string) (int64, error) {
	return s.repo.Lookup(ctx, hashToken(token))
}

func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.repo.Revoke(ctx, hashToken(token))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
