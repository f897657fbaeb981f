package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"binder/internal/domain"
	"binder/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier verifies HS256 caller tokens signed with a shared secret.
// Used for local development, binderctl and tests.
type HMACVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewHMACVerifier creates a shared-secret verifier
func NewHMACVerifier(secret string, logger *slog.Logger) (Verifier, error) {
	if secret == "" {
		return nil, errors.New("HMAC secret cannot be empty")
	}
	return &HMACVerifier{secret: []byte(secret), logger: logger}, nil
}

// VerifyToken validates an HS256 token and extracts caller claims
func (v *HMACVerifier) VerifyToken(tokenString string) (*models.CallerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.CallerClaims{},
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}
	return checkCallerClaims(token, v.logger)
}

// Close releases nothing
func (v *HMACVerifier) Close() error {
	return nil
}

// IssueCallerToken signs an HS256 caller token carrying the given capabilities.
// It is the counterpart of HMACVerifier.
func IssueCallerToken(secret, userID, email string, capabilities []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("HMAC secret cannot be empty")
	}

	caps := make([]any, len(capabilities))
	for i, c := range capabilities {
		caps[i] = c
	}

	now := time.Now()
	claims := &models.CallerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:       email,
		Role:        "authenticated",
		AppMetadata: map[string]any{"capabilities": caps},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign caller token: %w", err)
	}
	return signed, nil
}
