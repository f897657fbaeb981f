package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"binder/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// ActionClaims binds an action token to one caller and one operation
type ActionClaims struct {
	jwt.RegisteredClaims
	Action string `json:"act"`
}

// ActionTokens mints and verifies single-use, per-action tokens.
// A token minted for one action is rejected for every other action and
// for every other caller. Spent token ids are remembered until they expire.
type ActionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	spent map[string]time.Time // jti -> expiry
}

// NewActionTokens creates an action token issuer
func NewActionTokens(secret string, ttl time.Duration) (*ActionTokens, error) {
	if secret == "" {
		return nil, errors.New("action token secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("action token ttl must be positive")
	}
	return &ActionTokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		spent:  make(map[string]time.Time),
	}, nil
}

// Mint issues a token for userID to perform action once
func (a *ActionTokens) Mint(userID, action string) (string, time.Time, error) {
	if userID == "" || action == "" {
		return "", time.Time{}, fmt.Errorf("mint action token: %w", domain.ErrValidation)
	}

	now := a.now()
	expires := now.Add(a.ttl)
	claims := &ActionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Action: action,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign action token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks that token was minted for userID and action and has not
// been spent, then spends it.
func (a *ActionTokens) Verify(token, userID, action string) error {
	if token == "" {
		return &domain.UnauthorizedError{Message: "missing action token"}
	}

	parsed, err := jwt.ParseWithClaims(token, &ActionClaims{},
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return &domain.UnauthorizedError{Message: "invalid or expired action token"}
	}

	claims, ok := parsed.Claims.(*ActionClaims)
	if !ok || claims.ID == "" || claims.ExpiresAt == nil {
		return &domain.UnauthorizedError{Message: "malformed action token"}
	}
	if claims.Action != action {
		return &domain.UnauthorizedError{Message: fmt.Sprintf("action token was issued for %q", claims.Action)}
	}
	if claims.Subject != userID {
		return &domain.UnauthorizedError{Message: "action token was issued to another caller"}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.pruneLocked()
	if _, used := a.spent[claims.ID]; used {
		return &domain.UnauthorizedError{Message: "action token already used"}
	}
	a.spent[claims.ID] = claims.ExpiresAt.Time
	return nil
}

// pruneLocked forgets spent tokens that would fail expiry anyway
func (a *ActionTokens) pruneLocked() {
	now := a.now()
	for id, expires := range a.spent {
		if !expires.After(now) {
			delete(a.spent, id)
		}
	}
}
