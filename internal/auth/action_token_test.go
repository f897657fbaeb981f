package auth

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"binder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens(t *testing.T, now *time.Time) *ActionTokens {
	t.Helper()
	tokens, err := NewActionTokens("test-secret", time.Hour)
	require.NoError(t, err)
	tokens.now = func() time.Time { return *now }
	return tokens
}

func TestActionTokenScoping(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, &now)

	tests := []struct {
		name      string
		mintUser  string
		mintFor   string
		useUser   string
		useFor    string
		wantError bool
	}{
		{"same action and caller", "u1", "delete_folder", "u1", "delete_folder", false},
		{"other action", "u1", "rename_folder", "u1", "delete_folder", true},
		{"other caller", "u1", "delete_folder", "u2", "delete_folder", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := tokens.Mint(tt.mintUser, tt.mintFor)
			require.NoError(t, err)

			err = tokens.Verify(token, tt.useUser, tt.useFor)
			if tt.wantError {
				assert.True(t, errors.Is(err, domain.ErrUnauthorized), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestActionTokenRejectsBadInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, &now)

	assert.Error(t, tokens.Verify("", "u1", "create_folder"))
	assert.Error(t, tokens.Verify("not-a-jwt", "u1", "create_folder"))

	other, err := NewActionTokens("other-secret", time.Hour)
	require.NoError(t, err)
	forged, _, err := other.Mint("u1", "create_folder")
	require.NoError(t, err)
	assert.Error(t, tokens.Verify(forged, "u1", "create_folder"))

	_, _, err = tokens.Mint("", "create_folder")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestActionTokenSingleUse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, &now)

	token, _, err := tokens.Mint("u1", "trash_record")
	require.NoError(t, err)

	require.NoError(t, tokens.Verify(token, "u1", "trash_record"))
	err = tokens.Verify(token, "u1", "trash_record")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestActionTokenConcurrentReplay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, &now)

	token, _, err := tokens.Mint("u1", "delete_folder")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tokens.Verify(token, "u1", "delete_folder") == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
}

func TestActionTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, &now)

	token, expires, err := tokens.Mint("u1", "save_order")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	now = now.Add(2 * time.Hour)
	assert.Error(t, tokens.Verify(token, "u1", "save_order"))
}

func TestActionTokenPrunesSpent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, &now)

	token, _, err := tokens.Mint("u1", "save_order")
	require.NoError(t, err)
	require.NoError(t, tokens.Verify(token, "u1", "save_order"))
	assert.Len(t, tokens.spent, 1)

	now = now.Add(2 * time.Hour)
	fresh, _, err := tokens.Mint("u1", "save_order")
	require.NoError(t, err)
	require.NoError(t, tokens.Verify(fresh, "u1", "save_order"))
	assert.Len(t, tokens.spent, 1)
}

func TestHMACVerifier(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier, err := NewHMACVerifier("caller-secret", logger)
	require.NoError(t, err)

	token, err := IssueCallerToken("caller-secret", "u1", "admin@example.com", []string{"gform_full_access"}, time.Hour)
	require.NoError(t, err)

	claims, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.GetUserID())
	assert.Equal(t, []string{"gform_full_access"}, claims.GetCapabilities())

	wrong, err := IssueCallerToken("other-secret", "u1", "", nil, time.Hour)
	require.NoError(t, err)
	_, err = verifier.VerifyToken(wrong)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	anonymous, err := IssueCallerToken("caller-secret", "", "", nil, time.Hour)
	require.NoError(t, err)
	_, err = verifier.VerifyToken(anonymous)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
