package auth

import "binder/internal/domain/models"

// Verifier checks the bearer token an administrator presents and returns
// its claims. Implementations must reject anonymous and subject-less tokens.
type Verifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.CallerClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}
