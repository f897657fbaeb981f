package services

import (
	"time"

	"binder/internal/domain/models"
)

// OperationAuthorizer decides whether a caller may run an operation on a kind.
// Implemented by the declarative policy table in internal/capabilities.
type OperationAuthorizer interface {
	// Authorize returns ErrForbidden when the caller lacks the capability,
	// ErrValidation when the operation or kind is unknown
	Authorize(caller *models.Caller, operation string, kind models.Kind) error

	// Mutating reports whether the operation changes state (and so needs an action token)
	Mutating(operation string) bool
}

// ActionTokens issues and spends per-action anti-replay tokens
type ActionTokens interface {
	// Mint issues a token for userID bound to one action name
	Mint(userID, action string) (token string, expiresAt time.Time, err error)

	// Verify rejects tokens minted for another action or caller, expired
	// tokens and tokens already spent
	Verify(token, userID, action string) error
}
