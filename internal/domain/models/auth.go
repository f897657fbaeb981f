package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// CallerClaims represents the JWT claims presented by an administrator.
// Capabilities are carried in app_metadata so the identity provider, not
// the client, controls them.
type CallerClaims struct {
	jwt.RegisteredClaims                // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string         `json:"email"`
	Role                 string         `json:"role"` // "authenticated" or "anon"
	AppMetadata          map[string]any `json:"app_metadata"`
	IsAnonymous          bool           `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *CallerClaims) GetUserID() string {
	return c.Subject
}

// GetCapabilities extracts app_metadata.capabilities as a string list.
// Non-string entries are ignored.
func (c *CallerClaims) GetCapabilities() []string {
	raw, ok := c.AppMetadata["capabilities"].([]any)
	if !ok {
		return nil
	}
	caps := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			caps = append(caps, s)
		}
	}
	return caps
}

// Caller is an authenticated administrator and the capabilities granted
// to them.
type Caller struct {
	UserID       string   `json:"user_id"`
	Email        string   `json:"email,omitempty"`
	Capabilities []string `json:"capabilities"`
}

// NewCaller builds a Caller from verified claims
func NewCaller(claims *CallerClaims) *Caller {
	return &Caller{
		UserID:       claims.GetUserID(),
		Email:        claims.Email,
		Capabilities: claims.GetCapabilities(),
	}
}

// Can reports whether the caller holds the capability
func (c *Caller) Can(capability string) bool {
	if c == nil || capability == "" {
		return false
	}
	return slices.Contains(c.Capabilities, capability)
}
