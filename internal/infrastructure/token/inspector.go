// Package token reads the claims of access tokens issued by the remote API.
// Signatures are not checked here; the API does that on every call.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

// accessClaims mirrors the SimpleJWT access token payload.
type accessClaims struct {
	UserID             any    `json:"user_id,omitempty"`
	Role               string `json:"role,omitempty"`
	IsProfileCompleted bool   `json:"is_profile_completed,omitempty"`
	jwt.RegisteredClaims
}

// Inspector implements ports.TokenInspector with golang-jwt.
type Inspector struct {
	parser *jwt.Parser
}

var _ ports.TokenInspector = (*Inspector)(nil)

func NewInspector() *Inspector {
	return &Inspector{parser: jwt.NewParser()}
}

// Inspect returns the unverified claims of raw. Opaque (non-JWT) tokens
// return an error.
func (i *Inspector) Inspect(raw string) (*domain.TokenClaims, error) {
	var claims accessClaims
	if _, _, err := i.parser.ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	out := &domain.TokenClaims{
		Subject:            claims.Subject,
		Role:               claims.Role,
		IsProfileCompleted: claims.IsProfileCompleted,
	}
	if out.Subject == "" && claims.UserID != nil {
		out.Subject = fmt.Sprint(claims.UserID)
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time.UTC()
		out.ExpiresAt = &exp
	}
	return out, nil
}
