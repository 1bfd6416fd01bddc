package ports

import (
	"context"

	"github.com/diplomatch/portal/internal/core/domain"
)

// Navigator receives navigation requests raised by the session, e.g. the
// redirect to /login after logout. ctx is the context of the operation that
// raised the request.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// TokenInspector reads claims from an access token without verifying it.
type TokenInspector interface {
	Inspect(token string) (*domain.TokenClaims, error)
}
