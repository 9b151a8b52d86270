package port

import (
	"context"

	"github.com/cartec/catalog/internal/core/domain"
)

type IdentityProvider interface {
	// AuthCodeURL is where the browser is sent to sign in
	AuthCodeURL(state string) string

	// Exchange trades the callback code for the signed-in identity
	Exchange(ctx context.Context, code string) (domain.Identity, error)
}
