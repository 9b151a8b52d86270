package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency drops a claimed key so the same request can be tried again
	ReleaseIdempotency(ctx context.Context, key string) error

	// SaveSession records an issued session id until ttl expires
	SaveSession(ctx context.Context, sessionID, uid string, ttl time.Duration) error

	// SessionActive reports whether the session id was issued and not revoked
	SessionActive(ctx context.Context, sessionID string) (bool, error)

	// DeleteSession revokes a session id
	DeleteSession(ctx context.Context, sessionID string) error

	// PublishCatalogChange tells every instance that the record store changed
	PublishCatalogChange(ctx context.Context) error

	// SubscribeCatalogChanges delivers one value per published change until ctx is done
	SubscribeCatalogChanges(ctx context.Context) <-chan struct{}
}
