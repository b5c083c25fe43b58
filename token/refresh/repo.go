package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken represents the server-side storage of refresh token
// metadata. The client only receives the Token field (a random string);
// the rest is server-side metadata used for validation and rotation.
type StoredRefreshToken struct {
	Token  string    // The actual random token string (sent to client)
	UserID int64     // Owner of the token
	Iat    time.Time // Issued at time
}

// Repo manages server-side storage of refresh token metadata, keyed by
// the opaque token string.
type Repo interface {
	Upsert(ctx context.Context, refreshToken *StoredRefreshToken) error
	Delete(ctx context.Context, token string) error
	Get(ctx context.Context, token string) (*StoredRefreshToken, error)
	GetByUserID(ctx context.Context, userID int64) (*StoredRefreshToken, error)
	DeleteExpired(ctx context.Context, before time.Time) error
}
