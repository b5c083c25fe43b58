package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	ierrors "github.com/aibanker/go-aibanker/internal/errors"
	"github.com/aibanker/go-aibanker/token/refresh"
)

var _ refresh.Repo = (*RefreshTokenRepo)(nil)

// RefreshTokenRepo is the SQLite implementation of refresh.Repo. The
// user_id column is unique: upserting replaces the user's previous token,
// which keeps one live refresh token per account.
type RefreshTokenRepo struct {
	db *sql.DB
}

func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

func (rr *RefreshTokenRepo) Upsert(ctx context.Context, refreshToken *refresh.StoredRefreshToken) error {
	_, err := rr.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (token, user_id, issued_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET token = excluded.token, issued_at = excluded.issued_at`,
		refreshToken.Token, refreshToken.UserID, refreshToken.Iat,
	)
	if err != nil {
		return errors.Wrap(err, "[RefreshTokenRepo.Upsert] upsert refresh token")
	}
	return nil
}

func (rr *RefreshTokenRepo) Delete(ctx context.Context, token string) error {
	result, err := rr.db.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token = ?", token)
	if err != nil {
		return errors.Wrap(err, "[RefreshTokenRepo.Delete] delete refresh token")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[RefreshTokenRepo.Delete] rows affected")
	}
	if affected == 0 {
		return ierrors.ErrNotFound
	}
	return nil
}

func (rr *RefreshTokenRepo) Get(ctx context.Context, token string) (*refresh.StoredRefreshToken, error) {
	stored := &refresh.StoredRefreshToken{}
	err := rr.db.QueryRowContext(ctx,
		"SELECT token, user_id, issued_at FROM refresh_tokens WHERE token = ?", token,
	).Scan(&stored.Token, &stored.UserID, &stored.Iat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierrors.ErrNotFound
		}
		return nil, errors.Wrap(err, "[RefreshTokenRepo.Get] query refresh token")
	}
	return stored, nil
}

func (rr *RefreshTokenRepo) GetByUserID(ctx context.Context, userID int64) (*refresh.StoredRefreshToken, error) {
	stored := &refresh.StoredRefreshToken{}
	err := rr.db.QueryRowContext(ctx,
		"SELECT token, user_id, issued_at FROM refresh_tokens WHERE user_id = ?", userID,
	).Scan(&stored.Token, &stored.UserID, &stored.Iat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierrors.ErrNotFound
		}
		return nil, errors.Wrap(err, "[RefreshTokenRepo.GetByUserID] query refresh token")
	}
	return stored, nil
}

func (rr *RefreshTokenRepo) DeleteExpired(ctx context.Context, before time.Time) error {
	_, err := rr.db.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE issued_at < ?", before)
	if err != nil {
		return errors.Wrap(err, "[RefreshTokenRepo.DeleteExpired] delete expired tokens")
	}
	return nil
}
