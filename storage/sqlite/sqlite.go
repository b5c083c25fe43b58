// Package sqlite provides SQLite-backed implementations of the platform
// repositories, suitable for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/aibanker/go-aibanker/storage/sqlite/migrations"
)

// Open opens the SQLite database at dbPath, configures it, and applies
// any pending migrations. WAL mode improves concurrent read behaviour and
// foreign keys are enforced.
func Open(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlite.Open] open database")
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[sqlite.Open] enable WAL mode")
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[sqlite.Open] enable foreign keys")
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[sqlite.Open] ping database")
	}

	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[sqlite.Open] run migrations")
	}

	return db, nil
}

// nullTime maps zero times to NULL on the way into the database.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// timeValue maps NULL back to the zero time on the way out.
func timeValue(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time
}
