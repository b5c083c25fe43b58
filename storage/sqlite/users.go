package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	ierrors "github.com/aibanker/go-aibanker/internal/errors"
	"github.com/aibanker/go-aibanker/users"
)

var _ users.Repo = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of users.Repo.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, username, password_hash, first_name, last_name,
	company_name, job_title, phone, role, status, is_active, is_verified,
	last_login, created_at, updated_at`

func (ur *UserRepo) Create(ctx context.Context, user *users.User) error {
	now := time.Now().UTC()
	result, err := ur.db.ExecContext(ctx,
		`INSERT INTO users (email, username, password_hash, first_name, last_name,
			company_name, job_title, phone, role, status, is_active, is_verified,
			last_login, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName,
		user.CompanyName, user.JobTitle, user.Phone, user.Role, user.Status,
		user.Active, user.Verified, nullTime(user.LastLogin), now, now,
	)
	if err != nil {
		if constraintErr := uniqueUserError(err); constraintErr != nil {
			return constraintErr
		}
		return errors.Wrap(err, "[UserRepo.Create] insert user")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "[UserRepo.Create] last insert id")
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (ur *UserRepo) Update(ctx context.Context, user *users.User) error {
	now := time.Now().UTC()
	result, err := ur.db.ExecContext(ctx,
		`UPDATE users SET email = ?, username = ?, password_hash = ?, first_name = ?,
			last_name = ?, company_name = ?, job_title = ?, phone = ?, role = ?,
			status = ?, is_active = ?, is_verified = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.Username, user.PasswordHash, user.FirstName,
		user.LastName, user.CompanyName, user.JobTitle, user.Phone, user.Role,
		user.Status, user.Active, user.Verified, now, user.ID,
	)
	if err != nil {
		if constraintErr := uniqueUserError(err); constraintErr != nil {
			return constraintErr
		}
		return errors.Wrap(err, "[UserRepo.Update] update user")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[UserRepo.Update] rows affected")
	}
	if affected == 0 {
		return ierrors.ErrUserNotFound
	}

	user.UpdatedAt = now
	return nil
}

func (ur *UserRepo) Delete(ctx context.Context, id int64) error {
	result, err := ur.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "[UserRepo.Delete] delete user")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[UserRepo.Delete] rows affected")
	}
	if affected == 0 {
		return ierrors.ErrUserNotFound
	}
	return nil
}

func (ur *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return ur.getOne(ctx, "email = ?", email)
}

func (ur *UserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return ur.getOne(ctx, "username = ?", username)
}

func (ur *UserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	return ur.getOne(ctx, "id = ?", id)
}

func (ur *UserRepo) List(ctx context.Context, offset, limit int) ([]*users.User, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative limit as unbounded
	}

	rows, err := ur.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, errors.Wrap(err, "[UserRepo.List] query users")
	}
	defer rows.Close()

	var userList []*users.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "[UserRepo.List] scan user")
		}
		userList = append(userList, user)
	}
	return userList, rows.Err()
}

func (ur *UserRepo) SetLastLogin(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := ur.db.ExecContext(ctx,
		"UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?", now, now, id)
	if err != nil {
		return errors.Wrap(err, "[UserRepo.SetLastLogin] update last login")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[UserRepo.SetLastLogin] rows affected")
	}
	if affected == 0 {
		return ierrors.ErrUserNotFound
	}
	return nil
}

func (ur *UserRepo) getOne(ctx context.Context, where string, arg interface{}) (*users.User, error) {
	row := ur.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierrors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "[UserRepo.getOne] scan user")
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*users.User, error) {
	var (
		user      users.User
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.FirstName,
		&user.LastName, &user.CompanyName, &user.JobTitle, &user.Phone, &user.Role,
		&user.Status, &user.Active, &user.Verified, &lastLogin, &user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.LastLogin = timeValue(lastLogin)
	return &user, nil
}

// uniqueUserError maps a unique-constraint violation to the domain error
// for whichever column collided, or nil for any other error.
func uniqueUserError(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.email"):
		return ierrors.ErrEmailTaken
	case strings.Contains(msg, "users.username"):
		return ierrors.ErrUsernameTaken
	}
	return ierrors.ErrDuplicate
}
