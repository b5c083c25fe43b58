package server

import (
	"context"

	"github.com/pkg/errors"

	"github.com/aibanker/go-aibanker/users"
)

// seedAdminUser creates the administrator account on first start when
// ADMIN_EMAIL and ADMIN_PASSWORD are configured. An existing account with
// that email is left untouched.
func (s *Server) seedAdminUser(ctx context.Context) error {
	email := s.config.GetAdminEmail()
	password := s.config.GetAdminPassword()
	if email == "" || password == "" {
		return nil
	}

	if _, err := s.repos.Users.GetByEmail(ctx, email); err == nil {
		return nil
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "[Server.seedAdminUser] HashPassword")
	}

	admin := &users.User{
		Email:        email,
		Username:     "admin",
		PasswordHash: passwordHash,
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         users.RoleAdmin,
		Status:       users.StatusActive,
		Active:       true,
		Verified:     true,
	}

	if err := s.repos.Users.Create(ctx, admin); err != nil {
		return errors.Wrap(err, "[Server.seedAdminUser] Create admin user")
	}

	s.logger.Info().Str("email", email).Msg("seeded admin user")
	return nil
}
