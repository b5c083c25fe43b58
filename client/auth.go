package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/users"
)

// Login authenticates with email and password. On success the session
// holds the issued token pair and the authenticated user is returned.
// Auth endpoints bypass the 401 retry cycle: a 401 here means bad
// credentials, not an expired token.
func (c *Client) Login(ctx context.Context, email, password string) (*users.User, error) {
	tokenResp, err := c.postCredentials(ctx, "/api/v1/auth/login", api.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	return tokenResp.User, nil
}

// Register creates an account and leaves the session authenticated as the
// new user.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*users.User, error) {
	tokenResp, err := c.postCredentials(ctx, "/api/v1/auth/register", req)
	if err != nil {
		return nil, err
	}
	return tokenResp.User, nil
}

func (c *Client) postCredentials(ctx context.Context, path string, body interface{}) (*api.TokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.postCredentials] marshal request")
	}

	resp, err := c.attempt(ctx, http.MethodPost, path, payload, "application/json", "")
	if err != nil {
		return nil, err
	}

	var tokenResp api.TokenResponse
	if err := parseResponse(resp, &tokenResp); err != nil {
		return nil, err
	}

	if err := c.session.SetTokens(tokenResp.AccessToken, tokenResp.RefreshToken); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// Logout ends the session. The local session is cleared unconditionally,
// even when the backend call fails - a dead server must not trap the user
// in an authenticated state.
func (c *Client) Logout(ctx context.Context) error {
	_, refreshToken := c.session.Read()

	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", api.LogoutRequest{
		RefreshToken: refreshToken,
	}, nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
	}

	return c.session.Clear()
}

// Me fetches the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
