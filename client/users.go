package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/users"
)

// ListUsersOptions filter and paginate the user listing. Zero values mean
// no filter and server defaults.
type ListUsersOptions struct {
	Role   users.RoleType
	Status users.StatusType
	Offset int
	Limit  int
}

func (o ListUsersOptions) query() string {
	q := url.Values{}
	if o.Role != "" {
		q.Set("role", string(o.Role))
	}
	if o.Status != "" {
		q.Set("status", string(o.Status))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// UpdateProfile updates the authenticated user's own profile. Only the
// fields set on the request change.
func (c *Client) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*users.User, error) {
	var user users.User
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/users/me", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers lists platform users. Requires a manager or admin role.
func (c *Client) ListUsers(ctx context.Context, opts ListUsersOptions) ([]*users.User, error) {
	var userList []*users.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/users"+opts.query(), nil, &userList); err != nil {
		return nil, err
	}
	return userList, nil
}

// GetUser fetches a user by id. Non-managers can only fetch themselves.
func (c *Client) GetUser(ctx context.Context, id int64) (*users.User, error) {
	var user users.User
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", id), nil, nil)
}
