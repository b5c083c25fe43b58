package auth

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/aibanker/go-aibanker/api"
	ierrors "github.com/aibanker/go-aibanker/internal/errors"
	"github.com/aibanker/go-aibanker/token"
	"github.com/aibanker/go-aibanker/token/refresh"
	"github.com/aibanker/go-aibanker/users"
)

// Repos holds all repository dependencies for the AuthService
type Repos struct {
	Users         users.Repo   // Repository for user accounts
	RefreshTokens refresh.Repo // Repository for refresh token metadata
}

// AuthService mediates login, registration, token refresh, logout, and
// current-user lookups. It owns the session lifecycle on the server side:
// every successful login/register/refresh issues a fresh token pair, and
// every path that ends a session invalidates the stored refresh token.
type AuthService struct {
	repos        Repos
	tokenManager *token.Manager
	refreshMgr   *refresh.Manager
	nowTime      func() time.Time // nowTime function (injectable for testing)
}

// AuthServiceOption defines a function type to modify the AuthService instance.
type AuthServiceOption func(*AuthService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthServiceOption {
	return func(as *AuthService) {
		as.nowTime = nowFunc
	}
}

// NewAuthService initializes a new AuthService with required dependencies.
func NewAuthService(repos Repos, tokenManager *token.Manager, refreshMgr *refresh.Manager, options ...AuthServiceOption) (*AuthService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewAuthService] Users repo is required")
	}
	if repos.RefreshTokens == nil {
		return nil, errors.New("[NewAuthService] RefreshTokens repo is required")
	}
	if tokenManager == nil {
		return nil, errors.New("[NewAuthService] tokenManager is required")
	}
	if refreshMgr == nil {
		return nil, errors.New("[NewAuthService] refreshMgr is required")
	}

	authService := &AuthService{
		repos:        repos,
		tokenManager: tokenManager,
		refreshMgr:   refreshMgr,
		nowTime:      time.Now,
	}

	for _, opt := range options {
		opt(authService)
	}

	return authService, nil
}

// Login checks the credentials and issues a token pair.
func (as *AuthService) Login(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	user, err := as.repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Same failure as a wrong password so the endpoint does not leak
		// which emails exist.
		return nil, ierrors.ErrInvalidCredentials
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ierrors.ErrInvalidCredentials
	}

	if !user.CanLogin() {
		return nil, ierrors.ErrAccountDeactivated
	}

	if err := as.repos.Users.SetLastLogin(ctx, user.ID); err != nil {
		return nil, errors.Wrap(err, "[AuthService.Login] SetLastLogin")
	}

	return as.issueTokenPair(ctx, user, true)
}

// RegisterParams carries the fields needed to create an account.
type RegisterParams struct {
	Email       string
	Username    string
	Password    string
	FirstName   string
	LastName    string
	CompanyName string
	JobTitle    string
}

// Register creates the user record and issues a token pair, so a new
// user lands authenticated.
func (as *AuthService) Register(ctx context.Context, params RegisterParams) (*api.TokenResponse, error) {
	if err := ValidateRegistration(params); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))

	if _, err := as.repos.Users.GetByEmail(ctx, email); err == nil {
		return nil, ierrors.ErrEmailTaken
	}
	if _, err := as.repos.Users.GetByUsername(ctx, params.Username); err == nil {
		return nil, ierrors.ErrUsernameTaken
	}

	passwordHash, err := users.HashPassword(params.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.Register] HashPassword")
	}

	user := &users.User{
		Email:        email,
		Username:     params.Username,
		PasswordHash: passwordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		CompanyName:  params.CompanyName,
		JobTitle:     params.JobTitle,
		Role:         users.RoleAnalyst,
		Status:       users.StatusPending,
		Active:       true,
		Verified:     false,
	}

	if err := as.repos.Users.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "[AuthService.Register] Create user")
	}

	return as.issueTokenPair(ctx, user, true)
}

// Refresh exchanges a refresh token for a new token pair. The presented
// token is consumed: a replacement is issued alongside the new access
// token (rotation on every use).
func (as *AuthService) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	userID, err := as.refreshMgr.Exchange(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := as.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ierrors.ErrInvalidRefreshToken
	}

	if !user.CanLogin() {
		return nil, ierrors.ErrAccountDeactivated
	}

	return as.issueTokenPair(ctx, user, false)
}

// Logout ends the user's session: the refresh token is invalidated and
// the presented access token is revoked. Unknown tokens are a no-op, so
// logout never fails for token-state reasons.
func (as *AuthService) Logout(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	if refreshToken != "" {
		as.refreshMgr.Invalidate(ctx, refreshToken)
	} else {
		as.refreshMgr.InvalidateUser(ctx, userID)
	}

	if accessToken != "" {
		// Best effort: an already-expired access token is fine to skip.
		_ = as.tokenManager.RevokeAccessToken(accessToken)
	}
	return nil
}

// CurrentUser returns the profile for the authenticated user ID.
func (as *AuthService) CurrentUser(ctx context.Context, userID int64) (*users.User, error) {
	user, err := as.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ierrors.ErrUserNotFound
	}
	return user, nil
}

func (as *AuthService) issueTokenPair(ctx context.Context, user *users.User, includeUser bool) (*api.TokenResponse, error) {
	accessToken, err := as.tokenManager.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.issueTokenPair] CreateAccessToken")
	}

	refreshToken, err := as.refreshMgr.Create(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthService.issueTokenPair] Create refresh token")
	}

	resp := &api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(as.tokenManager.AccessTokenExpiry().Seconds()),
	}
	if includeUser {
		resp.User = user
	}
	return resp, nil
}
