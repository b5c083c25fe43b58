package token

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aibanker/go-aibanker/users"
)

// Introspection represents the metadata information of an access token.
// The 'active' field indicates the state of the token - if it's false,
// other fields may not be populated.
type Introspection struct {
	Active bool    `json:"active"`          // True or false - Is the token valid
	Aud    *string `json:"aud,omitempty"`   // Audience the token was issued for
	Exp    *int64  `json:"exp,omitempty"`   // Expiration
	Iat    *int64  `json:"iat,omitempty"`   // Issued at time
	Iss    *string `json:"iss,omitempty"`   // Issuer of the token
	Email  string  `json:"email,omitempty"` // User's email address
	Role   string  `json:"role,omitempty"`  // User's platform role
	Sub    int64   `json:"sub,omitempty"`   // User's unique ID
	Jti    string  `json:"jti,omitempty"`   // Unique token ID for revocation
}

// Manager creates and introspects access tokens
type Manager struct {
	signer            Signer
	issuer            string
	audience          string
	revokedCache      RevokedTokenCache // Cache for revoked tokens
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithAccessTokenExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = expiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithAudience(audience string) ManagerOption {
	return func(m *Manager) {
		m.audience = audience
	}
}

func WithRevokedTokenCache(cache RevokedTokenCache) ManagerOption {
	return func(m *Manager) {
		m.revokedCache = cache
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:       signer,
		revokedCache: NewInMemoryRevokedTokenCache(),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = 30 * time.Minute
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

// AccessTokenExpiry returns the configured access token lifetime
func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

// CreateAccessToken issues a signed access token for the user
func (m *Manager) CreateAccessToken(user *users.User) (string, error) {
	claims := jwt.MapClaims{
		"iss":   m.issuer,                                           // The issuer of the token
		"sub":   strconv.FormatInt(user.ID, 10),                     // The subject, the user's unique ID
		"aud":   m.audience,                                         // The audience the token is intended for
		"email": user.Email,                                         // User's email for convenience lookups
		"role":  string(user.Role),                                  // Platform role
		"iat":   int64(m.nowFunc().Unix()),                          // Issued At: the time at which the token was issued
		"exp":   int64(m.nowFunc().Add(m.accessTokenExpiry).Unix()), // Expiry: when the token will expire
		"jti":   uuid.New().String(),                                // Unique token ID for revocation
	}

	return m.signer.Sign(claims)
}

// Introspection validates a raw token and returns its metadata. Expired,
// revoked, or malformed tokens come back with Active set to false.
func (m *Manager) Introspection(rawToken string) (*Introspection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &Introspection{Active: false}, nil
	}

	parsed, err := jwt.Parse(rawToken, m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil || !parsed.Valid {
		return &Introspection{Active: false}, nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return &Introspection{Active: false}, errors.New("error extracting claims from token")
	}

	iss, _ := claims["iss"].(string)
	sub, _ := claims["sub"].(string)
	aud, _ := claims["aud"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)
	jti, _ := claims["jti"].(string)

	iatInt := int64(iat)
	expInt := int64(exp)

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return &Introspection{Active: false}, nil
	}

	active := m.nowFunc().Unix() <= expInt

	// Check if token has been revoked
	if jti != "" && m.revokedCache.IsRevoked(jti) {
		active = false
	}

	return &Introspection{
		Active: active,
		Aud:    &aud,
		Exp:    &expInt,
		Iat:    &iatInt,
		Iss:    &iss,
		Email:  email,
		Role:   role,
		Sub:    userID,
		Jti:    jti,
	}, nil
}

// RevokeAccessToken revokes an access token by its JTI
func (m *Manager) RevokeAccessToken(rawToken string) error {
	parsed, err := jwt.Parse(rawToken, m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil || !parsed.Valid {
		return errors.Wrap(err, "invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("error extracting claims from token")
	}

	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return errors.New("token missing jti claim")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return errors.New("token missing exp claim")
	}

	return m.revokedCache.Add(jti, time.Unix(int64(exp), 0))
}

// CleanupRevokedTokens removes expired tokens from the revocation cache
func (m *Manager) CleanupRevokedTokens() {
	if m.revokedCache != nil {
		m.revokedCache.Cleanup()
	}
}
