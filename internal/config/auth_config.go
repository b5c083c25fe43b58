package config

import (
	"strconv"
	"time"
)

type AuthConfig interface {
	GetJWTSecret() string
	GetAudience() string
	GetRefreshTokenLength() int
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetAdminEmail() string
	GetAdminPassword() string
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "change-me-in-production")
}

func (Auth) GetAudience() string {
	return GetEnv("JWT_AUDIENCE", "aibanker-api")
}

func (Auth) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (Auth) GetAccessTokenExpiry() time.Duration {
	return durationEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 30, time.Minute)
}

func (Auth) GetRefreshTokenExpiry() time.Duration {
	return durationEnv("REFRESH_TOKEN_EXPIRE_DAYS", 7, 24*time.Hour)
}

func (Auth) GetAdminEmail() string {
	return GetEnv("ADMIN_EMAIL", "")
}

func (Auth) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}

func durationEnv(envVar string, defaultValue int, unit time.Duration) time.Duration {
	n, err := strconv.Atoi(GetEnv(envVar, strconv.Itoa(defaultValue)))
	if err != nil || n <= 0 {
		n = defaultValue
	}
	return time.Duration(n) * unit
}
