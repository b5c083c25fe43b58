package users

import (
	"fmt"
	"time"

	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user's role on the platform
type RoleType string

const (
	RoleAdmin   RoleType = "admin"   // Full access to every deal and user administration
	RoleManager RoleType = "manager" // Manages deal teams
	RoleAnalyst RoleType = "analyst" // Regular user, owns the deals they create
	RoleViewer  RoleType = "viewer"  // Read-only access
)

// StatusType represents the lifecycle state of a user account
type StatusType string

const (
	StatusActive    StatusType = "active"
	StatusInactive  StatusType = "inactive"
	StatusSuspended StatusType = "suspended"
	StatusPending   StatusType = "pending"
)

type User struct {
	ID           int64      `json:"id,omitempty"`           // Unique identifier for the user
	Email        string     `json:"email,omitempty"`        // User's email address
	Username     string     `json:"username,omitempty"`     // Unique username
	PasswordHash string     `json:"-"`                      // Hashed version of the user's password - never serialize
	FirstName    string     `json:"first_name,omitempty"`   // First name of the user
	LastName     string     `json:"last_name,omitempty"`    // Last name of the user
	CompanyName  string     `json:"company_name,omitempty"` // Bank or firm the user belongs to
	JobTitle     string     `json:"job_title,omitempty"`    // Job title within the firm
	Phone        string     `json:"phone,omitempty"`        // Contact phone number
	Role         RoleType   `json:"role,omitempty"`         // Platform role
	Status       StatusType `json:"status,omitempty"`       // Account lifecycle state
	Active       bool       `json:"is_active"`              // Can the user currently log in
	Verified     bool       `json:"is_verified"`            // Has the user verified their email
	LastLogin    time.Time  `json:"last_login,omitempty"`   // Last time the user logged in
	CreatedAt    time.Time  `json:"created_at,omitempty"`   // When the user registered
	UpdatedAt    time.Time  `json:"updated_at,omitempty"`
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// FullName returns the user's display name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Username
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin returns true if the user can access every deal and document
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager returns true if the user can see accounts beyond their own
func (u *User) IsManager() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

// CanLogin reports whether the account is in a state that permits authentication
func (u *User) CanLogin() bool {
	return u.Active && u.Status != StatusSuspended
}

// ValidRole reports whether r is a known platform role
func ValidRole(r RoleType) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAnalyst, RoleViewer:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known account state
func ValidStatus(s StatusType) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending:
		return true
	}
	return false
}
