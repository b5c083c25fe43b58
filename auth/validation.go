package auth

import (
	"strings"

	"github.com/aibanker/go-aibanker/users"
)

// ValidationError marks a request rejected before any state was touched.
// Handlers map it to a 400 response with the message as the detail.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErr(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

// ValidateCredentials validates login credentials before any lookup
func ValidateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return validationErr("email is required")
	}

	// Basic email format validation
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return validationErr("invalid email format")
	}

	if password == "" {
		return validationErr("password is required")
	}

	return nil
}

// ValidateRegistration validates the fields of a registration request
func ValidateRegistration(params RegisterParams) error {
	if err := ValidateCredentials(params.Email, params.Password); err != nil {
		return err
	}

	username := strings.TrimSpace(params.Username)
	if username == "" {
		return validationErr("username is required")
	}
	if len(username) < 3 || len(username) > 50 {
		return validationErr("username must be between 3 and 50 characters")
	}
	if strings.ContainsAny(username, " \t\n\r") {
		return validationErr("username must not contain whitespace")
	}

	if err := users.ValidatePasswordStrength(params.Password); err != nil {
		return validationErr(err.Error())
	}
	return nil
}
