package auth

import (
	"errors"
	"strings"
	"unicode"
)

// Registration validation errors, surfaced verbatim to the operator.
var (
	ErrUsernameInvalid     = errors.New("Username invalid.")
	ErrPasswordMismatch    = errors.New("Password and Password Confirmation are not the same.")
	ErrPasswordLength      = errors.New("Password is not between 8 to 12 characters.")
	ErrPasswordNoUppercase = errors.New("Password does not include at least one uppercase character.")
	ErrPasswordNoLowercase = errors.New("Password does not include at least one lowercase character.")
	ErrPasswordNoDigit     = errors.New("Password does not include at least one digit.")
	ErrPasswordNotAlnum    = errors.New("Password should include only uppercase characters, lowercase characters and digits!")
)

// ValidateUsername rejects empty or whitespace-only usernames.
// Uniqueness is enforced by the storage layer.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidateRegistrationPassword enforces the registration password
// rules: confirmation match, 8 to 12 characters, at least one
// uppercase letter, one lowercase letter and one digit, and nothing
// but letters and digits.
func ValidateRegistrationPassword(password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordMismatch
	}
	if len(password) < 8 || len(password) > 12 {
		return ErrPasswordLength
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			return ErrPasswordNotAlnum
		}
	}

	if !hasUpper {
		return ErrPasswordNoUppercase
	}
	if !hasLower {
		return ErrPasswordNoLowercase
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	return nil
}
