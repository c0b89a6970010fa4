package domain

import (
	"net/mail"
	"strings"
	"unicode"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit / Limite d'entrée de bcrypt
	MaxPasswordBytes = 72
	MaxEmailLength   = 254
)

// NormalizeEmail lowercases and trims an address / Met en minuscules et nettoie une adresse
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail accepts a bare RFC 5322 address / Accepte une adresse RFC 5322 nue
func ValidEmail(email string) bool {
	if email == "" || len(email) > MaxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == strings.TrimSpace(email)
}

// PasswordProblems lists what a password lacks, nil when it is strong enough
func PasswordProblems(password string) []string {
	var problems []string
	if len(password) < MinPasswordLength {
		problems = append(problems, "at least 8 characters")
	}
	if len(password) > MaxPasswordBytes {
		problems = append(problems, "at most 72 bytes")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper {
		problems = append(problems, "an uppercase letter")
	}
	if !lower {
		problems = append(problems, "a lowercase letter")
	}
	if !digit {
		problems = append(problems, "a digit")
	}
	if !special {
		problems = append(problems, "a special character")
	}
	return problems
}

// ValidateRegistration checks a normalized email, a password and a display name
func ValidateRegistration(email, password, displayName string) error {
	var v validator
	if !ValidEmail(email) {
		v.add("email", "invalid email format")
	}
	if problems := PasswordProblems(password); len(problems) > 0 {
		v.add("password", "password needs "+strings.Join(problems, ", "))
	}
	v.maxLen("display_name", displayName, MaxDisplayNameLength)
	return v.err()
}
