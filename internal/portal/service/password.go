package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PasswordSymbols is the set of characters that satisfy the symbol
// requirement of the password policy.
const PasswordSymbols = "!@#$%^&*()-_=+[]{};:,.?"

const minPasswordLength = 8

// ValidatePassword enforces the admin password policy: at least 8 characters
// with at least one digit, one uppercase letter and one symbol. Returns
// ErrWeakPassword on any violation.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}

	var hasDigit, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasDigit || !hasUpper || !hasSymbol {
		return ErrWeakPassword
	}
	return nil
}
