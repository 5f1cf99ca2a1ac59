package validator

import (
	"errors"
	"regexp"
)

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidCurrency = errors.New("invalid currency")
)

const (
	minPasswordLen = 8
	// bcrypt rejects longer inputs.
	maxPasswordLen = 72
)

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Registration checks the fields of a new account in the order a client
// would fix them and returns the first failure.
func Registration(username, email, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}

func ValidateEmail(email string) error {
	return match(emailPattern, email, ErrInvalidEmail)
}

func ValidateUsername(username string) error {
	return match(usernamePattern, username, ErrInvalidUsername)
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateCurrency accepts ISO 4217 shaped codes such as "USD".
func ValidateCurrency(code string) error {
	return match(currencyPattern, code, ErrInvalidCurrency)
}

func match(pattern *regexp.Regexp, value string, failure error) error {
	if !pattern.MatchString(value) {
		return failure
	}
	return nil
}
