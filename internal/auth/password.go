package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicyMessage is reported under the "password" field when ValidPassword fails.
const PasswordPolicyMessage = "Password must be at least 8 characters long and have at least one number, capital and lower letter."

const minPasswordLength = 8

// ErrMismatchedPassword is returned when a password does not match its hash.
var ErrMismatchedPassword = errors.New("password does not match")

// ValidPassword reports whether password is at least 8 characters long and
// contains a digit, an uppercase letter and a lowercase letter.
func ValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return false
	}
	var digit, upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	return digit && upper && lower
}

// bcryptInput digests password to a fixed 44 bytes so bcrypt's 72-byte input
// limit never rejects a password the policy accepts.
func bcryptInput(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword checks password against a bcrypt hash.
func ComparePassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedPassword
		}
		return err
	}
	return nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// equalizeTiming burns one bcrypt comparison so unknown usernames cost as
// much as wrong passwords.
func equalizeTiming(password string) {
	dummyOnce.Do(func() {
		h, err := HashPassword("unused-dummy-Passw0rd")
		if err == nil {
			dummyHash = h
		}
	})
	if dummyHash != "" {
		_ = ComparePassword(dummyHash, password)
	}
}
