package utils

import (
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the store's existing hashes; changing it only
// affects newly written hashes.
const bcryptCost = 12

// MinPasswordScore is the zxcvbn score a new password must reach on the
// 0..4 scale before a password change is accepted.
const MinPasswordScore = 3

// HashPassword returns the bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordStrongEnough runs the zxcvbn estimator over the candidate
// password, mixing in user-supplied inputs (username etc.) so passwords
// derived from them score poorly.
func PasswordStrongEnough(password string, userInputs ...string) bool {
	return zxcvbn.PasswordStrength(password, userInputs).Score >= MinPasswordScore
}
