package utils

import "golang.org/x/crypto/bcrypt"

// HashPIN returns the bcrypt hash of a manager override PIN.
func HashPIN(pin string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPIN compares a PIN against its bcrypt hash.  An empty hash never
// matches, which disables the override.
func VerifyPIN(hash, pin string) bool {
	if hash == "" || pin == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
