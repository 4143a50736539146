package helpers

import "golang.org/x/crypto/bcrypt"

// HashPasswordCost hashes with an explicit bcrypt cost; tests use bcrypt.MinCost.
func HashPasswordCost(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
