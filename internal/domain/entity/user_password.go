package entity

import "unicode/utf8"

// MinPasswordLength is the hard floor for any password. Stronger rules are
// enforced by the password policy service.
const MinPasswordLength = 8

// UserPassword holds a credential. Hashing and strength checks are not its
// concern; equality compares the held value.
type UserPassword struct {
	value  string
	sealed bool
}

func NewUserPassword(password string) (UserPassword, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return UserPassword{}, ErrPasswordTooShort
	}
	return UserPassword{value: password}, nil
}

// RestoreUserPassword rebuilds a credential read back from durable storage.
// The value is already sealed (hashed), so no format rules apply.
func RestoreUserPassword(stored string) UserPassword {
	return UserPassword{value: stored, sealed: true}
}

func (p UserPassword) Value() string { return p.value }
func (p UserPassword) IsZero() bool  { return p.value == "" }

// Sealed reports whether the value came back from storage already hashed.
func (p UserPassword) Sealed() bool { return p.sealed }

func (p UserPassword) Equals(other UserPassword) bool {
	return p.value == other.value
}
