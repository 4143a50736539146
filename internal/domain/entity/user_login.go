package entity

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// UserLogin is the email address a user signs in with.
type UserLogin struct {
	value string
}

func NewUserLogin(login string) (UserLogin, error) {
	login = strings.TrimSpace(login)
	if err := validate.Var(login, "required,email"); err != nil {
		return UserLogin{}, ErrLoginInvalid
	}
	return UserLogin{value: login}, nil
}

func (l UserLogin) String() string { return l.value }
func (l UserLogin) IsZero() bool   { return l.value == "" }

func (l UserLogin) Equals(other UserLogin) bool {
	return l.value == other.value
}
