package application

import "github.com/oksasatya/go-user-lifecycle/internal/domain/entity"

type RegisterUserCommand struct {
	Login    entity.UserLogin
	Password entity.UserPassword
}

// NewRegisterUserCommand validates raw input into a command.
func NewRegisterUserCommand(login, password string) (RegisterUserCommand, error) {
	l, err := entity.NewUserLogin(login)
	if err != nil {
		return RegisterUserCommand{}, err
	}
	p, err := entity.NewUserPassword(password)
	if err != nil {
		return RegisterUserCommand{}, err
	}
	return RegisterUserCommand{Login: l, Password: p}, nil
}

type ActivateUserCommand struct {
	ActivationHash string
}

type EnableUserCommand struct {
	UserID entity.UserID
}

type DisableUserCommand struct {
	UserID entity.UserID
}

type ChangePasswordCommand struct {
	UserID      entity.UserID
	NewPassword entity.UserPassword
}

func NewChangePasswordCommand(id entity.UserID, password string) (ChangePasswordCommand, error) {
	p, err := entity.NewUserPassword(password)
	if err != nil {
		return ChangePasswordCommand{}, err
	}
	return ChangePasswordCommand{UserID: id, NewPassword: p}, nil
}

type UnregisterUserCommand struct {
	UserID entity.UserID
}
