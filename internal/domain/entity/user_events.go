package entity

import "github.com/oksasatya/go-user-lifecycle/internal/domain/event"

const (
	UserRegisteredEventType      event.Type = "user.registered"
	UserActivatedEventType       event.Type = "user.activated"
	UserEnabledEventType         event.Type = "user.enabled"
	UserDisabledEventType        event.Type = "user.disabled"
	UserPasswordChangedEventType event.Type = "user.password_changed"
	UserUnregisteredEventType    event.Type = "user.unregistered"
)

// UserEventTypes lists every user event variant in lifecycle order.
var UserEventTypes = []event.Type{
	UserRegisteredEventType,
	UserActivatedEventType,
	UserEnabledEventType,
	UserDisabledEventType,
	UserPasswordChangedEventType,
	UserUnregisteredEventType,
}

// UserEvent is the closed set of events a User aggregate emits. The unexported
// marker keeps other packages from adding variants.
type UserEvent interface {
	event.Event
	userEvent()
}

type UserRegistered struct {
	event.Base
	Login          UserLogin
	Password       UserPassword
	ActivationHash string
}

type UserActivated struct {
	event.Base
	ActivationHash string
}

type UserEnabled struct {
	event.Base
}

type UserDisabled struct {
	event.Base
}

type UserPasswordChanged struct {
	event.Base
	Password UserPassword
}

// UserUnregistered is the tombstone of a user stream.
type UserUnregistered struct {
	event.Base
	Login UserLogin
}

func (UserRegistered) userEvent()      {}
func (UserActivated) userEvent()       {}
func (UserEnabled) userEvent()         {}
func (UserDisabled) userEvent()        {}
func (UserPasswordChanged) userEvent() {}
func (UserUnregistered) userEvent()    {}
