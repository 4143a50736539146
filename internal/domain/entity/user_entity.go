package entity

import (
	"fmt"
	"time"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
)

// UserState is the position of a user in its lifecycle.
type UserState string

const (
	StateUnregistered     UserState = "unregistered"
	StateInactiveDisabled UserState = "inactive_disabled"
	StateActiveDisabled   UserState = "active_disabled"
	StateActiveEnabled    UserState = "active_enabled"
	StateTombstoned       UserState = "tombstoned"
)

func (s UserState) String() string { return string(s) }

// User is the aggregate root for the user domain. Its state is always the fold
// of its event stream: commands validate against the current state and raise
// new events, which are applied immediately and kept pending until saved.
type User struct {
	id             UserID
	login          UserLogin
	password       UserPassword
	active         bool
	enabled        bool
	tombstoned     bool
	activationHash string
	registeredAt   time.Time
	updatedAt      time.Time

	version int
	pending []UserEvent
}

// RegisterUser starts a new stream: the user is inactive, disabled and waits
// for activationHash to be presented.
func RegisterUser(id UserID, login UserLogin, password UserPassword, activationHash string) (*User, error) {
	if id.IsZero() || login.IsZero() || password.IsZero() || activationHash == "" {
		return nil, fmt.Errorf("%w: id, login, password and activation hash are required", ErrInvalidArgument)
	}
	u := &User{id: id}
	err := u.raise(UserRegistered{
		Base:           u.nextBase(UserRegisteredEventType),
		Login:          login,
		Password:       password,
		ActivationHash: activationHash,
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ReconstituteUser replays a stream loaded from the event store.
// An empty history means the user never existed.
func ReconstituteUser(history []UserEvent) (*User, error) {
	if len(history) == 0 {
		return nil, ErrUserNotFound
	}
	u := &User{}
	for _, e := range history {
		if err := u.apply(e); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (u *User) ID() UserID              { return u.id }
func (u *User) Login() UserLogin        { return u.login }
func (u *User) Password() UserPassword  { return u.password }
func (u *User) IsActive() bool          { return u.active }
func (u *User) IsEnabled() bool         { return u.enabled }
func (u *User) IsUnregistered() bool    { return u.tombstoned }
func (u *User) ActivationHash() string  { return u.activationHash }
func (u *User) Version() int            { return u.version }
func (u *User) RegisteredAt() time.Time { return u.registeredAt }
func (u *User) UpdatedAt() time.Time    { return u.updatedAt }

func (u *User) State() UserState {
	switch {
	case u.tombstoned:
		return StateTombstoned
	case u.version == 0:
		return StateUnregistered
	case u.active && u.enabled:
		return StateActiveEnabled
	case u.active:
		return StateActiveDisabled
	default:
		return StateInactiveDisabled
	}
}

// Activate consumes the activation hash.
func (u *User) Activate() error {
	if u.tombstoned {
		return ErrUserNotFound
	}
	if u.active {
		return ErrUserAlreadyActive
	}
	return u.raise(UserActivated{
		Base:           u.nextBase(UserActivatedEventType),
		ActivationHash: u.activationHash,
	})
}

func (u *User) Enable() error {
	if u.tombstoned {
		return ErrUserNotFound
	}
	if !u.active {
		return ErrUserNotActive
	}
	if u.enabled {
		return ErrUserAlreadyEnabled
	}
	return u.raise(UserEnabled{Base: u.nextBase(UserEnabledEventType)})
}

func (u *User) Disable() error {
	if u.tombstoned {
		return ErrUserNotFound
	}
	if !u.active {
		return ErrUserNotActive
	}
	if !u.enabled {
		return ErrUserAlreadyDisabled
	}
	return u.raise(UserDisabled{Base: u.nextBase(UserDisabledEventType)})
}

// ChangePassword replaces the credential. Policy checks happen before this call.
func (u *User) ChangePassword(password UserPassword) error {
	if u.tombstoned {
		return ErrUserNotFound
	}
	if password.IsZero() {
		return fmt.Errorf("%w: password is required", ErrInvalidArgument)
	}
	return u.raise(UserPasswordChanged{
		Base:     u.nextBase(UserPasswordChangedEventType),
		Password: password,
	})
}

// Unregister tombstones the stream; history is kept.
func (u *User) Unregister() error {
	if u.tombstoned {
		return ErrUserNotFound
	}
	return u.raise(UserUnregistered{
		Base:  u.nextBase(UserUnregisteredEventType),
		Login: u.login,
	})
}

// PendingEvents returns the events raised since the aggregate was loaded.
func (u *User) PendingEvents() []UserEvent {
	out := make([]UserEvent, len(u.pending))
	copy(out, u.pending)
	return out
}

// ClearPendingEvents is called by repositories once the events are stored.
func (u *User) ClearPendingEvents() {
	u.pending = nil
}

func (u *User) nextBase(kind event.Type) event.Base {
	return event.NewBase(kind, u.id.Int64(), u.version+1)
}

func (u *User) raise(e UserEvent) error {
	if err := u.apply(e); err != nil {
		return err
	}
	u.pending = append(u.pending, e)
	return nil
}

func (u *User) apply(e UserEvent) error {
	if e.Version() != u.version+1 {
		return fmt.Errorf("%w: %s has version %d, stream is at %d", ErrUnexpectedEvent, e.EventType(), e.Version(), u.version)
	}
	if _, ok := e.(UserRegistered); !ok && u.version == 0 {
		return fmt.Errorf("%w: stream starts with %s, not a registration", ErrUnexpectedEvent, e.EventType())
	}
	if u.version > 0 && e.AggregateID() != u.id.Int64() {
		return fmt.Errorf("%w: %s belongs to user %d, not %s", ErrUnexpectedEvent, e.EventType(), e.AggregateID(), u.id)
	}

	switch e := e.(type) {
	case UserRegistered:
		if u.version != 0 {
			return fmt.Errorf("%w: user %s registered twice", ErrUnexpectedEvent, u.id)
		}
		id, err := NewUserID(e.AggregateID())
		if err != nil {
			return err
		}
		u.id = id
		u.login = e.Login
		u.password = e.Password
		u.activationHash = e.ActivationHash
		u.registeredAt = e.OccurredAt()
	case UserActivated:
		u.active = true
		u.activationHash = ""
	case UserEnabled:
		u.enabled = true
	case UserDisabled:
		u.enabled = false
	case UserPasswordChanged:
		u.password = e.Password
	case UserUnregistered:
		u.tombstoned = true
	default:
		return fmt.Errorf("%w: %T", ErrUnexpectedEvent, e)
	}

	u.version = e.Version()
	u.updatedAt = e.OccurredAt()
	return nil
}
