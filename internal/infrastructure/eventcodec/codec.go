// Package eventcodec converts user events to and from their persisted form.
package eventcodec

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

// Record is one row of a persisted stream.
type Record struct {
	AggregateID int64           `json:"aggregate_id"`
	Version     int             `json:"version"`
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

type registeredPayload struct {
	Login          string `json:"login"`
	Password       string `json:"password"`
	ActivationHash string `json:"activation_hash"`
}

type activatedPayload struct {
	ActivationHash string `json:"activation_hash"`
}

type passwordChangedPayload struct {
	Password string `json:"password"`
}

type unregisteredPayload struct {
	Login string `json:"login"`
}

// Codec encodes events for durable storage. Passwords are sealed with bcrypt
// on the way out and come back as restored hashes.
type Codec struct {
	cost int
}

func New(cost int) *Codec {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Codec{cost: cost}
}

func (c *Codec) Encode(e entity.UserEvent) (Record, error) {
	var payload any
	switch e := e.(type) {
	case entity.UserRegistered:
		sealed, err := c.seal(e.Password)
		if err != nil {
			return Record{}, err
		}
		payload = registeredPayload{Login: e.Login.String(), Password: sealed, ActivationHash: e.ActivationHash}
	case entity.UserActivated:
		payload = activatedPayload{ActivationHash: e.ActivationHash}
	case entity.UserEnabled, entity.UserDisabled:
		payload = struct{}{}
	case entity.UserPasswordChanged:
		sealed, err := c.seal(e.Password)
		if err != nil {
			return Record{}, err
		}
		payload = passwordChangedPayload{Password: sealed}
	case entity.UserUnregistered:
		payload = unregisteredPayload{Login: e.Login.String()}
	default:
		return Record{}, fmt.Errorf("%w: cannot encode %T", entity.ErrUnexpectedEvent, e)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s: %w", e.EventType(), err)
	}
	return Record{
		AggregateID: e.AggregateID(),
		Version:     e.Version(),
		EventID:     e.EventID(),
		EventType:   e.EventType().String(),
		Payload:     b,
		OccurredAt:  e.OccurredAt(),
	}, nil
}

func (c *Codec) Decode(r Record) (entity.UserEvent, error) {
	base := event.Base{
		ID:        r.EventID,
		Kind:      event.Type(r.EventType),
		Aggregate: r.AggregateID,
		Seq:       r.Version,
		Timestamp: r.OccurredAt,
	}

	switch base.Kind {
	case entity.UserRegisteredEventType:
		var p registeredPayload
		if err := unmarshal(r, &p); err != nil {
			return nil, err
		}
		login, err := entity.NewUserLogin(p.Login)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", base.Kind, err)
		}
		return entity.UserRegistered{
			Base:           base,
			Login:          login,
			Password:       entity.RestoreUserPassword(p.Password),
			ActivationHash: p.ActivationHash,
		}, nil
	case entity.UserActivatedEventType:
		var p activatedPayload
		if err := unmarshal(r, &p); err != nil {
			return nil, err
		}
		return entity.UserActivated{Base: base, ActivationHash: p.ActivationHash}, nil
	case entity.UserEnabledEventType:
		return entity.UserEnabled{Base: base}, nil
	case entity.UserDisabledEventType:
		return entity.UserDisabled{Base: base}, nil
	case entity.UserPasswordChangedEventType:
		var p passwordChangedPayload
		if err := unmarshal(r, &p); err != nil {
			return nil, err
		}
		return entity.UserPasswordChanged{Base: base, Password: entity.RestoreUserPassword(p.Password)}, nil
	case entity.UserUnregisteredEventType:
		var p unregisteredPayload
		if err := unmarshal(r, &p); err != nil {
			return nil, err
		}
		login, err := entity.NewUserLogin(p.Login)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", base.Kind, err)
		}
		return entity.UserUnregistered{Base: base, Login: login}, nil
	}
	return nil, fmt.Errorf("%w: unknown event type %q", entity.ErrUnexpectedEvent, r.EventType)
}

func (c *Codec) seal(p entity.UserPassword) (string, error) {
	if p.Sealed() {
		return p.Value(), nil
	}
	h, err := helpers.HashPasswordCost(p.Value(), c.cost)
	if err != nil {
		return "", fmt.Errorf("seal password: %w", err)
	}
	return h, nil
}

func unmarshal(r Record, dst any) error {
	if err := json.Unmarshal(r.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", r.EventType, err)
	}
	return nil
}
