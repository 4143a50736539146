// Package eventhandler reacts to committed user events: it keeps the read
// model current, notifies the user and archives closed streams.
package eventhandler

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/internal/eventbus"
)

// Notifier delivers a user-facing notice about e.
type Notifier interface {
	Notify(ctx context.Context, user repository.UserView, e event.Event) error
}

// Subscriber is the part of the event bus handlers are registered on.
type Subscriber interface {
	Subscribe(kind event.Type, h eventbus.Handler)
}

type Deps struct {
	Users    repository.UserRepository
	Views    repository.UserReadModelRepository // optional
	Notifier Notifier                           // optional
	Logger   *logrus.Logger
}

// projector is shared by every handler. Read-model failures are returned to
// the publisher; notifier failures are logged and dropped.
type projector struct {
	Deps
}

func newProjector(d Deps) projector {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	return projector{Deps: d}
}

func (p projector) project(ctx context.Context, e event.Event) (repository.UserView, error) {
	id, err := entity.NewUserID(e.AggregateID())
	if err != nil {
		return repository.UserView{}, err
	}
	u, err := p.Users.FindByID(ctx, id)
	if err != nil {
		return repository.UserView{}, fmt.Errorf("load user %s for %s: %w", id, e.EventType(), err)
	}
	view := repository.NewUserView(u)
	if p.Views != nil {
		if err := p.Views.Save(ctx, view); err != nil {
			return view, fmt.Errorf("project user %s: %w", id, err)
		}
	}
	return view, nil
}

func (p projector) notify(ctx context.Context, view repository.UserView, e event.Event) {
	if p.Notifier == nil {
		return
	}
	if err := p.Notifier.Notify(ctx, view, e); err != nil {
		p.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id":    view.ID,
			"event_type": e.EventType(),
			"event_id":   e.EventID(),
		}).Warn("notify user failed")
	}
}

func (p projector) handle(ctx context.Context, e event.Event) error {
	view, err := p.project(ctx, e)
	if err != nil {
		return err
	}
	p.notify(ctx, view, e)
	return nil
}

func unexpected(want event.Type, got event.Event) error {
	return fmt.Errorf("%w: %s handler got %T", entity.ErrUnexpectedEvent, want, got)
}

type UserRegisteredHandler struct{ projector }

func NewUserRegisteredHandler(d Deps) *UserRegisteredHandler {
	return &UserRegisteredHandler{newProjector(d)}
}

func (h *UserRegisteredHandler) Handle(ctx context.Context, e event.Event) error {
	if _, ok := e.(entity.UserRegistered); !ok {
		return unexpected(entity.UserRegisteredEventType, e)
	}
	return h.handle(ctx, e)
}

type UserActivatedHandler struct{ projector }

func NewUserActivatedHandler(d Deps) *UserActivatedHandler {
	return &UserActivatedHandler{newProjector(d)}
}

func (h *UserActivatedHandler) Handle(ctx context.Context, e event.Event) error {
	if _, ok := e.(entity.UserActivated); !ok {
		return unexpected(entity.UserActivatedEventType, e)
	}
	return h.handle(ctx, e)
}

type UserEnabledHandler struct{ projector }

func NewUserEnabledHandler(d Deps) *UserEnabledHandler {
	return &UserEnabledHandler{newProjector(d)}
}

func (h *UserEnabledHandler) Handle(ctx context.Context, e event.Event) error {
	if _, ok := e.(entity.UserEnabled); !ok {
		return unexpected(entity.UserEnabledEventType, e)
	}
	return h.handle(ctx, e)
}

type UserDisabledHandler struct{ projector }

func NewUserDisabledHandler(d Deps) *UserDisabledHandler {
	return &UserDisabledHandler{newProjector(d)}
}

func (h *UserDisabledHandler) Handle(ctx context.Context, e event.Event) error {
	if _, ok := e.(entity.UserDisabled); !ok {
		return unexpected(entity.UserDisabledEventType, e)
	}
	return h.handle(ctx, e)
}

type UserPasswordChangedHandler struct{ projector }

func NewUserPasswordChangedHandler(d Deps) *UserPasswordChangedHandler {
	return &UserPasswordChangedHandler{newProjector(d)}
}

func (h *UserPasswordChangedHandler) Handle(ctx context.Context, e event.Event) error {
	if _, ok := e.(entity.UserPasswordChanged); !ok {
		return unexpected(entity.UserPasswordChangedEventType, e)
	}
	return h.handle(ctx, e)
}

// UserUnregisteredHandler drops the projection. The aggregate is tombstoned
// by now, so the notice is built from the event itself.
type UserUnregisteredHandler struct{ projector }

func NewUserUnregisteredHandler(d Deps) *UserUnregisteredHandler {
	return &UserUnregisteredHandler{newProjector(d)}
}

func (h *UserUnregisteredHandler) Handle(ctx context.Context, e event.Event) error {
	ev, ok := e.(entity.UserUnregistered)
	if !ok {
		return unexpected(entity.UserUnregisteredEventType, e)
	}
	if h.Views != nil {
		if err := h.Views.Remove(ctx, ev.AggregateID()); err != nil {
			return fmt.Errorf("remove projection of user %d: %w", ev.AggregateID(), err)
		}
	}
	h.notify(ctx, repository.UserView{
		ID:        ev.AggregateID(),
		Login:     ev.Login.String(),
		Version:   ev.Version(),
		UpdatedAt: ev.OccurredAt(),
	}, e)
	return nil
}

// Register subscribes one handler per user event type, in lifecycle order.
// Extra handlers for a type (such as the stream archiver) are subscribed by
// the caller afterwards.
func Register(bus Subscriber, d Deps) {
	bus.Subscribe(entity.UserRegisteredEventType, NewUserRegisteredHandler(d))
	bus.Subscribe(entity.UserActivatedEventType, NewUserActivatedHandler(d))
	bus.Subscribe(entity.UserEnabledEventType, NewUserEnabledHandler(d))
	bus.Subscribe(entity.UserDisabledEventType, NewUserDisabledHandler(d))
	bus.Subscribe(entity.UserPasswordChangedEventType, NewUserPasswordChangedHandler(d))
	bus.Subscribe(entity.UserUnregisteredEventType, NewUserUnregisteredHandler(d))
}
