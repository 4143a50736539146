package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
	repo "github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/service"
)

// ErrEventDispatch wraps handler failures that happen after the events were
// stored. The state change stands; callers must not treat it as a rollback.
var ErrEventDispatch = errors.New("event dispatch failed after commit")

type PasswordVerifier interface {
	Verify(candidate entity.UserPassword, pc service.PolicyContext) error
}

type EventPublisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// NewActivationHash returns 32 lowercase hex characters.
func NewActivationHash() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Service handles user commands: check preconditions, run the aggregate
// transition, save, then publish what was saved.
type Service struct {
	Repo      repo.UserRepository
	Passwords PasswordVerifier
	Bus       EventPublisher
	Logger    *logrus.Logger
	// HashFunc generates activation hashes; tests pin it.
	HashFunc func() string
}

func NewService(users repo.UserRepository, passwords PasswordVerifier, bus EventPublisher, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		Repo:      users,
		Passwords: passwords,
		Bus:       bus,
		Logger:    logger,
		HashFunc:  NewActivationHash,
	}
}

func (s *Service) Register(ctx context.Context, cmd RegisterUserCommand) (*entity.User, error) {
	exists, err := s.Repo.Exists(ctx, cmd.Login)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, entity.ErrUserAlreadyExists
	}
	if err := s.Passwords.Verify(cmd.Password, service.PolicyContext{Login: cmd.Login}); err != nil {
		return nil, err
	}
	id, err := s.Repo.NextIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("next user id: %w", err)
	}
	u, err := entity.RegisterUser(id, cmd.Login, cmd.Password, s.HashFunc())
	if err != nil {
		return nil, err
	}
	return committed(u, s.commit(ctx, "register", u))
}

func (s *Service) Activate(ctx context.Context, cmd ActivateUserCommand) (*entity.User, error) {
	u, err := s.Repo.FindByActivationHash(ctx, cmd.ActivationHash)
	if err != nil {
		return nil, err
	}
	if err := u.Activate(); err != nil {
		return nil, err
	}
	return committed(u, s.commit(ctx, "activate", u))
}

func (s *Service) Enable(ctx context.Context, cmd EnableUserCommand) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if err := u.Enable(); err != nil {
		return nil, err
	}
	return committed(u, s.commit(ctx, "enable", u))
}

func (s *Service) Disable(ctx context.Context, cmd DisableUserCommand) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if err := u.Disable(); err != nil {
		return nil, err
	}
	return committed(u, s.commit(ctx, "disable", u))
}

func (s *Service) ChangePassword(ctx context.Context, cmd ChangePasswordCommand) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.Passwords.Verify(cmd.NewPassword, service.PolicyContext{Login: u.Login()}); err != nil {
		return nil, err
	}
	if err := u.ChangePassword(cmd.NewPassword); err != nil {
		return nil, err
	}
	return committed(u, s.commit(ctx, "change password", u))
}

func (s *Service) Unregister(ctx context.Context, cmd UnregisterUserCommand) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if err := u.Unregister(); err != nil {
		return nil, err
	}
	return committed(u, s.commit(ctx, "unregister", u))
}

// Get loads the current state of a user from its stream.
func (s *Service) Get(ctx context.Context, id entity.UserID) (*entity.User, error) {
	return s.Repo.FindByID(ctx, id)
}

// committed returns u alongside a dispatch error, since the change is stored.
func committed(u *entity.User, err error) (*entity.User, error) {
	if err != nil && !errors.Is(err, ErrEventDispatch) {
		return nil, err
	}
	return u, err
}

// commit saves the aggregate and publishes every event that was saved. Each
// event is published even if an earlier one failed to dispatch.
func (s *Service) commit(ctx context.Context, op string, u *entity.User) error {
	pending := u.PendingEvents()
	if err := s.Repo.Save(ctx, u); err != nil {
		return err
	}

	log := s.Logger.WithField("user_id", u.ID().Int64())
	log.WithField("version", u.Version()).Infof("user %s committed", op)

	var errs []error
	for _, e := range pending {
		if err := s.Bus.Publish(ctx, e); err != nil {
			log.WithError(err).WithField("event_type", e.EventType()).Warn("event dispatch failed")
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrEventDispatch, errors.Join(errs...))
	}
	return nil
}
