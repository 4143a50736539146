// Package notifier delivers user lifecycle notices.
package notifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

// LogNotifier writes notices to the application log. It is the default for
// local development.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, user repository.UserView, e event.Event) error {
	fields := logrus.Fields{
		"user_id":    user.ID,
		"login":      user.Login,
		"event_type": e.EventType(),
		"event_id":   e.EventID(),
	}
	if reg, ok := e.(entity.UserRegistered); ok {
		fields["activation_hash"] = reg.ActivationHash
	}
	n.logger.WithFields(fields).Info("user notified")
	return nil
}
