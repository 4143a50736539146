package notifier

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-user-lifecycle/config"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-lifecycle/pkg/mailer/templates"
)

// Publisher puts a JSON message on the email queue. helpers.RabbitPublisher
// satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier turns notices into email jobs for the email worker.
type QueueNotifier struct {
	pub Publisher
	cfg *config.Config
}

func NewQueueNotifier(pub Publisher, cfg *config.Config) *QueueNotifier {
	return &QueueNotifier{pub: pub, cfg: cfg}
}

func (n *QueueNotifier) Notify(ctx context.Context, user repository.UserView, e event.Event) error {
	job := n.Job(user, e)
	if err := n.pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("queue %s email: %w", e.EventType(), err)
	}
	return nil
}

// Job builds the email job for e without publishing it.
func (n *QueueNotifier) Job(user repository.UserView, e event.Event) mailer.EmailJob {
	opts := []mailtpl.Option{
		mailtpl.WithUserID(user.ID),
		mailtpl.WithTime(e.OccurredAt()),
	}
	if reg, ok := e.(entity.UserRegistered); ok {
		opts = append(opts, mailtpl.WithActivationURL(n.cfg.ActivationURL, reg.ActivationHash))
	}
	data := mailtpl.NewAccountData(n.cfg, e.EventType().String(), user.Login, opts...)
	return mailer.EmailJob{
		To:       user.Login,
		Template: mailtpl.Account,
		Data:     mailtpl.ToMap(data),
		EventID:  e.EventID(),
	}
}
