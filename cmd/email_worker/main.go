package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/config"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-user-lifecycle/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-lifecycle/pkg/mailer/templates"
)

// email_worker consumes account email jobs queued by the queue notifier and
// delivers them through Mailgun.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		logger.WithError(err).Fatal("amqp consumer")
	}
	defer consumer.Close()
	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				logger.WithError(err).Warn("bad message")
				_ = msg.Nack(false, false)
				continue
			}
			log := logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template, "event_id": job.EventID})

			out, err := render(&job)
			if err != nil {
				log.WithError(err).Warn("render failed")
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			id, err := mg.Send(c, out)
			cancel()
			if err != nil {
				log.WithError(err).Warn("send failed, requeueing")
				_ = msg.Nack(false, !msg.Redelivered)
				continue
			}
			_ = msg.Ack(false)
			log.WithField("mailgun_id", id).Info("email sent")
		}
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// render fills subject and bodies from the job's template, or passes the
// literal fields through when no template is named.
func render(job *mailer.EmailJob) (mailer.Message, error) {
	out := mailer.Message{
		To:      job.To,
		Subject: job.Subject,
		Text:    job.Text,
		HTML:    job.HTML,
		EventID: job.EventID,
		Tag:     job.Template,
	}
	if job.Template == "" {
		return out, nil
	}
	helpers.EnsureRecipient(job)
	var err error
	out.Subject, out.Text, out.HTML, err = mailtpl.Render(job.Template, job.Data)
	return out, err
}
