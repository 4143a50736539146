package eventhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

// BlobWriter stores an object and returns its URL.
type BlobWriter interface {
	Write(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
}

// archiveEntry is one line of an archived stream. Credentials are left out.
type archiveEntry struct {
	AggregateID int64     `json:"aggregate_id"`
	Version     int       `json:"version"`
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	Login       string    `json:"login,omitempty"`
}

// StreamArchiver exports the full history of an unregistered user as NDJSON.
// Upload failures are logged; the tombstone is already committed.
type StreamArchiver struct {
	store  repository.EventStore
	blobs  BlobWriter
	prefix string
	logger *logrus.Logger
}

func NewStreamArchiver(store repository.EventStore, blobs BlobWriter, prefix string, logger *logrus.Logger) *StreamArchiver {
	if logger == nil {
		logger = logrus.New()
	}
	return &StreamArchiver{store: store, blobs: blobs, prefix: prefix, logger: logger}
}

func (a *StreamArchiver) Handle(ctx context.Context, e event.Event) error {
	ev, ok := e.(entity.UserUnregistered)
	if !ok {
		return unexpected(entity.UserUnregisteredEventType, e)
	}
	id, err := entity.NewUserID(ev.AggregateID())
	if err != nil {
		return err
	}
	history, err := a.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load stream %s for archive: %w", id, err)
	}

	body, err := encodeStream(history)
	if err != nil {
		return err
	}
	object := path.Join(a.prefix, fmt.Sprintf("%s-%s.ndjson", id, ev.EventID()))
	url, err := a.blobs.Write(ctx, object, "application/x-ndjson", bytes.NewReader(body))
	log := a.logger.WithFields(logrus.Fields{"user_id": id.Int64(), "object": object, "events": len(history)})
	if err != nil {
		log.WithError(err).Warn("archive user stream failed")
		return nil
	}
	log.WithField("url", url).Info("user stream archived")
	return nil
}

func encodeStream(history []entity.UserEvent) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range history {
		entry := archiveEntry{
			AggregateID: e.AggregateID(),
			Version:     e.Version(),
			EventID:     e.EventID(),
			EventType:   e.EventType().String(),
			OccurredAt:  e.OccurredAt(),
		}
		switch e := e.(type) {
		case entity.UserRegistered:
			entry.Login = e.Login.String()
		case entity.UserUnregistered:
			entry.Login = e.Login.String()
		}
		if err := enc.Encode(entry); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
