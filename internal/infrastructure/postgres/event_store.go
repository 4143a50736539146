package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/eventcodec"
)

// ErrConcurrentWrite is returned when another writer already appended the
// same version of a stream.
var ErrConcurrentWrite = errors.New("concurrent write to user stream")

const uniqueViolation = "23505"

type EventStore struct {
	pool  *pgxpool.Pool
	codec *eventcodec.Codec
}

var _ repository.EventStore = (*EventStore)(nil)

func NewEventStore(pool *pgxpool.Pool, codec *eventcodec.Codec) *EventStore {
	return &EventStore{pool: pool, codec: codec}
}

func (s *EventStore) Append(ctx context.Context, id entity.UserID, e entity.UserEvent) error {
	rec, err := s.codec.Encode(e)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_events (aggregate_id, version, event_id, event_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id.Int64(), rec.Version, rec.EventID, rec.EventType, []byte(rec.Payload), rec.OccurredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: user %s version %d", ErrConcurrentWrite, id, rec.Version)
		}
		return err
	}
	return nil
}

func (s *EventStore) Load(ctx context.Context, id entity.UserID) ([]entity.UserEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT aggregate_id, version, event_id, event_type, payload, occurred_at
		FROM user_events
		WHERE aggregate_id = $1
		ORDER BY version
	`, id.Int64())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.UserEvent, 0)
	for rows.Next() {
		var rec eventcodec.Record
		var payload []byte
		if err := rows.Scan(&rec.AggregateID, &rec.Version, &rec.EventID, &rec.EventType, &payload, &rec.OccurredAt); err != nil {
			return nil, err
		}
		rec.Payload = payload
		e, err := s.codec.Decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *EventStore) AggregateIDs(ctx context.Context) ([]entity.UserID, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT aggregate_id FROM user_events ORDER BY aggregate_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []entity.UserID
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		id, err := entity.NewUserID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
