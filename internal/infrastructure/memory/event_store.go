// Package memory holds process-local implementations of the repository ports.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
)

// EventStore keeps user streams in memory. Share one instance between
// repositories to get the same history for the lifetime of the process.
type EventStore struct {
	mu      sync.RWMutex
	streams map[int64][]entity.UserEvent
}

func NewEventStore() *EventStore {
	return &EventStore{streams: make(map[int64][]entity.UserEvent)}
}

func (s *EventStore) Append(_ context.Context, id entity.UserID, e entity.UserEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams[id.Int64()] = append(s.streams[id.Int64()], e)
	return nil
}

func (s *EventStore) Load(_ context.Context, id entity.UserID) ([]entity.UserEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stream := s.streams[id.Int64()]
	out := make([]entity.UserEvent, len(stream))
	copy(out, stream)
	return out, nil
}

// Reset drops every stream.
func (s *EventStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams = make(map[int64][]entity.UserEvent)
}

// AggregateIDs lists every id with at least one event, in ascending order.
func (s *EventStore) AggregateIDs(_ context.Context) ([]entity.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]entity.UserID, 0, len(s.streams))
	for k := range s.streams {
		id, err := entity.NewUserID(k)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Int64() < ids[j].Int64() })
	return ids, nil
}
