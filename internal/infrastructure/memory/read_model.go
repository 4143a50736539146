package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

type UserReadModel struct {
	mu    sync.RWMutex
	views map[int64]repository.UserView
}

func NewUserReadModel() *UserReadModel {
	return &UserReadModel{views: make(map[int64]repository.UserView)}
}

func (m *UserReadModel) Save(_ context.Context, v repository.UserView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[v.ID] = v
	return nil
}

func (m *UserReadModel) Get(_ context.Context, id int64) (repository.UserView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.views[id]
	if !ok {
		return repository.UserView{}, entity.ErrUserNotFound
	}
	return v, nil
}

func (m *UserReadModel) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.views, id)
	return nil
}

// Search matches q as a case-insensitive substring of the login.
func (m *UserReadModel) Search(_ context.Context, q string, size int) ([]repository.UserView, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	q = strings.ToLower(strings.TrimSpace(q))
	m.mu.RLock()
	out := make([]repository.UserView, 0)
	for _, v := range m.views {
		if strings.Contains(strings.ToLower(v.Login), q) {
			out = append(out, v)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}
