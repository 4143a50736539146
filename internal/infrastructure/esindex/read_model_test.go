package esindex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

// fakeES answers the handful of document APIs the read model uses.
type fakeES struct {
	mu       sync.Mutex
	docs     map[string]json.RawMessage
	versions map[string]string
	indexed  bool
	queries  []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodHead:
		if !f.indexed {
			w.WriteHeader(http.StatusNotFound)
		}
	case len(parts) == 1 && r.Method == http.MethodPut:
		f.indexed = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case len(parts) == 2 && parts[1] == "_search":
		f.queries = append(f.queries, string(body))
		hits := make([]string, 0, len(f.docs))
		for _, d := range f.docs {
			hits = append(hits, `{"_source":`+string(d)+`}`)
		}
		_, _ = w.Write([]byte(`{"hits":{"hits":[` + strings.Join(hits, ",") + `]}}`))
	case len(parts) == 3 && parts[1] == "_doc":
		id := parts[2]
		switch r.Method {
		case http.MethodPut, http.MethodPost:
			v := r.URL.Query().Get("version")
			if old, ok := f.versions[id]; ok && v < old {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"version_conflict_engine_exception"}`))
				return
			}
			f.docs[id] = body
			f.versions[id] = v
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		case http.MethodGet:
			d, ok := f.docs[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"found":false}`))
				return
			}
			_, _ = w.Write([]byte(`{"found":true,"_source":` + string(d) + `}`))
		case http.MethodDelete:
			if _, ok := f.docs[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"result":"not_found"}`))
				return
			}
			delete(f.docs, id)
			_, _ = w.Write([]byte(`{"result":"deleted"}`))
		}
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unsupported"}`))
	}
}

func newReadModel(t *testing.T) (*UserReadModel, *fakeES) {
	t.Helper()
	fake := &fakeES{docs: map[string]json.RawMessage{}, versions: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewUserReadModel(es, "users", l), fake
}

func TestUserReadModel_SaveGetRemove(t *testing.T) {
	ctx := context.Background()
	m, _ := newReadModel(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := m.Get(ctx, 1)
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	require.NoError(t, m.Save(ctx, repository.UserView{ID: 1, Login: "a@b.com", Active: true, Version: 2, RegisteredAt: now, UpdatedAt: now}))
	v, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", v.Login)
	assert.True(t, v.Active)
	assert.Equal(t, 2, v.Version)
	assert.True(t, now.Equal(v.RegisteredAt))

	require.NoError(t, m.Remove(ctx, 1))
	_, err = m.Get(ctx, 1)
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	assert.NoError(t, m.Remove(ctx, 1), "removing twice is fine")
}

func TestUserReadModel_StaleWriteIsIgnored(t *testing.T) {
	ctx := context.Background()
	m, _ := newReadModel(t)

	require.NoError(t, m.Save(ctx, repository.UserView{ID: 1, Login: "a@b.com", Enabled: true, Version: 3}))
	require.NoError(t, m.Save(ctx, repository.UserView{ID: 1, Login: "a@b.com", Version: 2}))

	v, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, v.Enabled)
	assert.Equal(t, 3, v.Version)
}

func TestUserReadModel_Search(t *testing.T) {
	ctx := context.Background()
	m, fake := newReadModel(t)
	require.NoError(t, m.Save(ctx, repository.UserView{ID: 1, Login: "alice@example.com", Version: 1}))

	res, err := m.Search(ctx, "ali", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "alice@example.com", res[0].Login)

	require.Len(t, fake.queries, 1)
	assert.Contains(t, fake.queries[0], `"bool_prefix"`)
	assert.Contains(t, fake.queries[0], `"size":10`)
}

func TestUserReadModel_EnsureIndex(t *testing.T) {
	ctx := context.Background()
	m, fake := newReadModel(t)

	require.NoError(t, m.EnsureIndex(ctx))
	assert.True(t, fake.indexed)
	require.NoError(t, m.EnsureIndex(ctx))
}
