// Package esindex projects user views into an Elasticsearch index.
package esindex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

const requestTimeout = 3 * time.Second

type UserReadModel struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

var (
	_ repository.UserReadModelRepository = (*UserReadModel)(nil)
	_ repository.UserSearcher            = (*UserReadModel)(nil)
)

func NewUserReadModel(es *elasticsearch.Client, index string, logger *logrus.Logger) *UserReadModel {
	if logger == nil {
		logger = logrus.New()
	}
	return &UserReadModel{es: es, index: index, logger: logger}
}

type document struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	Active       bool   `json:"active"`
	Enabled      bool   `json:"enabled"`
	Version      int    `json:"version"`
	RegisteredAt string `json:"registered_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toDocument(v repository.UserView) document {
	return document{
		ID:           v.ID,
		Login:        v.Login,
		Active:       v.Active,
		Enabled:      v.Enabled,
		Version:      v.Version,
		RegisteredAt: v.RegisteredAt.Format(time.RFC3339Nano),
		UpdatedAt:    v.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (d document) view() repository.UserView {
	reg, _ := time.Parse(time.RFC3339Nano, d.RegisteredAt)
	upd, _ := time.Parse(time.RFC3339Nano, d.UpdatedAt)
	return repository.UserView{
		ID:           d.ID,
		Login:        d.Login,
		Active:       d.Active,
		Enabled:      d.Enabled,
		Version:      d.Version,
		RegisteredAt: reg,
		UpdatedAt:    upd,
	}
}

// Save indexes the view using the stream version as an external version, so
// a late write of an older projection is rejected by Elasticsearch.
func (m *UserReadModel) Save(ctx context.Context, v repository.UserView) error {
	b, err := json.Marshal(toDocument(v))
	if err != nil {
		return err
	}
	version := v.Version
	req := esapi.IndexRequest{
		Index:       m.index,
		DocumentID:  strconv.FormatInt(v.ID, 10),
		Body:        strings.NewReader(string(b)),
		Version:     &version,
		VersionType: "external_gte",
		Refresh:     "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, m.es)
	if err != nil {
		m.logger.WithError(err).WithField("user_id", v.ID).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusConflict {
		m.logger.WithField("status", res.Status()).WithField("user_id", v.ID).Warn("es index response error")
		return fmt.Errorf("es index user %d: %s", v.ID, res.Status())
	}
	return nil
}

func (m *UserReadModel) Get(ctx context.Context, id int64) (repository.UserView, error) {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := m.es.Get(m.index, strconv.FormatInt(id, 10), m.es.Get.WithContext(c))
	if err != nil {
		return repository.UserView{}, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == http.StatusNotFound {
		return repository.UserView{}, entity.ErrUserNotFound
	}
	if res.IsError() {
		return repository.UserView{}, fmt.Errorf("es get user %d: %s", id, res.Status())
	}
	var parsed struct {
		Found  bool     `json:"found"`
		Source document `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return repository.UserView{}, err
	}
	if !parsed.Found {
		return repository.UserView{}, entity.ErrUserNotFound
	}
	return parsed.Source.view(), nil
}

func (m *UserReadModel) Remove(ctx context.Context, id int64) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := m.es.Delete(m.index, strconv.FormatInt(id, 10), m.es.Delete.WithContext(c))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete user %d: %s", id, res.Status())
	}
	return nil
}

// Search runs a prefix-aware match on the login field.
func (m *UserReadModel) Search(ctx context.Context, q string, size int) ([]repository.UserView, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"type":   "bool_prefix",
				"fields": []string{"login", "login._2gram", "login._3gram"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := m.es.Search(m.es.Search.WithContext(c), m.es.Search.WithIndex(m.index), m.es.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]repository.UserView, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.view())
	}
	return out, nil
}

// EnsureIndex creates the index with a search_as_you_type login field when
// it does not exist yet.
func (m *UserReadModel) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := m.es.Indices.Exists([]string{m.index}, m.es.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := `{"mappings":{"properties":{
		"id":{"type":"long"},
		"login":{"type":"search_as_you_type"},
		"active":{"type":"boolean"},
		"enabled":{"type":"boolean"},
		"version":{"type":"integer"},
		"registered_at":{"type":"date"},
		"updated_at":{"type":"date"}}}}`
	res, err = m.es.Indices.Create(m.index, m.es.Indices.Create.WithBody(strings.NewReader(mapping)), m.es.Indices.Create.WithContext(c))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("es create index %s: %s", m.index, res.Status())
	}
	m.logger.WithField("index", m.index).Info("es index ready")
	return nil
}
