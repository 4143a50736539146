package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

// UserReadModel stores projections in the user_views table.
type UserReadModel struct {
	pool *pgxpool.Pool
}

func NewUserReadModel(pool *pgxpool.Pool) *UserReadModel {
	return &UserReadModel{pool: pool}
}

func (m *UserReadModel) Save(ctx context.Context, v repository.UserView) error {
	_, err := m.pool.Exec(ctx, `
		INSERT INTO user_views (id, login, active, enabled, version, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET login = EXCLUDED.login, active = EXCLUDED.active, enabled = EXCLUDED.enabled,
		    version = EXCLUDED.version, updated_at = EXCLUDED.updated_at
		WHERE user_views.version < EXCLUDED.version
	`, v.ID, v.Login, v.Active, v.Enabled, v.Version, v.RegisteredAt, v.UpdatedAt)
	return err
}

func (m *UserReadModel) Get(ctx context.Context, id int64) (repository.UserView, error) {
	var v repository.UserView
	row := m.pool.QueryRow(ctx, `
		SELECT id, login, active, enabled, version, registered_at, updated_at
		FROM user_views
		WHERE id = $1
	`, id)
	if err := row.Scan(&v.ID, &v.Login, &v.Active, &v.Enabled, &v.Version, &v.RegisteredAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.UserView{}, entity.ErrUserNotFound
		}
		return repository.UserView{}, err
	}
	return v, nil
}

func (m *UserReadModel) Remove(ctx context.Context, id int64) error {
	_, err := m.pool.Exec(ctx, `DELETE FROM user_views WHERE id = $1`, id)
	return err
}

func (m *UserReadModel) Search(ctx context.Context, q string, size int) ([]repository.UserView, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	rows, err := m.pool.Query(ctx, `
		SELECT id, login, active, enabled, version, registered_at, updated_at
		FROM user_views
		WHERE login ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2
	`, q, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.UserView, 0)
	for rows.Next() {
		var v repository.UserView
		if err := rows.Scan(&v.ID, &v.Login, &v.Active, &v.Enabled, &v.Version, &v.RegisteredAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
