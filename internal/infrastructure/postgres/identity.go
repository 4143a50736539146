package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
)

// IdentityGenerator draws user ids from the user_id_seq sequence.
type IdentityGenerator struct {
	pool *pgxpool.Pool
}

func NewIdentityGenerator(pool *pgxpool.Pool) *IdentityGenerator {
	return &IdentityGenerator{pool: pool}
}

func (g *IdentityGenerator) NextUserID(ctx context.Context) (entity.UserID, error) {
	var v int64
	if err := g.pool.QueryRow(ctx, `SELECT nextval('user_id_seq')`).Scan(&v); err != nil {
		return entity.UserID{}, err
	}
	return entity.NewUserID(v)
}
