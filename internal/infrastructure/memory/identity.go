package memory

import (
	"context"
	"sync/atomic"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
)

// IdentityGenerator hands out sequential ids starting at 1.
type IdentityGenerator struct {
	last atomic.Int64
}

func NewIdentityGenerator() *IdentityGenerator { return &IdentityGenerator{} }

func (g *IdentityGenerator) NextUserID(_ context.Context) (entity.UserID, error) {
	return entity.NewUserID(g.last.Add(1))
}

func (g *IdentityGenerator) Reset() { g.last.Store(0) }
