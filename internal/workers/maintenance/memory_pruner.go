package maintenance

import (
	"context"
	"time"

	"minerva/internal/workers"
	"minerva/pkg/errors"
)

// memoryStore exposes the maintenance surface of the decision memory
// service.
type memoryStore interface {
	Prune(ctx context.Context) (int64, error)
}

// MemoryPruner periodically removes expired decision memories so
// vector search stays bounded.
type MemoryPruner struct {
	*workers.BaseWorker
	memories memoryStore
}

// NewMemoryPruner creates the memory sweep worker.
func NewMemoryPruner(memories memoryStore, interval time.Duration, enabled bool) *MemoryPruner {
	return &MemoryPruner{
		BaseWorker: workers.NewBaseWorker("memory_pruner", interval, enabled),
		memories:   memories,
	}
}

// Run deletes expired memory entries in one pass.
func (mp *MemoryPruner) Run(ctx context.Context) error {
	pruned, err := mp.memories.Prune(ctx)
	if err != nil {
		return errors.Wrap(err, "prune memories")
	}
	if pruned > 0 {
		mp.Log().Infow("Expired memories pruned", "count", pruned)
	}
	return nil
}
