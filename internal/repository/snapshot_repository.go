package repository

import (
	"context"

	"github.com/andresuchdata/replenish-planner/internal/domain"
)

// SnapshotRepository loads planning inputs from a source of record.
type SnapshotRepository interface {
	ListSnapshots(ctx context.Context, filter domain.SKUFilter) ([]domain.SKUSnapshot, error)
}

func applyFilter(rows []domain.SKUSnapshot, filter domain.SKUFilter) []domain.SKUSnapshot {
	out := make([]domain.SKUSnapshot, 0, len(rows))
	for _, r := range rows {
		if !filter.Matches(r) {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out
}
