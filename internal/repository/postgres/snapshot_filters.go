package postgres

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/replenish-planner/internal/domain"
	"github.com/lib/pq"
)

// buildSnapshotFilterClause turns a SKUFilter into a WHERE fragment and its args.
func buildSnapshotFilterClause(filter domain.SKUFilter, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if len(filter.SKUs) > 0 {
		clauses = append(clauses, fmt.Sprintf("LOWER(sku) = ANY($%d)", idx))
		args = append(args, pq.Array(lowerAll(filter.SKUs)))
		idx++
	}

	if len(filter.Brands) > 0 {
		clauses = append(clauses, fmt.Sprintf("LOWER(brand) = ANY($%d)", idx))
		args = append(args, pq.Array(lowerAll(filter.Brands)))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
