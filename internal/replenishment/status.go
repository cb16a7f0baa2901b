package replenishment

import "github.com/andresuchdata/replenish-planner/internal/scenario"

// Classify applies the fixed-priority status rule to a stock level:
// at or below safety stock is critical, at or below the reorder point is a
// warning, anything above is healthy. There is no hysteresis.
func Classify(totalStock, safetyStock, reorderPoint int64) scenario.RiskStatus {
	switch {
	case totalStock <= safetyStock:
		return scenario.Critical
	case totalStock <= reorderPoint:
		return scenario.Warning
	default:
		return scenario.Healthy
	}
}
