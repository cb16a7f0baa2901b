package replenishment

import "github.com/andresuchdata/replenish-planner/internal/scenario"

// Validate checks every field of the snapshot and returns a
// *scenario.ValidationError listing all violations, or nil.
func (s Snapshot) Validate() error {
	return scenario.ValidateStruct(s)
}
