package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const indefiniteLabel = "indefinite"

// maxProjectionDays bounds the stockout date projection so date arithmetic
// cannot overflow for near-zero demand.
const maxProjectionDays = 1 << 31

// Coverage is either a finite span (days of inventory, months of runway) or
// indefinite when nothing is consuming the resource. The zero value is a
// finite coverage of zero.
type Coverage struct {
	days       float64
	indefinite bool
}

// FiniteCoverage returns a finite coverage. Non-finite or negative inputs
// collapse to Indefinite and zero respectively so that no Inf or NaN can be
// carried forward.
func FiniteCoverage(days float64) Coverage {
	if math.IsInf(days, 0) || math.IsNaN(days) {
		return IndefiniteCoverage()
	}
	if days < 0 {
		days = 0
	}
	return Coverage{days: days}
}

// IndefiniteCoverage returns the "never runs out" coverage.
func IndefiniteCoverage() Coverage {
	return Coverage{indefinite: true}
}

// Days returns the finite number of days and true, or 0 and false when the
// coverage is indefinite.
func (c Coverage) Days() (float64, bool) {
	if c.indefinite {
		return 0, false
	}
	return c.days, true
}

func (c Coverage) IsIndefinite() bool { return c.indefinite }

// ShortfallAgainst returns how many days the coverage falls short of the
// given horizon, never negative. Indefinite coverage never falls short.
func (c Coverage) ShortfallAgainst(horizon float64) float64 {
	if c.indefinite {
		return 0
	}
	return math.Max(0, horizon-c.days)
}

// StockoutDate returns asOf's calendar day plus the whole days of coverage.
// ok is false when the coverage is indefinite or beyond the projection range.
// Only meaningful when the coverage is measured in days.
func (c Coverage) StockoutDate(asOf time.Time) (t time.Time, ok bool) {
	if c.indefinite {
		return time.Time{}, false
	}
	whole := math.Floor(c.days)
	if whole > maxProjectionDays {
		return time.Time{}, false
	}
	y, m, d := asOf.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, asOf.Location()).AddDate(0, 0, int(whole)), true
}

func (c Coverage) String() string {
	if c.indefinite {
		return indefiniteLabel
	}
	return fmt.Sprintf("%.2f", c.days)
}

// MarshalJSON writes a number for finite coverage and "indefinite" otherwise.
func (c Coverage) MarshalJSON() ([]byte, error) {
	if c.indefinite {
		return json.Marshal(indefiniteLabel)
	}
	return json.Marshal(c.days)
}

func (c *Coverage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		if label != indefiniteLabel {
			return fmt.Errorf("coverage: unknown label %q", label)
		}
		*c = IndefiniteCoverage()
		return nil
	}

	var days float64
	if err := json.Unmarshal(data, &days); err != nil {
		return fmt.Errorf("coverage: %w", err)
	}
	*c = FiniteCoverage(days)
	return nil
}
