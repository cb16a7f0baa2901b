package scenario

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiniteCoverage_GuardsNonFinite(t *testing.T) {
	t.Parallel()
	assert.True(t, FiniteCoverage(math.Inf(1)).IsIndefinite())
	assert.True(t, FiniteCoverage(math.NaN()).IsIndefinite())

	days, ok := FiniteCoverage(-3).Days()
	assert.True(t, ok)
	assert.Zero(t, days)
}

func TestCoverage_ShortfallAgainst(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 9.5, FiniteCoverage(12.5).ShortfallAgainst(22))
	assert.Zero(t, FiniteCoverage(25).ShortfallAgainst(22))
	assert.Zero(t, IndefiniteCoverage().ShortfallAgainst(1000))
}

func TestCoverage_StockoutDate(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("WIB", 7*3600)
	asOf := time.Date(2025, time.February, 27, 22, 45, 0, 0, loc)

	date, ok := FiniteCoverage(2.9).StockoutDate(asOf)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, loc), date)

	_, ok = IndefiniteCoverage().StockoutDate(asOf)
	assert.False(t, ok)

	_, ok = FiniteCoverage(1e15).StockoutDate(asOf)
	assert.False(t, ok)
}

func TestCoverage_JSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		coverage Coverage
		want     string
	}{
		{name: "finite", coverage: FiniteCoverage(12.5), want: `12.5`},
		{name: "indefinite", coverage: IndefiniteCoverage(), want: `"indefinite"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw, err := json.Marshal(tt.coverage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(raw))

			var back Coverage
			require.NoError(t, json.Unmarshal(raw, &back))
			assert.Equal(t, tt.coverage, back)
		})
	}

	var c Coverage
	assert.Error(t, json.Unmarshal([]byte(`"forever"`), &c))
}

func TestCoverage_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "indefinite", IndefiniteCoverage().String())
	assert.Equal(t, "12.50", FiniteCoverage(12.5).String())
}
