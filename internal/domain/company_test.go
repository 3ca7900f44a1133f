package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPartition(t *testing.T) {
	cases := []struct {
		name    string
		current float64
		max     float64
		want    Status
	}{
		{"below threshold", 80, 100, StatusGood},
		{"just below", 99.999, 100, StatusGood},
		{"exactly at threshold", 100, 100, StatusModerate},
		{"just above", 100.001, 100, StatusBad},
		{"well above", 150, 100, StatusBad},
		{"zero reading", 0, 100, StatusGood},
		{"zero threshold nonzero reading", 1, 0, StatusBad},
		{"both zero", 0, 0, StatusModerate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.current, tc.max))
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	// Every pair lands in exactly one tier; no gaps, no overlaps.
	for _, current := range []float64{0, 0.5, 1, 99.999, 100, 100.001, 1e9} {
		for _, max := range []float64{0.001, 1, 100, 1e9} {
			got := Classify(current, max)
			require.Contains(t, []Status{StatusGood, StatusModerate, StatusBad}, got)
			switch {
			case current < max:
				require.Equal(t, StatusGood, got)
			case current == max:
				require.Equal(t, StatusModerate, got)
			default:
				require.Equal(t, StatusBad, got)
			}
		}
	}
}

func TestReclassifyIdempotent(t *testing.T) {
	c := &Company{CurrentAmount: 80, MaxAllowed: 100}
	c.Reclassify()
	require.Equal(t, StatusGood, c.Status)

	// Re-running on unchanged state never flips the status.
	for i := 0; i < 5; i++ {
		c.Reclassify()
		require.Equal(t, StatusGood, c.Status)
	}
}

func TestSetReadingReclassifies(t *testing.T) {
	c := &Company{MaxAllowed: 100}
	c.Reclassify()
	require.Equal(t, StatusGood, c.Status)

	c.SetReading(150)
	assert.Equal(t, StatusBad, c.Status)

	c.SetReading(100)
	assert.Equal(t, StatusModerate, c.Status)

	c.SetThreshold(200)
	assert.Equal(t, StatusGood, c.Status)
}
