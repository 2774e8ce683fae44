package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

func obs(pairs ...interface{}) []models.Observation {
	out := make([]models.Observation, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, models.Observation{
			Date:  pairs[i].(string),
			Value: pairs[i+1].(float64),
		})
	}
	return out
}

func TestMaxMissing(t *testing.T) {
	tests := []struct {
		refDates int
		want     int
	}{
		{refDates: 60, want: 3},
		{refDates: 20, want: 1},
		{refDates: 19, want: 0},
		{refDates: 100, want: 5},
		{refDates: 0, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaxMissing(tt.refDates), "refDates=%d", tt.refDates)
	}
}

func TestMissingDates(t *testing.T) {
	ref := []string{"2024-07-01", "2024-07-02", "2024-07-03", "2024-07-05"}
	candidate := obs("2024-07-01", 1.0, "2024-07-03", 3.0)

	missing := MissingDates(ref, candidate)
	assert.Equal(t, []string{"2024-07-02", "2024-07-05"}, missing)

	assert.Empty(t, MissingDates(nil, candidate))
	assert.Equal(t, ref, MissingDates(ref, nil))
}

func TestForwardFill(t *testing.T) {
	t.Run("fills gap with most recent prior value", func(t *testing.T) {
		candidate := obs(
			"2024-07-01", 10.0,
			"2024-07-02", 11.0,
			"2024-07-04", 13.0,
			"2024-07-05", 14.0,
		)
		filled, ok := ForwardFill(candidate, []string{"2024-07-03"})
		require.True(t, ok)
		require.Len(t, filled, 5)
		assert.Equal(t, "2024-07-03", filled[2].Date)
		assert.Equal(t, 11.0, filled[2].Value, "gap takes the value observed at 2024-07-02")
	})

	t.Run("result stays sorted with multiple gaps", func(t *testing.T) {
		candidate := obs("2024-07-01", 1.0, "2024-07-04", 4.0)
		filled, ok := ForwardFill(candidate, []string{"2024-07-02", "2024-07-03", "2024-07-05"})
		require.True(t, ok)
		require.Len(t, filled, 5)
		for i := 1; i < len(filled); i++ {
			assert.Less(t, filled[i-1].Date, filled[i].Date)
		}
		assert.Equal(t, 1.0, filled[1].Value)
		assert.Equal(t, 1.0, filled[2].Value)
		assert.Equal(t, 4.0, filled[4].Value)
	})

	t.Run("rejects when missing date precedes all data", func(t *testing.T) {
		candidate := obs("2024-07-02", 2.0, "2024-07-03", 3.0)
		_, ok := ForwardFill(candidate, []string{"2024-07-01"})
		assert.False(t, ok, "a gap before the first observation cannot be carried forward")
	})

	t.Run("no gaps is a passthrough", func(t *testing.T) {
		candidate := obs("2024-07-01", 1.0, "2024-07-02", 2.0)
		filled, ok := ForwardFill(candidate, nil)
		require.True(t, ok)
		assert.Equal(t, candidate, filled)
	})
}

func TestAlign(t *testing.T) {
	ref := obs(
		"2024-07-01", 100.0,
		"2024-07-02", 101.0,
		"2024-07-03", 102.0,
	)
	candidate := obs(
		"2024-06-30", 9.0, // before the window, dropped by the join
		"2024-07-01", 10.0,
		"2024-07-03", 12.0,
	)

	dates, refValues, candValues := Align(ref, candidate)

	assert.Equal(t, []string{"2024-07-01", "2024-07-03"}, dates)
	assert.Equal(t, []float64{100.0, 102.0}, refValues)
	assert.Equal(t, []float64{10.0, 12.0}, candValues)
}
