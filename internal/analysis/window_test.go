package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowStart(t *testing.T) {
	tests := []struct {
		name string
		now  string
		want string
	}{
		{
			name: "mid july looks back to june",
			now:  "2024-07-10",
			want: "2024-06-21",
		},
		{
			name: "month starting on a friday",
			now:  "2024-01-05", // December 2023 starts on a Friday
			want: "2023-12-15",
		},
		{
			name: "year boundary",
			now:  "2025-01-10",
			want: "2024-12-20",
		},
		{
			name: "february target",
			now:  "2024-03-01",
			want: "2024-02-16",
		},
		{
			name: "independent of day within month",
			now:  "2024-07-31",
			want: "2024-06-21",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse("2006-01-02", tt.now)
			assert.NoError(t, err)
			got := WindowStart(now)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.Friday, got.Weekday())
		})
	}
}
