package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowDays_GardnerKnopoff(t *testing.T) {
	assert.InDelta(t, 31.62, WindowDays(6.0), 0.01)
	assert.InDelta(t, 10.0, WindowDays(5.0), 1e-9)
	assert.InDelta(t, 100.0, WindowDays(7.0), 1e-9)
}

func TestDisplayHorizon(t *testing.T) {
	mainshock := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("window dominates quiet sequences", func(t *testing.T) {
		late := mainshock.Add(24 * time.Hour)
		horizon := DisplayHorizon(mainshock, 5.0, []time.Time{late})
		assert.Equal(t, mainshock.Add(10*24*time.Hour), horizon)
	})

	t.Run("long-running sequence extends past window", func(t *testing.T) {
		straggler := mainshock.Add(15 * 24 * time.Hour)
		horizon := DisplayHorizon(mainshock, 5.0, []time.Time{straggler})
		assert.Equal(t, straggler, horizon)
	})

	t.Run("no aftershocks", func(t *testing.T) {
		horizon := DisplayHorizon(mainshock, 6.0, nil)
		assert.Equal(t, mainshock.Add(Window(6.0)), horizon)
	})
}

func TestAutoGranularity(t *testing.T) {
	tests := []struct {
		name string
		span time.Duration
		want time.Duration
	}{
		{"short sequence snaps to hourly", 100 * time.Hour, time.Hour},
		{"ten days", 10 * 24 * time.Hour, 2 * time.Hour},
		{"two months", 60 * 24 * time.Hour, 6 * time.Hour},
		{"half year", 180 * 24 * time.Hour, 24 * time.Hour},
		{"degenerate span", 0, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AutoGranularity(tt.span))
		})
	}
}
