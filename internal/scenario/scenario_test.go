package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_Lookup(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		first float64
		last  float64
	}{
		{"RCP2.6", 71, 3.4734, 294.2595},
		{"rcp45", 70, 8.0706, 347.474},
		{"RCP 8.5", 70, 9.5984, 541.446},
		{"stability_low", 71, 2.7, 213},
		{"StabilityHigh", 71, 6.4, 1331.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Series(tt.name)
			require.True(t, ok)
			require.Len(t, s, tt.n)
			assert.Equal(t, tt.first, s[0])
			assert.Equal(t, tt.last, s[len(s)-1])
		})
	}

	_, ok := Series("RCP6.0")
	assert.False(t, ok)
}

func TestSeries_ReturnsCopy(t *testing.T) {
	s, _ := Series(RCP26)
	s[0] = -1
	again, _ := Series(RCP26)
	assert.Equal(t, 3.4734, again[0])
}

func TestPresetSeriesAreMonotonic(t *testing.T) {
	for _, name := range Names() {
		s, _ := Series(name)
		for i := 1; i < len(s); i++ {
			if s[i] < s[i-1] {
				t.Errorf("%s decreases at step %d: %v -> %v", name, i, s[i-1], s[i])
			}
		}
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{RCP26, RCP45, RCP85, StabilityHigh, StabilityLow}, Names())
	assert.Equal(t, []string{RCP26, RCP45, RCP85}, RCPNames())
}

func TestIslands(t *testing.T) {
	islands := Islands()
	require.Len(t, islands, 4)
	for _, is := range islands {
		assert.NoError(t, is.Calibration.Validate(), is.Name)
		assert.Equal(t, DefaultDangerThresholdMeters, is.DangerThresholdMeters)
	}

	tuvalu, ok := LookupIsland("tuvalu")
	require.True(t, ok)
	assert.Equal(t, 3.0, tuvalu.CutoffMeters)

	marshall, ok := LookupIsland("Marshall Islands")
	require.True(t, ok)
	assert.Equal(t, 0.00035, marshall.Calibration.Scale)

	_, ok = LookupIsland("Atlantis")
	assert.False(t, ok)
}
