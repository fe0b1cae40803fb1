package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		tiers    []int
		expected int
	}{
		{
			name:     "value below first bracket selects first tier",
			value:    500,
			tiers:    WeightTiers,
			expected: 1000,
		},
		{
			name:     "value between brackets rounds up",
			value:    2500,
			tiers:    WeightTiers,
			expected: 4000,
		},
		{
			name:     "value exactly on boundary selects that tier",
			value:    4000,
			tiers:    WeightTiers,
			expected: 4000,
		},
		{
			name:     "value just above boundary moves up",
			value:    4000.01,
			tiers:    WeightTiers,
			expected: 6000,
		},
		{
			name:     "value above all brackets clamps to largest",
			value:    25000,
			tiers:    WeightTiers,
			expected: 8000,
		},
		{
			name:     "zero selects first tier",
			value:    0,
			tiers:    VolumeTiers,
			expected: 300,
		},
		{
			name:     "volume clamp",
			value:    5000,
			tiers:    VolumeTiers,
			expected: 1500,
		},
		{
			name:     "distance boundary",
			value:    250,
			tiers:    DistanceTiers,
			expected: 250,
		},
		{
			name:     "square footage mid bracket",
			value:    1200,
			tiers:    SquareFootageTiers,
			expected: 1500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectTier(tt.value, tt.tiers))
		})
	}
}

func TestSelectTierIndex(t *testing.T) {
	assert.Equal(t, 0, SelectTierIndex(100, WeightTiers))
	assert.Equal(t, 2, SelectTierIndex(3000, WeightTiers))
	assert.Equal(t, len(WeightTiers)-1, SelectTierIndex(99999, WeightTiers))
}

func TestTierKeys(t *testing.T) {
	assert.Equal(t, "w4000", WeightTierKey(4000))
	assert.Equal(t, "v600", VolumeTierKey(600))
	assert.Equal(t, "s2500", SquareFootageTierKey(2500))
	assert.Equal(t, "d1000", DistanceTierKey(1000))
}

func TestFlatDistanceKey(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		expected string
	}{
		{name: "local move", distance: 30, expected: "local"},
		{name: "local boundary inclusive", distance: 50, expected: "local"},
		{name: "just beyond local", distance: 51, expected: "d500"},
		{name: "mid bracket", distance: 750, expected: "d1000"},
		{name: "bracket boundary", distance: 1000, expected: "d1000"},
		{name: "beyond all brackets clamps", distance: 3000, expected: "d1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FlatDistanceKey(tt.distance))
		})
	}
}

func TestIsLocalMove(t *testing.T) {
	assert.True(t, IsLocalMove(0))
	assert.True(t, IsLocalMove(50))
	assert.False(t, IsLocalMove(50.5))
}
