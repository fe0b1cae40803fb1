// Package pricing implements rate schedule normalization and the per-method
// sample charge calculators for tariff documents.
package pricing

import (
	"fmt"

	"github.com/movedocs/tariffworks/utils"
)

// Published rate brackets. Values are upper bounds; the last tier of each
// table also absorbs anything above it (rates are clamped, never
// extrapolated, because the only consumer is illustrative document content).
var (
	WeightTiers        = []int{1000, 2000, 4000, 6000, 8000}
	VolumeTiers        = []int{300, 600, 1000, 1500}
	DistanceTiers      = []int{250, 500, 1000, 1500}
	SquareFootageTiers = []int{1000, 1500, 2500, 3000}
)

// FlatDistanceKeys are the distance columns of the flat matrix. Flat pricing
// distinguishes local moves from the mileage brackets.
var FlatDistanceKeys = []string{"local", "d500", "d1000", "d1500"}

var flatDistanceBounds = []int{500, 1000, 1500}

// AssumedWeightBySquareFootage maps each square-footage tier to the weight
// a flat-rate quote assumes, per the 4 lb/sqft planning factor rounded to
// the published weight brackets. Overage billing compares actual weight
// against this value inflated by the schedule's overage threshold.
var AssumedWeightBySquareFootage = map[int]float64{
	1000: 4000,
	1500: 6000,
	2500: 8000,
	3000: 10000,
}

// SelectTier returns the smallest tier >= value, or the largest tier when
// value exceeds every bracket. A value exactly on a boundary selects that
// tier, matching the regulatory convention of published rate brackets.
func SelectTier(value float64, tiers []int) int {
	for _, t := range tiers {
		if value <= float64(t) {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// SelectTierIndex is SelectTier returning the bracket index instead
func SelectTierIndex(value float64, tiers []int) int {
	for i, t := range tiers {
		if value <= float64(t) {
			return i
		}
	}
	return len(tiers) - 1
}

// WeightTierKey builds the matrix row key for a weight tier (w4000)
func WeightTierKey(tier int) string {
	return fmt.Sprintf("w%d", tier)
}

// VolumeTierKey builds the matrix row key for a volume tier (v600)
func VolumeTierKey(tier int) string {
	return fmt.Sprintf("v%d", tier)
}

// SquareFootageTierKey builds the matrix row key for a sqft tier (s2500)
func SquareFootageTierKey(tier int) string {
	return fmt.Sprintf("s%d", tier)
}

// DistanceTierKey builds the matrix column key for a distance tier (d500)
func DistanceTierKey(tier int) string {
	return fmt.Sprintf("d%d", tier)
}

// FlatDistanceKey returns the flat matrix column for a shipment distance:
// "local" at or under the local-move boundary, otherwise the mileage bracket.
func FlatDistanceKey(distanceMiles float64) string {
	if IsLocalMove(distanceMiles) {
		return "local"
	}
	return DistanceTierKey(SelectTier(distanceMiles, flatDistanceBounds))
}

// IsLocalMove classifies a shipment distance against the fixed local-move
// boundary used by mixed pricing and the minimum-charge floors.
func IsLocalMove(distanceMiles float64) bool {
	return distanceMiles <= utils.LocalMoveDistanceMiles
}
