package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateSheetKeyHelpers(t *testing.T) {
	assert.Equal(t, []string{"w1000", "w2000", "w4000", "w6000", "w8000"}, weightSizeKeys())
	assert.Equal(t, []string{"v300", "v600", "v1000", "v1500"}, volumeSizeKeys())
	assert.Equal(t, []string{"s1000", "s1500", "s2500", "s3000"}, squareFootageSizeKeys())
	assert.Equal(t, []string{"d250", "d500", "d1000", "d1500"}, matrixDistanceKeys())
}

func TestDistanceHeader(t *testing.T) {
	assert.Equal(t, "Local", distanceHeader("local"))
	assert.Equal(t, "Up to 500 miles", distanceHeader("d500"))
	assert.Equal(t, "Up to 1500 miles", distanceHeader("d1500"))
}

func TestSizeHeader(t *testing.T) {
	assert.Equal(t, "4000", sizeHeader("w4000"))
	assert.Equal(t, "600", sizeHeader("v600"))
	assert.Equal(t, "2500", sizeHeader("s2500"))
	assert.Equal(t, "x", sizeHeader("x"))
	assert.Equal(t, "wabc", sizeHeader("wabc"))
}
