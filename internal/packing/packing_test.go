package packing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitVolume(t *testing.T) {
	// 10 x 20 x 5 cm = 0.001 m3
	require.InDelta(t, 0.001, UnitVolumeM3(10, 20, 5), 1e-9)

	// Any missing dimension falls back to the default.
	require.InDelta(t, DefaultUnitVolumeM3, UnitVolumeM3(0, 20, 5), 1e-9)
	require.InDelta(t, DefaultUnitVolumeM3, UnitVolumeM3(10, -1, 5), 1e-9)
	require.InDelta(t, DefaultUnitVolumeM3, UnitVolumeM3(0, 0, 0), 1e-9)
}

func TestUnitVolumeScalesLinearly(t *testing.T) {
	base := UnitVolumeM3(10, 20, 5)
	require.InDelta(t, 2*base, UnitVolumeM3(20, 20, 5), 1e-9)
	require.InDelta(t, 3*base, UnitVolumeM3(10, 60, 5), 1e-9)
}

func TestMaxBoxesByStackingFindsBestOrientation(t *testing.T) {
	// Box 40x60x15 cm in a 200x500x200 cm cargo space. The best orientation
	// packs floor(500/60) * floor(200/40) * floor(200/15) = 8*5*13 = 520,
	// beating the naive axis-order assignment of 468.
	got := MaxBoxesByStacking(2.0, 5.0, 2.0, 0.40, 0.60, 0.15)
	require.Equal(t, 520, got)
}

func TestMaxBoxesByStackingPermutationInvariant(t *testing.T) {
	dims := [][3]float64{
		{0.40, 0.60, 0.15},
		{0.60, 0.40, 0.15},
		{0.15, 0.60, 0.40},
		{0.15, 0.40, 0.60},
	}
	want := MaxBoxesByStacking(2.0, 5.0, 2.0, 0.40, 0.60, 0.15)
	for _, d := range dims {
		assert.Equal(t, want, MaxBoxesByStacking(2.0, 5.0, 2.0, d[0], d[1], d[2]))
	}
}

func TestMaxBoxesByStackingMonotonic(t *testing.T) {
	small := MaxBoxesByStacking(2.0, 5.0, 2.0, 0.40, 0.60, 0.15)
	assert.GreaterOrEqual(t, MaxBoxesByStacking(2.5, 5.0, 2.0, 0.40, 0.60, 0.15), small)
	assert.GreaterOrEqual(t, MaxBoxesByStacking(2.0, 6.0, 2.0, 0.40, 0.60, 0.15), small)
	assert.GreaterOrEqual(t, MaxBoxesByStacking(2.0, 5.0, 3.0, 0.40, 0.60, 0.15), small)
}

func TestMaxBoxesByStackingDefaultsBadDimensions(t *testing.T) {
	// Non-positive dimensions default to 1 rather than dividing by zero.
	assert.Equal(t, MaxBoxesByStacking(2, 5, 2, 1, 0.6, 0.15), MaxBoxesByStacking(2, 5, 2, 0, 0.6, 0.15))
}

func TestBranchCapacity(t *testing.T) {
	box := &BoxTemplate{WidthCm: 40, LengthCm: 60, HeightCm: 15}
	space := &CargoSpace{WidthM: 2, LengthM: 5, HeightM: 2}

	// 100 loaves of 0.002 m3 each = 0.2 m3 total.
	// Box shell 0.036 m3, usable 0.0288 m3 -> ceil(0.2/0.0288) = 7 boxes.
	cap := BranchCapacity([]LineItem{{Qty: 100, UnitVolumeM3: 0.002}}, box, space)
	require.NotNil(t, cap)
	assert.Equal(t, 7, cap.Boxes)
	assert.Equal(t, 520, cap.MaxBoxes)
	assert.False(t, cap.OverCapacity)
	assert.InDelta(t, float64(7)/520*100, cap.UsagePercent, 1e-9)
}

func TestBranchCapacityZeroItems(t *testing.T) {
	box := &BoxTemplate{WidthCm: 40, LengthCm: 60, HeightCm: 15}
	space := &CargoSpace{WidthM: 2, LengthM: 5, HeightM: 2}

	cap := BranchCapacity(nil, box, space)
	require.NotNil(t, cap)
	assert.Equal(t, 0, cap.Boxes)
	assert.Zero(t, cap.UsagePercent)
	assert.False(t, cap.OverCapacity)
}

func TestBranchCapacityNotYetComputable(t *testing.T) {
	box := &BoxTemplate{WidthCm: 40, LengthCm: 60, HeightCm: 15}
	space := &CargoSpace{WidthM: 2, LengthM: 5, HeightM: 2}

	assert.Nil(t, BranchCapacity(nil, nil, space))
	assert.Nil(t, BranchCapacity(nil, box, nil))
}

func TestBranchCapacityOverCapacity(t *testing.T) {
	box := &BoxTemplate{WidthCm: 40, LengthCm: 60, HeightCm: 15}
	// Tiny van: floor(1/0.6)*floor(1/0.4)*floor(1/0.15) = 1*2*6 = 12 boxes max.
	space := &CargoSpace{WidthM: 1, LengthM: 1, HeightM: 1}

	cap := BranchCapacity([]LineItem{{Qty: 1000, UnitVolumeM3: 0.002}}, box, space)
	require.NotNil(t, cap)
	assert.Greater(t, cap.Boxes, cap.MaxBoxes)
	assert.True(t, cap.OverCapacity)
	// Display percentage is capped even when over capacity.
	assert.InDelta(t, 100, cap.UsagePercent, 1e-9)
}
