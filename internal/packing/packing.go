// Package packing contains the volume and box-stacking arithmetic used by
// shipment planning: per-unit product volume, the number of boxes a set of
// line items fills, and the number of boxes a vehicle can hold.
package packing

import "math"

const (
	// DefaultUnitVolumeM3 is assumed for products without recorded dimensions.
	DefaultUnitVolumeM3 = 0.02
	// PackingFactor is the usable fraction of a box's geometric volume after
	// irregular product shapes and loading voids.
	PackingFactor = 0.8

	// Absorbs float error from cm→m conversion so exact fits stay exact,
	// e.g. floor(2/0.4) must be 5, not 4.
	dimEpsilon = 1e-9
)

// UnitVolumeM3 derives a per-unit volume in cubic meters from product
// dimensions given in centimeters. Products missing any dimension get the
// default volume; the result is always positive.
func UnitVolumeM3(widthCm, lengthCm, heightCm float64) float64 {
	if widthCm > 0 && lengthCm > 0 && heightCm > 0 {
		return widthCm * lengthCm * heightCm / 1e6
	}
	return DefaultUnitVolumeM3
}

// BoxTemplate describes a packing container by its internal dimensions.
type BoxTemplate struct {
	ID       int64   `json:"box_template_id"`
	Name     string  `json:"name"`
	WidthCm  float64 `json:"width_cm"`
	LengthCm float64 `json:"length_cm"`
	HeightCm float64 `json:"height_cm"`
}

// InnerVolumeM3 returns the geometric volume of the box in cubic meters.
func (b BoxTemplate) InnerVolumeM3() float64 {
	return b.WidthCm * b.LengthCm * b.HeightCm / 1e6
}

// CargoSpace describes a vehicle's loadable interior in meters.
type CargoSpace struct {
	WidthM  float64 `json:"width_m"`
	LengthM float64 `json:"length_m"`
	HeightM float64 `json:"height_m"`
}

// LineItem is a quantity of product with a known per-unit volume.
type LineItem struct {
	Qty          int     `json:"qty"`
	UnitVolumeM3 float64 `json:"unit_volume_m3"`
}

// Capacity summarises how a set of line items occupies a vehicle.
type Capacity struct {
	Boxes         int     `json:"boxes"`
	MaxBoxes      int     `json:"max_boxes"`
	UsagePercent  float64 `json:"usage_percent"`
	OverCapacity  bool    `json:"over_capacity"`
	TotalVolumeM3 float64 `json:"total_volume_m3"`
}

// MaxBoxesByStacking computes the largest number of identical boxes that fit
// into a cargo space, trying all 6 axis-aligned orientations of the box and
// keeping the best one. All dimensions are in meters; non-positive dimensions
// default to 1 to avoid division by zero.
func MaxBoxesByStacking(vehicleW, vehicleL, vehicleH, boxW, boxL, boxH float64) int {
	vw := positiveOr(vehicleW, 1)
	vl := positiveOr(vehicleL, 1)
	vh := positiveOr(vehicleH, 1)
	bw := positiveOr(boxW, 1)
	bl := positiveOr(boxL, 1)
	bh := positiveOr(boxH, 1)

	perms := [6][3]float64{
		{bl, bw, bh}, {bl, bh, bw},
		{bw, bl, bh}, {bw, bh, bl},
		{bh, bl, bw}, {bh, bw, bl},
	}
	max := 0
	for _, p := range perms {
		n := fitCount(vl, p[0]) * fitCount(vw, p[1]) * fitCount(vh, p[2])
		if n > max {
			max = n
		}
	}
	return max
}

// BranchCapacity converts a branch's line items into a required box count and
// the occupied share of the vehicle. A nil box template or cargo space means
// the planner has not selected one yet; the result is nil, not an error.
func BranchCapacity(items []LineItem, box *BoxTemplate, space *CargoSpace) *Capacity {
	if box == nil || space == nil {
		return nil
	}
	boxVol := box.InnerVolumeM3()
	if boxVol <= 0 {
		return nil
	}

	total := 0.0
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		total += float64(it.Qty) * it.UnitVolumeM3
	}

	boxes := 0
	if total > 0 {
		boxes = int(math.Ceil(total / (boxVol * PackingFactor)))
	}
	maxBoxes := MaxBoxesByStacking(
		space.WidthM, space.LengthM, space.HeightM,
		box.WidthCm/100, box.LengthCm/100, box.HeightCm/100,
	)

	pct := 0.0
	if maxBoxes > 0 {
		pct = math.Min(100, float64(boxes)/float64(maxBoxes)*100)
	}
	return &Capacity{
		Boxes:         boxes,
		MaxBoxes:      maxBoxes,
		UsagePercent:  pct,
		OverCapacity:  boxes > maxBoxes,
		TotalVolumeM3: total,
	}
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

func fitCount(axis, dim float64) int {
	return int(math.Floor(axis/dim + dimEpsilon))
}
