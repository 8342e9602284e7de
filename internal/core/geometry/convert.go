// Package geometry contains the pure conversion from vendor pad geometry
// to OpenPnP footprints. No I/O beyond a warning log for unknown shape
// tags; converting the same input twice yields the same output.
package geometry

import (
	"log/slog"
	"math"
	"strings"

	"github.com/example/pnpimport/internal/models"
)

// DefaultUnitScale converts EasyEDA units to millimeters.
// 1 EasyEDA unit = 10 mils = 0.254 mm.
const DefaultUnitScale = 0.254

// VendorPad is one pad as the vendor describes it: vendor units, Y
// increasing upward.
type VendorPad struct {
	Name     string
	Shape    string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
}

// ellipseFamily are the shape tags that get non-zero roundness. Equal
// dimensions make a circle, unequal an oval.
var ellipseFamily = map[string]bool{
	"ELLIPSE": true,
	"ROUND":   true,
	"CIRCLE":  true,
	"OVAL":    true,
}

// Convert turns vendor pads into an OpenPnP footprint.
//
// The vendor Y axis increases upward, OpenPnP's increases downward, so
// y_out = -y_in * unitScale. Omitting the sign flip mirrors every pad
// vertically, which places fine on symmetric two-pad parts and fails on
// everything else, so it is validated by test against a known part.
// Rotation passes through unchanged; both systems share rotation sense.
func Convert(pads []VendorPad, unitScale float64) (*models.Footprint, error) {
	if len(pads) == 0 {
		return nil, models.Validationf("footprint has no pads")
	}

	out := make([]models.Pad, 0, len(pads))
	for _, vp := range pads {
		if vp.Width <= 0 || vp.Height <= 0 {
			return nil, models.Validationf("pad %q has non-positive size %gx%g", vp.Name, vp.Width, vp.Height)
		}
		out = append(out, models.Pad{
			Name:      vp.Name,
			X:         vp.X * unitScale,
			Y:         -vp.Y * unitScale,
			Width:     vp.Width * unitScale,
			Height:    vp.Height * unitScale,
			Rotation:  normalizeRotation(vp.Rotation),
			Roundness: classifyShape(vp),
		})
	}

	bodyWidth, bodyHeight := bodySize(out)

	return &models.Footprint{
		Units:      models.UnitsMillimeters,
		BodyWidth:  bodyWidth,
		BodyHeight: bodyHeight,
		Pads:       out,
	}, nil
}

// classifyShape maps a vendor shape tag to an OpenPnP roundness value.
// Unknown tags default to rectangular rather than failing the
// conversion.
func classifyShape(vp VendorPad) float64 {
	tag := strings.ToUpper(strings.TrimSpace(vp.Shape))
	if ellipseFamily[tag] {
		if vp.Width == vp.Height {
			return models.RoundnessCircle
		}
		return models.RoundnessOval
	}
	if tag != "RECT" && tag != "RECTANGLE" && tag != "" {
		slog.Warn("unrecognized pad shape, defaulting to rectangular",
			"shape", vp.Shape, "pad", vp.Name)
	}
	return models.RoundnessRect
}

// bodySize computes the bounding box of all pad extents in the output
// coordinate system, accounting for pad rotation.
func bodySize(pads []models.Pad) (width, height float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, p := range pads {
		hw, hh := rotatedHalfExtents(p.Width/2, p.Height/2, p.Rotation)
		minX = math.Min(minX, p.X-hw)
		maxX = math.Max(maxX, p.X+hw)
		minY = math.Min(minY, p.Y-hh)
		maxY = math.Max(maxY, p.Y+hh)
	}

	return maxX - minX, maxY - minY
}

// rotatedHalfExtents returns the axis-aligned half extents of a w x h
// rectangle rotated by deg degrees.
func rotatedHalfExtents(hw, hh, deg float64) (x, y float64) {
	rad := deg * math.Pi / 180
	s, c := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	return hw*c + hh*s, hw*s + hh*c
}

// normalizeRotation maps any angle into [0, 360).
func normalizeRotation(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}
