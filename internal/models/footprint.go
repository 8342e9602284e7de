// Package models defines the domain entities shared across the application:
// packages, parts, BOM entries, and backup manifests.
package models

// UnitsMillimeters is the only unit system OpenPnP package and part
// definitions are written in.
const UnitsMillimeters = "Millimeters"

// Roundness values for pad corner rounding in the OpenPnP schema.
const (
	RoundnessRect   = 0.0
	RoundnessOval   = 50.0
	RoundnessCircle = 100.0
)

// Pad is a single pad in a footprint, in OpenPnP coordinates (mm,
// Y increasing downward).
type Pad struct {
	Name      string
	X         float64
	Y         float64
	Width     float64
	Height    float64
	Rotation  float64
	Roundness float64
}

// Footprint is the pad layout within a package. Pad order is the vendor
// pad order and is preserved through serialization.
type Footprint struct {
	Units      string
	BodyWidth  float64
	BodyHeight float64
	Pads       []Pad
}

// Equal reports whether two footprints have identical geometry: same
// units, body size, and the same pads in the same order.
func (f *Footprint) Equal(other *Footprint) bool {
	if f.Units != other.Units || f.BodyWidth != other.BodyWidth || f.BodyHeight != other.BodyHeight {
		return false
	}
	if len(f.Pads) != len(other.Pads) {
		return false
	}
	for i := range f.Pads {
		if f.Pads[i] != other.Pads[i] {
			return false
		}
	}
	return true
}

// Package is an OpenPnP package definition: a footprint plus identity and
// provenance metadata. Provenance fields are optional and are written as
// an XML comment, since OpenPnP ignores unknown attributes but preserves
// comments.
type Package struct {
	ID          string
	Version     string
	Description string
	Footprint   Footprint

	Generator  string
	ImportDate string
	SessionID  string
	LCSCID     string
}

// Equal reports whether two packages are interchangeable: same id and
// identical footprint geometry. Provenance metadata is not compared.
func (p *Package) Equal(other *Package) bool {
	return p.ID == other.ID && p.Footprint.Equal(&other.Footprint)
}
