package models

import "strings"

// Default placement metadata for newly created parts.
const (
	DefaultPartHeight = 0.5
	DefaultPartSpeed  = 1.0
)

// Part is an OpenPnP part definition referencing a package.
type Part struct {
	ID          string
	Name        string
	HeightUnits string
	Height      float64
	PackageID   string
	Speed       float64

	Generator  string
	ImportDate string
	SessionID  string
	LCSCID     string
}

// Equal reports whether two parts are interchangeable: same id, package
// reference, and placement metadata. Provenance is not compared.
func (p *Part) Equal(other *Part) bool {
	return p.ID == other.ID &&
		p.PackageID == other.PackageID &&
		p.Height == other.Height &&
		p.HeightUnits == other.HeightUnits &&
		p.Speed == other.Speed
}

// footprintSuffixes are decorations some BOM exporters append to the base
// package name.
var footprintSuffixes = []string{"_HandSolder", "_Pad", "_1EP", "_NoVia"}

// BomEntry is one normalized component request from the BOM loader.
// Entries are immutable after creation; processing state lives on the
// work queue item that wraps them.
type BomEntry struct {
	Reference     string
	Value         string
	FootprintName string
	LCSCNumber    string
	Quantity      int
}

// HasLCSC reports whether the entry carries a supplier part number.
func (e *BomEntry) HasLCSC() bool {
	return strings.TrimSpace(e.LCSCNumber) != ""
}

// PartID derives the OpenPnP part id, e.g. "C0402-100nF".
func (e *BomEntry) PartID() string {
	return e.BaseFootprint() + "-" + e.Value
}

// BaseFootprint strips known exporter suffixes from the footprint name,
// e.g. "C0402_HandSolder" -> "C0402".
func (e *BomEntry) BaseFootprint() string {
	name := e.FootprintName
	for _, suffix := range footprintSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}
