// Package openpnp implements the configuration store over the two
// persisted OpenPnP documents, packages.xml and parts.xml. Loading
// preserves the original documents byte-for-byte; committing appends
// staged entries and atomically renames, so untouched entries round-trip
// unchanged and no partial document is ever observable.
package openpnp

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/example/pnpimport/internal/models"
)

const (
	packagesRoot = "openpnp-packages"
	partsRoot    = "openpnp-parts"

	defaultPackageVersion = "1.1"
)

// xmlPackage mirrors the recognized subset of a <package> element.
// Unknown attributes and children survive through the raw document
// bytes, not through this struct.
type xmlPackage struct {
	XMLName     xml.Name     `xml:"package"`
	Version     string       `xml:"version,attr"`
	ID          string       `xml:"id,attr"`
	Description string       `xml:"description,attr"`
	Footprint   xmlFootprint `xml:"footprint"`
}

type xmlFootprint struct {
	Units      string   `xml:"units,attr"`
	BodyWidth  float64  `xml:"body-width,attr"`
	BodyHeight float64  `xml:"body-height,attr"`
	Pads       []xmlPad `xml:"pad"`
}

type xmlPad struct {
	Name      string  `xml:"name,attr"`
	X         float64 `xml:"x,attr"`
	Y         float64 `xml:"y,attr"`
	Width     float64 `xml:"width,attr"`
	Height    float64 `xml:"height,attr"`
	Rotation  float64 `xml:"rotation,attr"`
	Roundness float64 `xml:"roundness,attr"`
}

type xmlPart struct {
	XMLName     xml.Name `xml:"part"`
	ID          string   `xml:"id,attr"`
	Name        string   `xml:"name,attr"`
	HeightUnits string   `xml:"height-units,attr"`
	Height      float64  `xml:"height,attr"`
	PackageID   string   `xml:"package-id,attr"`
	Speed       float64  `xml:"speed,attr"`
}

// parsePackage decodes one <package> element's raw bytes.
func parsePackage(raw []byte) (*models.Package, error) {
	var xp xmlPackage
	if err := xml.Unmarshal(raw, &xp); err != nil {
		return nil, err
	}
	pkg := &models.Package{
		ID:          xp.ID,
		Version:     xp.Version,
		Description: xp.Description,
		Footprint: models.Footprint{
			Units:      xp.Footprint.Units,
			BodyWidth:  xp.Footprint.BodyWidth,
			BodyHeight: xp.Footprint.BodyHeight,
		},
	}
	if pkg.Footprint.Units == "" {
		pkg.Footprint.Units = models.UnitsMillimeters
	}
	for _, p := range xp.Footprint.Pads {
		pkg.Footprint.Pads = append(pkg.Footprint.Pads, models.Pad(p))
	}
	return pkg, nil
}

// parsePart decodes one <part> element's raw bytes.
func parsePart(raw []byte) (*models.Part, error) {
	var xp xmlPart
	if err := xml.Unmarshal(raw, &xp); err != nil {
		return nil, err
	}
	return &models.Part{
		ID:          xp.ID,
		Name:        xp.Name,
		HeightUnits: xp.HeightUnits,
		Height:      xp.Height,
		PackageID:   xp.PackageID,
		Speed:       xp.Speed,
	}, nil
}

// renderPackage serializes a package element the way OpenPnP writes
// them: fixed attribute order, 4-decimal coordinates, 1-decimal rotation
// and roundness. Provenance metadata goes into an XML comment because
// OpenPnP drops attributes it does not know.
func renderPackage(pkg *models.Package, indent string) string {
	var b strings.Builder

	version := pkg.Version
	if version == "" {
		version = defaultPackageVersion
	}

	b.WriteString(indent)
	b.WriteString(`<package version="` + escapeAttr(version) + `" id="` + escapeAttr(pkg.ID) + `"`)
	if pkg.Description != "" {
		b.WriteString(` description="` + escapeAttr(pkg.Description) + `"`)
	}
	b.WriteString(">\n")

	if comment := provenanceComment(pkg.Generator, pkg.ImportDate, pkg.SessionID, pkg.LCSCID); comment != "" {
		b.WriteString(indent + "  " + comment + "\n")
	}

	fp := &pkg.Footprint
	units := fp.Units
	if units == "" {
		units = models.UnitsMillimeters
	}
	b.WriteString(fmt.Sprintf("%s  <footprint units=%q body-width=\"%.4f\" body-height=\"%.4f\">\n",
		indent, units, fp.BodyWidth, fp.BodyHeight))
	for _, p := range fp.Pads {
		b.WriteString(fmt.Sprintf("%s    <pad name=%q x=\"%.4f\" y=\"%.4f\" width=\"%.4f\" height=\"%.4f\" rotation=\"%.1f\" roundness=\"%.1f\"/>\n",
			indent, escapeAttr(p.Name), p.X, p.Y, p.Width, p.Height, p.Rotation, p.Roundness))
	}
	b.WriteString(indent + "  </footprint>\n")
	b.WriteString(indent + "  <compatible-nozzle-tip-ids class=\"java.util.ArrayList\"/>\n")
	b.WriteString(indent + "</package>\n")

	return b.String()
}

// renderPart serializes a part element with the original attribute
// order: id, height-units, height, package-id, speed, name.
func renderPart(part *models.Part, indent string) string {
	var b strings.Builder

	heightUnits := part.HeightUnits
	if heightUnits == "" {
		heightUnits = models.UnitsMillimeters
	}

	b.WriteString(indent)
	b.WriteString(fmt.Sprintf(`<part id=%q height-units=%q height="%.2f" package-id=%q speed="%.1f"`,
		escapeAttr(part.ID), heightUnits, part.Height, escapeAttr(part.PackageID), part.Speed))
	if part.Name != "" {
		b.WriteString(` name="` + escapeAttr(part.Name) + `"`)
	}

	comment := provenanceComment(part.Generator, part.ImportDate, part.SessionID, part.LCSCID)
	if comment == "" {
		b.WriteString("/>\n")
		return b.String()
	}

	b.WriteString(">\n")
	b.WriteString(indent + "  " + comment + "\n")
	b.WriteString(indent + "</part>\n")
	return b.String()
}

// provenanceComment formats tracking metadata as a single XML comment,
// e.g. <!-- generator=pnpimport | import_date=... | lcsc_id=C60490 -->.
func provenanceComment(generator, importDate, sessionID, lcscID string) string {
	var parts []string
	if generator != "" {
		parts = append(parts, "generator="+generator)
	}
	if importDate != "" {
		parts = append(parts, "import_date="+importDate)
	}
	if sessionID != "" {
		parts = append(parts, "session_id="+sessionID)
	}
	if lcscID != "" {
		parts = append(parts, "lcsc_id="+lcscID)
	}
	if len(parts) == 0 {
		return ""
	}
	return "<!-- " + strings.Join(parts, " | ") + " -->"
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s)) //nolint:errcheck // bytes.Buffer cannot fail
	return buf.String()
}
