// Package easyeda fetches and decodes vendor footprint payloads from
// the EasyEDA API. The payload format has drifted across API versions,
// so the decoder tries several known layouts before giving up.
package easyeda

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/pnpimport/internal/core/geometry"
	"github.com/example/pnpimport/internal/models"
)

// Component is the raw vendor data for one LCSC part.
type Component struct {
	LCSCID  string
	Title   string
	Payload json.RawMessage
}

// numeric shape codes used by older payload revisions
var shapeCodes = map[int]string{
	1: "RECT",
	2: "ROUND",
	3: "OVAL",
	4: "ELLIPSE",
}

// DecodePads extracts vendor pads from a raw footprint payload. It
// understands the current dataStr.shape string array plus the older
// object forms the API has served over time.
func DecodePads(payload json.RawMessage) ([]geometry.VendorPad, error) {
	if len(payload) == 0 {
		return nil, &models.ParseError{Source: "payload", Err: fmt.Errorf("empty footprint payload")}
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, &models.ParseError{Source: "payload", Err: err}
	}

	// Current format: dataStr.shape holds "PAD~..." strings. dataStr
	// itself may arrive as an object or as a JSON-encoded string.
	if raw, ok := root["dataStr"]; ok {
		if pads := padsFromDataStr(raw); len(pads) > 0 {
			return pads, nil
		}
	}

	// Older formats keep pad objects under a PAD key, either at the
	// top level or nested in a footprint object.
	for _, raw := range []json.RawMessage{root["PAD"], nestedPadBlock(root["footprint"])} {
		if len(raw) == 0 {
			continue
		}
		pads, err := padsFromObjects(raw)
		if err != nil {
			return nil, err
		}
		if len(pads) > 0 {
			return pads, nil
		}
	}

	// Plain pad array.
	if raw, ok := root["pads"]; ok {
		pads, err := padsFromArray(raw)
		if err != nil {
			return nil, err
		}
		if len(pads) > 0 {
			return pads, nil
		}
	}

	return nil, &models.ParseError{Source: "payload", Err: fmt.Errorf("no pad data found")}
}

func padsFromDataStr(raw json.RawMessage) []geometry.VendorPad {
	var dataStr struct {
		Shape []string `json:"shape"`
	}
	if err := json.Unmarshal(raw, &dataStr); err != nil {
		// dataStr may be a JSON string wrapping the object.
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil
		}
		if err := json.Unmarshal([]byte(inner), &dataStr); err != nil {
			return nil
		}
	}

	var pads []geometry.VendorPad
	for _, s := range dataStr.Shape {
		if !strings.HasPrefix(s, "PAD~") {
			continue
		}
		pad, ok := ParsePadString(s)
		if !ok {
			continue
		}
		pads = appendPad(pads, pad)
	}
	return pads
}

// appendPad adds a pad, keeping names unique within the footprint. A
// repeated pad number replaces the earlier record in place, matching
// how the vendor editor itself resolves the collision.
func appendPad(pads []geometry.VendorPad, pad geometry.VendorPad) []geometry.VendorPad {
	for i := range pads {
		if pads[i].Name == pad.Name {
			pads[i] = pad
			return pads
		}
	}
	return append(pads, pad)
}

// ParsePadString decodes one tilde-delimited PAD record:
//
//	PAD~shape~x~y~width~height~layer~~number~0~points~rotation~...
//
// Records with fewer than 12 fields or non-numeric geometry are
// reported as invalid rather than guessed at.
func ParsePadString(s string) (geometry.VendorPad, bool) {
	parts := strings.Split(s, "~")
	if len(parts) < 12 {
		return geometry.VendorPad{}, false
	}

	x, err1 := strconv.ParseFloat(parts[2], 64)
	y, err2 := strconv.ParseFloat(parts[3], 64)
	width, err3 := strconv.ParseFloat(parts[4], 64)
	height, err4 := strconv.ParseFloat(parts[5], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return geometry.VendorPad{}, false
	}

	rotation := 0.0
	if parts[11] != "" {
		rotation, err1 = strconv.ParseFloat(parts[11], 64)
		if err1 != nil {
			return geometry.VendorPad{}, false
		}
	}

	name := parts[8]
	if name == "" {
		name = "1"
	}

	return geometry.VendorPad{
		Name:     name,
		Shape:    parts[1],
		X:        x,
		Y:        y,
		Width:    width,
		Height:   height,
		Rotation: rotation,
	}, true
}

// Geometry fields are pointers so an absent field is distinguishable
// from a literal zero: a pad without its center or size must be
// rejected, not placed at the origin.
type padObject struct {
	Number   json.RawMessage `json:"number"`
	Name     json.RawMessage `json:"name"`
	Shape    json.RawMessage `json:"shape"`
	X        *float64        `json:"x"`
	Y        *float64        `json:"y"`
	Width    *float64        `json:"width"`
	Height   *float64        `json:"height"`
	Rotation float64         `json:"rotation"`
}

func (p padObject) toVendorPad(fallbackName string) (geometry.VendorPad, error) {
	name := stringField(p.Number)
	if name == "" {
		name = stringField(p.Name)
	}
	if name == "" {
		name = fallbackName
	}

	if p.X == nil || p.Y == nil {
		return geometry.VendorPad{}, models.Validationf("pad %s missing center coordinates", name)
	}
	if p.Width == nil {
		return geometry.VendorPad{}, models.Validationf("pad %s missing size", name)
	}

	shape := "RECT"
	if s := stringField(p.Shape); s != "" {
		shape = s
	} else if code, ok := intField(p.Shape); ok {
		if mapped, known := shapeCodes[code]; known {
			shape = mapped
		}
	}

	height := *p.Width // square by default
	if p.Height != nil {
		height = *p.Height
	}

	return geometry.VendorPad{
		Name:     name,
		Shape:    shape,
		X:        *p.X,
		Y:        *p.Y,
		Width:    *p.Width,
		Height:   height,
		Rotation: p.Rotation,
	}, nil
}

func padsFromObjects(raw json.RawMessage) ([]geometry.VendorPad, error) {
	var objects map[string]padObject
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, &models.ParseError{Source: "payload", Err: err}
	}

	// Sort keys for deterministic pad order.
	keys := make([]string, 0, len(objects))
	for k := range objects {
		keys = append(keys, k)
	}
	sortPadKeys(keys)

	pads := make([]geometry.VendorPad, 0, len(objects))
	for _, k := range keys {
		pad, err := objects[k].toVendorPad(k)
		if err != nil {
			return nil, err
		}
		pads = appendPad(pads, pad)
	}
	return pads, nil
}

func padsFromArray(raw json.RawMessage) ([]geometry.VendorPad, error) {
	var objects []padObject
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, &models.ParseError{Source: "payload", Err: err}
	}
	pads := make([]geometry.VendorPad, 0, len(objects))
	for i, obj := range objects {
		pad, err := obj.toVendorPad(strconv.Itoa(i + 1))
		if err != nil {
			return nil, err
		}
		pads = appendPad(pads, pad)
	}
	return pads, nil
}

func nestedPadBlock(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var fp struct {
		PAD json.RawMessage `json:"PAD"`
	}
	if err := json.Unmarshal(raw, &fp); err != nil {
		return nil
	}
	return fp.PAD
}

// stringField reads a JSON value that may be a string or a number.
func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

func intField(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// sortPadKeys orders keys numerically where possible so pad "2" sorts
// before pad "10", falling back to string order for non-numeric names.
func sortPadKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		na, errA := strconv.Atoi(a)
		nb, errB := strconv.Atoi(b)
		switch {
		case errA == nil && errB == nil:
			return na < nb
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return a < b
		}
	})
}
