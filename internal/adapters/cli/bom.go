// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle input parsing and output
// formatting, but delegate business logic to services.
package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/pnpimport/internal/models"
)

// bomHeader is the required CSV column set, in any order. The quantity
// column is optional.
var bomHeader = []string{"reference", "value", "footprint", "lcsc"}

// LoadBOM reads a BOM CSV file into normalized entries. The header row
// is required; unknown columns are ignored.
func LoadBOM(path string) ([]models.BomEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	entries, err := ParseBOM(f)
	if err != nil {
		return nil, &models.ParseError{Source: path, Err: err}
	}
	return entries, nil
}

// ParseBOM reads BOM entries from CSV content.
func ParseBOM(r io.Reader) ([]models.BomEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty BOM file")
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range bomHeader {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q (have: %s)", required, strings.Join(header, ", "))
		}
	}

	var entries []models.BomEntry
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		entry := models.BomEntry{
			Reference:     field(record, cols, "reference"),
			Value:         field(record, cols, "value"),
			FootprintName: field(record, cols, "footprint"),
			LCSCNumber:    field(record, cols, "lcsc"),
			Quantity:      1,
		}
		if q := field(record, cols, "quantity"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("line %d: invalid quantity %q", line, q)
			}
			entry.Quantity = n
		}

		if entry.Reference == "" || entry.Value == "" || entry.FootprintName == "" {
			return nil, fmt.Errorf("line %d: reference, value, and footprint are required", line)
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("BOM has a header but no entries")
	}
	return entries, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
