package cli

import (
	"strings"
	"testing"
)

func TestParseBOM(t *testing.T) {
	input := `Reference,Value,Footprint,LCSC,Quantity
R1,10K,R0402_HandSolder,C60490,2
C1,100nF,C0603,C1590,1
J1,CONN,HDR-2.54,,1
`
	entries, err := ParseBOM(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseBOM() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	first := entries[0]
	if first.Reference != "R1" || first.Value != "10K" || first.LCSCNumber != "C60490" {
		t.Errorf("first entry = %+v", first)
	}
	if first.Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", first.Quantity)
	}
	if entries[2].HasLCSC() {
		t.Errorf("J1 should have no LCSC number")
	}
}

func TestParseBOMHeaderCaseInsensitive(t *testing.T) {
	input := "reference,VALUE,Footprint,lcsc\nR1,10K,R0402,C1\n"
	entries, err := ParseBOM(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseBOM() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
}

func TestParseBOMQuantityOptional(t *testing.T) {
	input := "reference,value,footprint,lcsc\nR1,10K,R0402,C1\n"
	entries, err := ParseBOM(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseBOM() error = %v", err)
	}
	if entries[0].Quantity != 1 {
		t.Errorf("Quantity = %d, want default 1", entries[0].Quantity)
	}
}

func TestParseBOMErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"missing column", "reference,value,lcsc\nR1,10K,C1\n"},
		{"header only", "reference,value,footprint,lcsc\n"},
		{"blank footprint", "reference,value,footprint,lcsc\nR1,10K,,C1\n"},
		{"bad quantity", "reference,value,footprint,lcsc,quantity\nR1,10K,R0402,C1,zero\n"},
		{"negative quantity", "reference,value,footprint,lcsc,quantity\nR1,10K,R0402,C1,-1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBOM(strings.NewReader(tt.input)); err == nil {
				t.Error("ParseBOM() should fail")
			}
		})
	}
}
