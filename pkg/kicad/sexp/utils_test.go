package sexp

import (
	"testing"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/OpenTraceLab/wirenet/pkg/kicad/sexp/kicadsexp"
)

// Helper to parse s-expression from string
func parseSexp(t *testing.T, input string) kicadsexp.Sexp {
	t.Helper()
	sexps, err := kicadsexp.ParseString(input)
	if err != nil {
		t.Fatalf("Failed to parse s-expression %q: %v", input, err)
	}
	if len(sexps) == 0 {
		t.Fatalf("No s-expressions parsed from %q", input)
	}
	return sexps[0]
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		index   int
		want    string
		wantErr bool
	}{
		{name: "key", input: "(layer F.Cu)", index: 0, want: "layer"},
		{name: "bare value", input: "(layer F.Cu)", index: 1, want: "F.Cu"},
		{name: "quoted value", input: `(property "Reference" "U1")`, index: 2, want: "U1"},
		{name: "out of bounds", input: "(layer F.Cu)", index: 5, wantErr: true},
		{name: "list element", input: "(a (b))", index: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetString(parseSexp(t, tt.input), tt.index)
			if tt.wantErr {
				if err == nil {
					t.Errorf("GetString() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetString() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("GetString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetFloatAndInt(t *testing.T) {
	s := parseSexp(t, "(at 12.5 -3 90 x)")

	if f, err := GetFloat(s, 1); err != nil || f != 12.5 {
		t.Errorf("GetFloat(1) = %v, %v", f, err)
	}
	if f, err := GetFloat(s, 2); err != nil || f != -3 {
		t.Errorf("GetFloat(2) = %v, %v", f, err)
	}
	if i, err := GetInt(s, 3); err != nil || i != 90 {
		t.Errorf("GetInt(3) = %v, %v", i, err)
	}
	if _, err := GetFloat(s, 4); err == nil {
		t.Error("GetFloat on a non-number should fail")
	}
	if _, err := GetInt(s, 1); err == nil {
		t.Error("GetInt on a fraction should fail")
	}
}

func TestFindNode(t *testing.T) {
	s := parseSexp(t, `(symbol (lib_id "Device:R") (at 10 20 90) (property "Reference" "R1") (property "Value" "10k"))`)

	node, ok := FindNode(s, "at")
	if !ok {
		t.Fatal("FindNode(at) not found")
	}
	if node.String() != "(at 10 20 90)" {
		t.Errorf("FindNode(at) = %s", node)
	}

	if _, ok := FindNode(s, "mirror"); ok {
		t.Error("FindNode(mirror) should not be found")
	}

	props := FindAllNodes(s, "property")
	if len(props) != 2 {
		t.Fatalf("FindAllNodes(property) = %d nodes, want 2", len(props))
	}
	p, err := GetProperty(props[1])
	if err != nil {
		t.Fatal(err)
	}
	if p.Key != "Value" || p.Value != "10k" {
		t.Errorf("GetProperty() = %+v", p)
	}
}

func TestGetAt(t *testing.T) {
	tests := []struct {
		input   string
		want    At
		wantErr bool
	}{
		{input: "(at 1 2)", want: At{Pos: geom.Pt(1, 2)}},
		{input: "(at 1 2 270)", want: At{Pos: geom.Pt(1, 2), Angle: 270}},
		{input: "(xy 1 2)", wantErr: true},
		{input: "(at 1)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := GetAt(parseSexp(t, tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("GetAt(%s) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetAt(%s) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("GetAt(%s) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	s := parseSexp(t, `(pin passive line hide (uuid "abc") (number "1"))`)

	if name, err := GetNodeName(s); err != nil || name != "pin" {
		t.Errorf("GetNodeName() = %q, %v", name, err)
	}
	if !HasSymbol(s, "hide") {
		t.Error("HasSymbol(hide) = false")
	}
	if HasSymbol(s, "number") {
		t.Error("HasSymbol matches only bare atoms")
	}
	if got := GetUUID(s); got != "abc" {
		t.Errorf("GetUUID() = %q", got)
	}
	if got := len(GetListItems(s)); got != 5 {
		t.Errorf("GetListItems() has %d items, want 5", got)
	}
	if _, err := GetNodeName(kicadsexp.Symbol("x")); err == nil {
		t.Error("GetNodeName on an atom should fail")
	}
}
