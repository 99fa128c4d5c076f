package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/OpenTraceLab/wirenet/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// items returns the elements of a list, or nil for an atom.
func items(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if l, ok := s.(*kicadsexp.List); ok {
		return l.Items()
	}
	return nil
}

// atom returns the text of an atom, quoted or not.
func atom(s kicadsexp.Sexp) (string, bool) {
	switch v := s.(type) {
	case kicadsexp.Symbol:
		return string(v), true
	case kicadsexp.Quoted:
		return string(v), true
	}
	return "", false
}

// GetNodeName returns the leading symbol of a list: "at" for (at 1 2).
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	l := items(s)
	if len(l) == 0 {
		return "", fmt.Errorf("expected non-empty list, got %v", s)
	}
	name, ok := l[0].(kicadsexp.Symbol)
	if !ok {
		return "", fmt.Errorf("expected symbol at head of %v", s)
	}
	return string(name), nil
}

// FindNode searches for a child list with the given key (first symbol)
// Example: FindNode(sexp, "at") finds (at 100 50) in a list
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range items(s) {
		if name, err := GetNodeName(item); err == nil && name == key {
			return item, true
		}
	}
	return nil, false
}

// FindAllNodes finds all child lists with the given key, in order.
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range items(s) {
		if name, err := GetNodeName(item); err == nil && name == key {
			results = append(results, item)
		}
	}
	return results
}

// GetListItems returns all items in a list (excluding the first symbol/key)
// Example: GetListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func GetListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	l := items(s)
	if len(l) <= 1 {
		return nil
	}
	return l[1:]
}

// HasSymbol reports whether a bare symbol appears among the direct children
// of s, e.g. (pin passive line hide) has "hide".
func HasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range items(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// Typed value extraction helpers

// GetString extracts an atom at the given index in a list.
// Index 0 is the key, 1 is first value, etc.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	l := items(s)
	if l == nil {
		return "", fmt.Errorf("expected list, got %v", s)
	}
	if index < 0 || index >= len(l) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(l))
	}
	str, ok := atom(l[index])
	if !ok {
		return "", fmt.Errorf("expected atom at index %d, got %v", index, l[index])
	}
	return str, nil
}

// GetFloat extracts a float64 value at the given index
func GetFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}

	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// Domain-specific extraction helpers

// GetXY reads a point from a (key X Y ...) node such as (xy 1 2) or (start 1 2).
func GetXY(s kicadsexp.Sexp) (geom.Point, error) {
	x, err := GetFloat(s, 1)
	if err != nil {
		return geom.Point{}, fmt.Errorf("x: %w", err)
	}
	y, err := GetFloat(s, 2)
	if err != nil {
		return geom.Point{}, fmt.Errorf("y: %w", err)
	}
	return geom.Pt(x, y), nil
}

// GetAt reads an (at X Y [angle]) node. A missing angle is 0.
func GetAt(s kicadsexp.Sexp) (At, error) {
	name, err := GetNodeName(s)
	if err != nil {
		return At{}, err
	}
	if name != "at" {
		return At{}, fmt.Errorf("expected (at X Y [angle]), got (%s ...)", name)
	}

	pos, err := GetXY(s)
	if err != nil {
		return At{}, fmt.Errorf("at: %w", err)
	}

	at := At{Pos: pos}
	if len(items(s)) > 3 {
		angle, err := GetFloat(s, 3)
		if err != nil {
			return At{}, fmt.Errorf("at angle: %w", err)
		}
		at.Angle = angle
	}
	return at, nil
}

// GetProperty reads a (property "Key" "Value" ...) node.
func GetProperty(s kicadsexp.Sexp) (Property, error) {
	key, err := GetString(s, 1)
	if err != nil {
		return Property{}, fmt.Errorf("property key: %w", err)
	}
	value, err := GetString(s, 2)
	if err != nil {
		return Property{}, fmt.Errorf("property %q value: %w", key, err)
	}
	return Property{Key: key, Value: value}, nil
}

// GetUUID reads the (uuid ...) child of s, or "" when absent.
func GetUUID(s kicadsexp.Sexp) UUID {
	node, ok := FindNode(s, "uuid")
	if !ok {
		return ""
	}
	str, err := GetString(node, 1)
	if err != nil {
		return ""
	}
	return UUID(str)
}
