package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// Items returns the elements of a list, or nil for atoms
func Items(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if s == nil || s.IsLeaf() {
		return nil
	}
	if l, ok := s.(*kicadsexp.List); ok {
		return l.Items()
	}

	var items []kicadsexp.Sexp
	for s != nil && !s.IsLeaf() && s.LeafCount() > 0 {
		items = append(items, s.Head())
		s = s.Tail()
	}
	return items
}

// FindNode searches for a direct child list whose first symbol is key.
// Example: FindNode(sexp, "at") finds (at 100 50) in a list
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range Items(s) {
		if item == nil || item.IsLeaf() {
			continue
		}
		if name, err := GetNodeName(item); err == nil && name == key {
			return item, true
		}
	}
	return nil, false
}

// FindAllNodes finds all direct child lists with the given key
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range Items(s) {
		if item == nil || item.IsLeaf() {
			continue
		}
		if name, err := GetNodeName(item); err == nil && name == key {
			results = append(results, item)
		}
	}
	return results
}

// GetListItems returns all items in a list excluding the first symbol.
// Example: GetListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func GetListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	items := Items(s)
	if len(items) <= 1 {
		return nil
	}
	return items[1:]
}

// Typed value extraction helpers

// GetString extracts an atom at the given index in a list.
// Index 0 is the key, 1 is first value, etc.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	if s == nil || s.IsLeaf() {
		return "", fmt.Errorf("expected list, got leaf")
	}

	items := Items(s)
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}

	if sym, ok := items[index].(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at index %d, got %T", index, items[index])
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

// HasSymbol checks if a list contains a specific bare symbol
func HasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range Items(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// GetNodeName returns the first symbol of a list (the node type/name)
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil node")
	}
	if s.IsLeaf() {
		if sym, ok := s.(kicadsexp.Symbol); ok {
			return string(sym), nil
		}
		return "", fmt.Errorf("expected symbol leaf")
	}

	if sym, ok := s.Head().(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at head of list")
}

// GetFlag reports whether a list carries a flag either as a bare symbol
// (KiCad 6/7 "hide") or as a (key yes) child (KiCad 8 "(hide yes)").
func GetFlag(s kicadsexp.Sexp, key string) bool {
	if HasSymbol(s, key) {
		return true
	}
	if node, ok := FindNode(s, key); ok {
		v, err := GetString(node, 1)
		return err != nil || v == "yes" || v == "true"
	}
	return false
}

// Domain-specific extraction helpers

// GetPosition extracts a PositionAngle from an (at X Y [angle]) node
func GetPosition(s kicadsexp.Sexp) (PositionAngle, error) {
	key, err := GetString(s, 0)
	if err != nil {
		return PositionAngle{}, fmt.Errorf("expected (at X Y [angle]) list: %w", err)
	}
	if key != "at" {
		return PositionAngle{}, fmt.Errorf("expected 'at', got %q", key)
	}

	pos, err := GetPositionXY(s)
	if err != nil {
		return PositionAngle{}, err
	}

	result := PositionAngle{Position: pos}
	if angle, err := GetFloat(s, 3); err == nil {
		result.Angle = Angle(angle)
	}
	return result, nil
}

// GetPositionXY extracts X,Y coordinates from (keyword X Y).
// Used for (start X Y), (end X Y), (center X Y), (xy X Y), etc.
func GetPositionXY(s kicadsexp.Sexp) (Position, error) {
	x, err := GetFloat(s, 1)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse X: %w", err)
	}

	y, err := GetFloat(s, 2)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse Y: %w", err)
	}

	return Position{X: x, Y: y}, nil
}

// GetEffects extracts text effects from an (effects ...) node
func GetEffects(s kicadsexp.Sexp) (Effects, error) {
	effects := Effects{
		Font:    Font{Size: Size{Width: 1, Height: 1}, Thickness: 0.15},
		Justify: Justify{Horizontal: "center", Vertical: "center"},
	}

	if s == nil || s.IsLeaf() {
		return effects, fmt.Errorf("expected (effects ...) list")
	}

	if fontNode, ok := FindNode(s, "font"); ok {
		effects.Font = GetFont(fontNode)
	}
	if justifyNode, ok := FindNode(s, "justify"); ok {
		effects.Justify = GetJustify(justifyNode)
	}
	effects.Hide = GetFlag(s, "hide")

	return effects, nil
}

// GetFont extracts font properties from a (font ...) node
func GetFont(s kicadsexp.Sexp) Font {
	font := Font{Size: Size{Width: 1, Height: 1}, Thickness: 0.15}

	if sizeNode, ok := FindNode(s, "size"); ok {
		// KiCad writes (size height width)
		if h, err := GetFloat(sizeNode, 1); err == nil {
			font.Size.Height = h
		}
		if w, err := GetFloat(sizeNode, 2); err == nil {
			font.Size.Width = w
		}
	}
	if thicknessNode, ok := FindNode(s, "thickness"); ok {
		if t, err := GetFloat(thicknessNode, 1); err == nil {
			font.Thickness = t
		}
	}
	font.Bold = GetFlag(s, "bold")
	font.Italic = GetFlag(s, "italic")

	return font
}

// GetJustify extracts justification from a (justify ...) node
func GetJustify(s kicadsexp.Sexp) Justify {
	justify := Justify{
		Horizontal: "center",
		Vertical:   "center",
	}

	for _, item := range GetListItems(s) {
		sym, ok := item.(kicadsexp.Symbol)
		if !ok {
			continue
		}
		switch string(sym) {
		case "left", "right":
			justify.Horizontal = string(sym)
		case "top", "bottom":
			justify.Vertical = string(sym)
		case "mirror":
			justify.Mirror = true
		}
	}

	return justify
}

// GetProperty extracts a property from a (property "key" "value" ...) node
func GetProperty(s kicadsexp.Sexp) (Property, error) {
	prop := Property{}

	key, err := GetString(s, 1)
	if err != nil {
		return prop, fmt.Errorf("failed to parse property key: %w", err)
	}
	prop.Key = key

	// Value can be empty or missing
	if value, err := GetString(s, 2); err == nil {
		prop.Value = value
	}

	if atNode, ok := FindNode(s, "at"); ok {
		if pos, err := GetPosition(atNode); err == nil {
			prop.Position = pos
		}
	}
	if layerNode, ok := FindNode(s, "layer"); ok {
		prop.Layer, _ = GetString(layerNode, 1)
	}
	if effectsNode, ok := FindNode(s, "effects"); ok {
		if effects, err := GetEffects(effectsNode); err == nil {
			prop.Effects = effects
		}
	}
	// Flags follow key and value, so a property whose value is "hide" is not hidden.
	if items := Items(s); len(items) > 3 {
		prop.Hide = GetFlag(kicadsexp.NewList(items[3:]...), "hide")
	}
	prop.Hide = prop.Hide || prop.Effects.Hide

	return prop, nil
}
