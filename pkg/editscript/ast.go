package editscript

import (
	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/alecthomas/participle/v2/lexer"
)

// Script is a sequence of edit commands
type Script struct {
	Commands []*Command `@@*`
}

// Command is one edit; exactly one field is set
type Command struct {
	Pos lexer.Position

	Place *Place `  @@`
	Draw  *Draw  `| @@`
	Drag  *Drag  `| @@`
	Move  *Move  `| @@`
	Erase *Erase `| @@`
}

// Point is a coordinate pair
// Example: (2.5, -1)
type Point struct {
	X float64 `"(" @Number ","`
	Y float64 `@Number ")"`
}

func (p Point) point() geom.Point { return geom.Pt(p.X, p.Y) }

// Place adds a component with terminals
// Example: place "U1" at (0, 0) pins { "1" (-2, 0) "2" (2, 0) }
type Place struct {
	ID   string    `"place" @String`
	At   Point     `"at" @@`
	Pins []*PinDef `( "pins" "{" @@* "}" )?`
}

// PinDef is a terminal and its offset from the component position
type PinDef struct {
	ID     string `@String`
	Offset Point  `@@`
}

// Draw creates a new wire through the given points
// Example: draw (0,0) (5,0) (5,5)
type Draw struct {
	Points []Point `"draw" @@ @@+`
}

// Drag moves one segment of a wire
// Example: drag wire "0" segment 1 by (0, 2)
type Drag struct {
	Wire    string `"drag" "wire" @String`
	Segment int    `"segment" @Number`
	By      Point  `"by" @@`
}

// Move moves a component and the wire endpoints bound to it
// Example: move "U1" by (1, 0)
type Move struct {
	Component string `"move" @String`
	By        Point  `"by" @@`
}

// Erase deletes one segment of a wire
// Example: erase wire "0" segment 2
type Erase struct {
	Wire    string `"erase" "wire" @String`
	Segment int    `"segment" @Number`
}

// Name returns the command keyword.
func (c *Command) Name() string {
	switch {
	case c.Place != nil:
		return "place"
	case c.Draw != nil:
		return "draw"
	case c.Drag != nil:
		return "drag"
	case c.Move != nil:
		return "move"
	case c.Erase != nil:
		return "erase"
	}
	return ""
}
