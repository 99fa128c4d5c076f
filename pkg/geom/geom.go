// Package geom provides the planar point and segment helpers used by the wire
// engine. Coordinates are world units; the editor grid is one unit.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the distance below which two points are considered the same.
const Epsilon = 0.001

// EpsilonSq is Epsilon squared, compared against squared distances.
const EpsilonSq = Epsilon * Epsilon

// keyScale quantizes coordinates to 5 decimal places for position keys.
const keyScale = 1e5

// Point is a 2D coordinate in world units.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func fromVec(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return fromVec(r2.Add(p.vec(), q.vec())) }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return fromVec(r2.Sub(p.vec(), q.vec())) }

// Scale returns p*f.
func (p Point) Scale(f float64) Point { return fromVec(r2.Scale(f, p.vec())) }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return r2.Dot(p.vec(), q.vec()) }

// Len returns the length of p as a vector.
func (p Point) Len() float64 { return r2.Norm(p.vec()) }

// DistSq returns the squared distance between p and q.
func (p Point) DistSq(q Point) float64 { return r2.Norm2(r2.Sub(p.vec(), q.vec())) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Sqrt(p.DistSq(q)) }

// Unit returns p scaled to length 1. The zero vector is returned unchanged.
func (p Point) Unit() Point {
	if p.X == 0 && p.Y == 0 {
		return p
	}
	return fromVec(r2.Unit(p.vec()))
}

// Rotate rotates p by alpha radians counter-clockwise around c.
func (p Point) Rotate(alpha float64, c Point) Point {
	return fromVec(r2.Rotate(p.vec(), alpha, c.vec()))
}

// Near reports whether p and q are within Epsilon of each other.
func (p Point) Near(q Point) bool {
	return p.DistSq(q) < EpsilonSq
}

// String formats p as "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Snap rounds p to the nearest grid unit.
func Snap(p Point) Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// Key identifies a position quantized to 5 decimal places. Two points with the
// same key are the same node in a wire graph.
type Key struct {
	X int64
	Y int64
}

// KeyOf returns the quantized key of p.
func KeyOf(p Point) Key {
	return Key{
		X: int64(math.Round(p.X * keyScale)),
		Y: int64(math.Round(p.Y * keyScale)),
	}
}

// ParametricPosition returns t such that p0 + t*(p1-p0) is the projection of pt
// onto the infinite line through p0 and p1. A zero-length segment yields 0.
func ParametricPosition(p0, p1, pt Point) float64 {
	d := p1.Sub(p0)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return 0
	}
	return pt.Sub(p0).Dot(d) / lenSq
}

// NearestPointOnSegment returns the point of the closed segment p0-p1 closest
// to pt.
func NearestPointOnSegment(p0, p1, pt Point) Point {
	t := ParametricPosition(p0, p1, pt)
	t = math.Max(0, math.Min(1, t))
	return p0.Add(p1.Sub(p0).Scale(t))
}
