package wire

import "errors"

var (
	// ErrSegmentNotFound means a segment's endpoints are not adjacent nodes in
	// the graph derived from its own wire. The caller holds stale data.
	ErrSegmentNotFound = errors.New("wire: segment not found in wire graph")

	// ErrSegmentIndex means a segment index is outside the wire.
	ErrSegmentIndex = errors.New("wire: segment index out of range")

	// ErrWireIndex means a wire index is outside the wire list.
	ErrWireIndex = errors.New("wire: wire index out of range")

	// ErrComponentIndex means a component index is outside the layout.
	ErrComponentIndex = errors.New("wire: component index out of range")
)
