package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDanglingEdgeReference is matched by errors returned when an edge
	// endpoint has no stored coordinates at query time.
	ErrDanglingEdgeReference = errors.New("dangling edge reference")

	// ErrNonFiniteWeight is returned when an edge weight evaluates to NaN or
	// infinity, which would break the priority queue ordering.
	ErrNonFiniteWeight = errors.New("non-finite edge weight")
)

type DanglingEdgeReferenceError struct {
	Edge    Edge
	Missing int64
}

func (e *DanglingEdgeReferenceError) Error() string {
	return fmt.Sprintf("dangling edge reference: edge %d -> %d: node %d has no coordinates", e.Edge.From, e.Edge.To, e.Missing)
}

func (e *DanglingEdgeReferenceError) Is(target error) bool {
	return target == ErrDanglingEdgeReference
}
