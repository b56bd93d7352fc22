// Package store persists source geometry (nodes, structural edges, grid
// state) for the geometry server. Derived simulation state is never stored.
package store

import (
	"context"
	"fmt"

	"github.com/msalah0e/lattice/internal/geometry"
)

// DefaultName is the geometry served when no name is given.
const DefaultName = "default"

// Record is one named geometry.
type Record struct {
	Name      string
	Nodes     []geometry.Node
	Edges     []geometry.StructuralEdge
	GridState geometry.GridState
}

// Store saves and loads named geometries.
type Store interface {
	Init(ctx context.Context) error
	SaveGeometry(ctx context.Context, rec Record) error
	LoadGeometry(ctx context.Context, name string) (Record, bool, error)
	ListGeometries(ctx context.Context) ([]string, error)
}

// NewStore builds a store backend by kind: "memory" or "sqlite".
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes backends that hold resources.
func CloseIfSupported(s Store) error {
	closer, ok := s.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

// FromGeometry captures a geometry as a record.
func FromGeometry(name string, g *geometry.Geometry) Record {
	return Record{
		Name:      name,
		Nodes:     append([]geometry.Node(nil), g.Nodes...),
		Edges:     append([]geometry.StructuralEdge(nil), g.Edges...),
		GridState: geometry.GridState{CurrentRadius: g.BoundaryRadius},
	}
}
