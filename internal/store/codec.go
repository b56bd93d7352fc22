package store

import (
	"fmt"

	"github.com/msalah0e/lattice/internal/geometry"
)

// Records are stored in the same wire format the geometry endpoints serve,
// so a stored payload is validated exactly like a fetched one.

func encodeRecord(rec Record) (nodes, edges, state []byte, err error) {
	if nodes, err = geometry.EncodeNodes(rec.Nodes); err != nil {
		return nil, nil, nil, fmt.Errorf("encode nodes: %w", err)
	}
	if edges, err = geometry.EncodeEdges(rec.Edges); err != nil {
		return nil, nil, nil, fmt.Errorf("encode edges: %w", err)
	}
	if state, err = geometry.EncodeGridState(rec.GridState); err != nil {
		return nil, nil, nil, fmt.Errorf("encode grid state: %w", err)
	}
	return nodes, edges, state, nil
}

func decodeRecord(name string, nodes, edges, state []byte) (Record, error) {
	rec := Record{Name: name}
	var err error
	if rec.Nodes, err = geometry.DecodeNodes(nodes); err != nil {
		return Record{}, err
	}
	if rec.Edges, err = geometry.DecodeEdges(edges); err != nil {
		return Record{}, err
	}
	if rec.GridState, err = geometry.DecodeGridState(state); err != nil {
		return Record{}, err
	}
	return rec, nil
}
