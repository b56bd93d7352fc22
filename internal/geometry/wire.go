package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EdgeTypeStructural is the only edge type the structural-edges endpoint serves.
const EdgeTypeStructural = "STRUCTURAL"

// Wire records mirror the endpoint JSON. Pointer fields distinguish a missing
// key from a zero value.
type wireNode struct {
	ID                 *string    `json:"id"`
	XPosition          *float64   `json:"xPosition"`
	YPosition          *float64   `json:"yPosition"`
	RingIndex          *int       `json:"ringIndex"`
	IsDormant          *bool      `json:"isDormant"`
	Embedding          *[]float64 `json:"embedding"`
	SemanticCandidates []string   `json:"semanticCandidates,omitempty"`
}

type wireEdge struct {
	FromNodeID *string  `json:"fromNodeId"`
	ToNodeID   *string  `json:"toNodeId"`
	Type       *string  `json:"type"`
	Weight     *float64 `json:"weight"`
	Stability  *float64 `json:"stability"`
}

type wireGridState struct {
	CurrentRadius *float64 `json:"currentRadius"`
}

// GridState is the grid-state endpoint payload.
type GridState struct {
	CurrentRadius float64 `json:"currentRadius"`
}

// ErrSchema marks a payload that decoded but failed shape validation.
var ErrSchema = errors.New("schema validation failed")

// DecodeNodes validates a nodes payload. Any invalid record rejects the
// whole payload.
func DecodeNodes(data []byte) ([]Node, error) {
	var raw []wireNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("nodes: %w", err)
	}
	nodes := make([]Node, 0, len(raw))
	for i, w := range raw {
		if w.ID == nil || *w.ID == "" || w.XPosition == nil || w.YPosition == nil ||
			w.RingIndex == nil || w.IsDormant == nil || w.Embedding == nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, ErrSchema)
		}
		nodes = append(nodes, Node{
			ID:                 *w.ID,
			X:                  *w.XPosition,
			Y:                  *w.YPosition,
			RingIndex:          *w.RingIndex,
			IsDormant:          *w.IsDormant,
			Embedding:          *w.Embedding,
			SemanticCandidates: w.SemanticCandidates,
		})
	}
	return nodes, nil
}

// DecodeEdges validates a structural-edges payload.
func DecodeEdges(data []byte) ([]StructuralEdge, error) {
	var raw []wireEdge
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("structural-edges: %w", err)
	}
	edges := make([]StructuralEdge, 0, len(raw))
	for i, w := range raw {
		if w.FromNodeID == nil || w.ToNodeID == nil || w.Type == nil ||
			w.Weight == nil || w.Stability == nil || *w.Type != EdgeTypeStructural {
			return nil, fmt.Errorf("structural-edges[%d]: %w", i, ErrSchema)
		}
		edges = append(edges, StructuralEdge{
			FromNodeID: *w.FromNodeID,
			ToNodeID:   *w.ToNodeID,
			Weight:     *w.Weight,
			Stability:  *w.Stability,
		})
	}
	return edges, nil
}

// DecodeGridState validates a grid-state payload.
func DecodeGridState(data []byte) (GridState, error) {
	var raw wireGridState
	if err := json.Unmarshal(data, &raw); err != nil {
		return GridState{}, fmt.Errorf("grid-state: %w", err)
	}
	if raw.CurrentRadius == nil {
		return GridState{}, fmt.Errorf("grid-state: %w", ErrSchema)
	}
	return GridState{CurrentRadius: *raw.CurrentRadius}, nil
}

// EncodeNodes renders nodes in endpoint format.
func EncodeNodes(nodes []Node) ([]byte, error) {
	out := make([]wireNode, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		emb := n.Embedding
		if emb == nil {
			emb = []float64{}
		}
		out[i] = wireNode{
			ID:                 &n.ID,
			XPosition:          &n.X,
			YPosition:          &n.Y,
			RingIndex:          &n.RingIndex,
			IsDormant:          &n.IsDormant,
			Embedding:          &emb,
			SemanticCandidates: n.SemanticCandidates,
		}
	}
	return json.Marshal(out)
}

// EncodeEdges renders structural edges in endpoint format.
func EncodeEdges(edges []StructuralEdge) ([]byte, error) {
	typ := EdgeTypeStructural
	out := make([]wireEdge, len(edges))
	for i := range edges {
		e := &edges[i]
		out[i] = wireEdge{
			FromNodeID: &e.FromNodeID,
			ToNodeID:   &e.ToNodeID,
			Type:       &typ,
			Weight:     &e.Weight,
			Stability:  &e.Stability,
		}
	}
	return json.Marshal(out)
}

// EncodeGridState renders the grid-state payload.
func EncodeGridState(gs GridState) ([]byte, error) {
	return json.Marshal(gs)
}
