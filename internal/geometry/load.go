package geometry

import (
	"context"

	"github.com/msalah0e/lattice/internal/config"
)

// LoadReport describes how a geometry was obtained.
type LoadReport struct {
	Mode      string
	Fetched   *Fetched
	FellBack  bool
	NodeCount int
	EdgeCount int
}

// Load builds the session geometry for a w×h viewport. In fetch mode,
// failed resources become empty sets; when no nodes arrive and fallback is
// enabled a procedural grid is used instead.
func Load(ctx context.Context, cfg *config.Config, w, h float64) (*Geometry, LoadReport) {
	report := LoadReport{Mode: cfg.Geometry.Mode}

	var g *Geometry
	if cfg.Geometry.Mode == "fetch" {
		fetched := NewFetcher(cfg.Geometry.BaseURL, cfg.FetchTimeout()).Fetch(ctx)
		report.Fetched = &fetched
		g = New(fetched.Nodes.Value, fetched.Edges.Value, cfg.Geometry.CoreRing)
		g.BoundaryRadius = fetched.GridState.Value.CurrentRadius
		if g.Len() == 0 && cfg.Geometry.FallbackProcedural {
			g = BuildGrid(w, h, cfg.Geometry)
			report.FellBack = true
		}
	} else {
		g = BuildGrid(w, h, cfg.Geometry)
	}

	report.NodeCount = g.Len()
	report.EdgeCount = len(g.Edges)
	return g, report
}
