package geometry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/msalah0e/lattice/internal/config"
)

const validNodes = `[
 {"id":"a","xPosition":10,"yPosition":20,"ringIndex":0,"isDormant":false,"embedding":[1,0]},
 {"id":"b","xPosition":40,"yPosition":20,"ringIndex":1,"isDormant":true,"embedding":[0,1],"semanticCandidates":["a"]}
]`

const validEdges = `[{"fromNodeId":"a","toNodeId":"b","type":"STRUCTURAL","weight":1,"stability":0.5}]`

func newGeometryServer(t *testing.T, nodes, edges, grid string, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			if status != http.StatusOK {
				http.Error(w, "boom", status)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc(PathNodes, write(nodes))
	mux.HandleFunc(PathStructuralEdges, write(edges))
	mux.HandleFunc(PathGridState, write(grid))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchValid(t *testing.T) {
	srv := newGeometryServer(t, validNodes, validEdges, `{"currentRadius":3}`, http.StatusOK)

	got := NewFetcher(srv.URL, time.Second).Fetch(context.Background())
	if !got.Nodes.OK || len(got.Nodes.Value) != 2 {
		t.Fatalf("nodes result = %+v", got.Nodes)
	}
	if !got.Edges.OK || len(got.Edges.Value) != 1 {
		t.Fatalf("edges result = %+v", got.Edges)
	}
	if !got.GridState.OK || got.GridState.Value.CurrentRadius != 3 {
		t.Fatalf("grid-state result = %+v", got.GridState)
	}
	b := got.Nodes.Value[1]
	if !b.IsDormant || b.RingIndex != 1 || len(b.SemanticCandidates) != 1 {
		t.Errorf("node b decoded wrong: %+v", b)
	}
}

func TestFetchServerErrorYieldsEmpty(t *testing.T) {
	srv := newGeometryServer(t, validNodes, validEdges, `{"currentRadius":3}`, http.StatusInternalServerError)

	cfg := config.Default()
	cfg.Geometry.Mode = "fetch"
	cfg.Geometry.BaseURL = srv.URL
	cfg.Geometry.FallbackProcedural = false

	g, report := Load(context.Background(), cfg, 1024, 768)
	if g.Len() != 0 || len(g.Edges) != 0 {
		t.Fatalf("expected empty geometry, got %d nodes %d edges", g.Len(), len(g.Edges))
	}
	if report.Fetched == nil || report.Fetched.Nodes.OK || report.Fetched.Edges.OK || report.Fetched.GridState.OK {
		t.Fatalf("expected all results failed: %+v", report.Fetched)
	}
	if report.FellBack {
		t.Error("fallback disabled but report says it fell back")
	}
}

func TestFetchFallbackToProcedural(t *testing.T) {
	srv := newGeometryServer(t, "", "", "", http.StatusInternalServerError)

	cfg := config.Default()
	cfg.Geometry.Mode = "fetch"
	cfg.Geometry.BaseURL = srv.URL

	g, report := Load(context.Background(), cfg, 1024, 768)
	if !report.FellBack || g.Len() != 64 || !g.Procedural {
		t.Fatalf("expected procedural fallback, report=%+v nodes=%d", report, g.Len())
	}
}

func TestFetchSchemaFailureDiscardsWholePayload(t *testing.T) {
	badNodes := `[
	 {"id":"a","xPosition":10,"yPosition":20,"ringIndex":0,"isDormant":false,"embedding":[1]},
	 {"id":"b","xPosition":40,"ringIndex":1,"isDormant":false,"embedding":[1]}
	]`
	badEdges := `[{"fromNodeId":"a","toNodeId":"b","type":"SEMANTIC","weight":1,"stability":1}]`
	srv := newGeometryServer(t, badNodes, badEdges, `{"radius":3}`, http.StatusOK)

	got := NewFetcher(srv.URL, time.Second).Fetch(context.Background())
	if got.Nodes.OK || len(got.Nodes.Value) != 0 || !errors.Is(got.Nodes.Err, ErrSchema) {
		t.Errorf("nodes should fail schema validation: %+v", got.Nodes)
	}
	if got.Edges.OK || !errors.Is(got.Edges.Err, ErrSchema) {
		t.Errorf("edges should fail schema validation: %+v", got.Edges)
	}
	if got.GridState.OK || !errors.Is(got.GridState.Err, ErrSchema) {
		t.Errorf("grid-state should fail schema validation: %+v", got.GridState)
	}
}

func TestFetchWrongTypes(t *testing.T) {
	srv := newGeometryServer(t, `[{"id":1}]`, `{"not":"an array"}`, `[]`, http.StatusOK)

	got := NewFetcher(srv.URL, time.Second).Fetch(context.Background())
	if got.Nodes.OK || got.Edges.OK || got.GridState.OK {
		t.Fatalf("malformed payloads should all fail: %+v", got)
	}
}

func TestFetchCancelledDiscardsResults(t *testing.T) {
	srv := newGeometryServer(t, validNodes, validEdges, `{"currentRadius":3}`, http.StatusOK)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := NewFetcher(srv.URL, time.Second).Fetch(ctx)
	if got.Nodes.OK || got.Edges.OK || got.GridState.OK {
		t.Fatal("results should be discarded after cancellation")
	}
	if !errors.Is(got.Nodes.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", got.Nodes.Err)
	}
}

func TestFetchUnreachable(t *testing.T) {
	got := NewFetcher("http://127.0.0.1:1", 200*time.Millisecond).Fetch(context.Background())
	if got.Nodes.OK || got.Nodes.Err == nil {
		t.Fatal("expected network error to be captured")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := BuildGrid(640, 480, config.Default().Geometry)

	nodesJSON, err := EncodeNodes(g.Nodes)
	if err != nil {
		t.Fatal(err)
	}
	edgesJSON, err := EncodeEdges(g.Edges)
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := DecodeNodes(nodesJSON)
	if err != nil {
		t.Fatalf("decode nodes: %v", err)
	}
	edges, err := DecodeEdges(edgesJSON)
	if err != nil {
		t.Fatalf("decode edges: %v", err)
	}
	back := New(nodes, edges, 1)
	if back.Len() != g.Len() || len(back.Edges) != len(g.Edges) || len(back.Core) != len(g.Core) {
		t.Fatalf("round trip changed geometry: %d/%d nodes, %d/%d edges", back.Len(), g.Len(), len(back.Edges), len(g.Edges))
	}
}
