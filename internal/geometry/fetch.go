package geometry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Endpoint paths relative to the fetcher base URL.
const (
	PathNodes           = "/nodes"
	PathStructuralEdges = "/structural-edges"
	PathGridState       = "/grid-state"
)

// Result is the tagged outcome of fetching one resource.
type Result[T any] struct {
	Value T
	OK    bool
	Err   error
}

func ok[T any](v T) Result[T] { return Result[T]{Value: v, OK: true} }

func failed[T any](err error) Result[T] {
	var zero T
	return Result[T]{Value: zero, Err: err}
}

// Fetched holds the three endpoint results. Failed resources carry an empty
// value, never a partial one.
type Fetched struct {
	Nodes     Result[[]Node]
	Edges     Result[[]StructuralEdge]
	GridState Result[GridState]
}

// Fetcher loads geometry from the three read-only endpoints.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFetcher creates a fetcher with a bounded per-request timeout.
func NewFetcher(baseURL string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch requests all three resources concurrently. It never returns an error:
// each failure is recorded in its Result. If ctx is cancelled while requests
// are in flight, all results are discarded.
func (f *Fetcher) Fetch(ctx context.Context) Fetched {
	var out Fetched
	var g errgroup.Group

	g.Go(func() error {
		data, err := f.get(ctx, PathNodes)
		if err != nil {
			out.Nodes = failed[[]Node](err)
			return nil
		}
		nodes, err := DecodeNodes(data)
		if err != nil {
			out.Nodes = failed[[]Node](err)
			return nil
		}
		out.Nodes = ok(nodes)
		return nil
	})
	g.Go(func() error {
		data, err := f.get(ctx, PathStructuralEdges)
		if err != nil {
			out.Edges = failed[[]StructuralEdge](err)
			return nil
		}
		edges, err := DecodeEdges(data)
		if err != nil {
			out.Edges = failed[[]StructuralEdge](err)
			return nil
		}
		out.Edges = ok(edges)
		return nil
	})
	g.Go(func() error {
		data, err := f.get(ctx, PathGridState)
		if err != nil {
			out.GridState = failed[GridState](err)
			return nil
		}
		gs, err := DecodeGridState(data)
		if err != nil {
			out.GridState = failed[GridState](err)
			return nil
		}
		out.GridState = ok(gs)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Fetched{
			Nodes:     failed[[]Node](err),
			Edges:     failed[[]StructuralEdge](err),
			GridState: failed[GridState](err),
		}
	}
	return out
}

func (f *Fetcher) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned %d", path, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 32<<20))
}
