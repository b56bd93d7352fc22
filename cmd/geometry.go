package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/store"
	"github.com/msalah0e/lattice/internal/ui"
	"github.com/spf13/cobra"
)

func geometryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "geometry",
		Aliases: []string{"geom"},
		Short:   "Inspect, fetch and store lattice geometry",
	}

	cmd.AddCommand(
		geometryShowCmd(),
		geometryFetchCmd(),
		geometrySeedCmd(),
		geometryListCmd(),
		geometryExportCmd(),
	)
	return cmd
}

func geometryShowCmd() *cobra.Command {
	var listNodes bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Summarise the geometry a session would start with",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			g, report := geometry.Load(cmd.Context(), cfg, cfg.Viewport.Width, cfg.Viewport.Height)

			ui.Banner("geometry")
			printGeometry(g, report.Mode)
			if report.FellBack {
				fmt.Printf("  %s fetch returned no nodes, procedural fallback\n", ui.WarnIcon())
			}

			if listNodes {
				fmt.Println()
				headers := []string{"ID", "X", "Y", "Ring", "Degree", "Core"}
				var rows [][]string
				for i, n := range g.Nodes {
					core := ""
					if g.IsCore[i] {
						core = ui.Mark
					}
					rows = append(rows, []string{
						n.ID,
						fmt.Sprintf("%.1f", n.X),
						fmt.Sprintf("%.1f", n.Y),
						strconv.Itoa(n.RingIndex),
						strconv.Itoa(g.Degree[i]),
						core,
					})
				}
				ui.Table(headers, rows)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listNodes, "nodes", false, "List every node")
	return cmd
}

func printGeometry(g *geometry.Geometry, source string) {
	b := g.Bounds
	fmt.Printf("  Source:  %s\n", ui.Brand.Sprint(source))
	fmt.Printf("  Nodes:   %d (%d core)\n", g.Len(), len(g.Core))
	fmt.Printf("  Edges:   %d structural, max degree %d\n", len(g.Edges), g.MaxDegree)
	fmt.Printf("  Bounds:  (%.0f,%.0f) – (%.0f,%.0f)\n", b.MinX, b.MinY, b.MaxX, b.MaxY)
	if g.BoundaryRadius > 0 {
		fmt.Printf("  Radius:  %.1f\n", g.BoundaryRadius)
	}
}

func geometryFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [base-url]",
		Short: "Fetch the three geometry endpoints and report each result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			base := cfg.Geometry.BaseURL
			if len(args) == 1 {
				base = args[0]
			}

			ui.Banner("fetch " + base)
			f := geometry.NewFetcher(base, cfg.FetchTimeout()).Fetch(cmd.Context())

			headers := []string{"Endpoint", "Status", "Items"}
			rows := [][]string{
				fetchRow(geometry.PathNodes, f.Nodes.OK, f.Nodes.Err, len(f.Nodes.Value)),
				fetchRow(geometry.PathStructuralEdges, f.Edges.OK, f.Edges.Err, len(f.Edges.Value)),
				fetchRow(geometry.PathGridState, f.GridState.OK, f.GridState.Err, boolCount(f.GridState.OK)),
			}
			ui.Table(headers, rows)

			g := geometry.New(f.Nodes.Value, f.Edges.Value, cfg.Geometry.CoreRing)
			g.BoundaryRadius = f.GridState.Value.CurrentRadius
			fmt.Println()
			printGeometry(g, "fetch")
			return nil
		},
	}
	return cmd
}

func fetchRow(path string, ok bool, err error, n int) []string {
	if ok {
		return []string{path, ui.StatusIcon(true) + " ok", strconv.Itoa(n)}
	}
	return []string{path, ui.StatusIcon(false) + " " + err.Error(), "0"}
}

func boolCount(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

func geometrySeedCmd() *cobra.Command {
	var fromFetch bool

	cmd := &cobra.Command{
		Use:   "seed [name]",
		Short: "Store a procedural (or fetched) geometry under a name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			name := store.DefaultName
			if len(args) == 1 {
				name = args[0]
			}
			if fromFetch {
				cfg.Geometry.Mode = "fetch"
				cfg.Geometry.FallbackProcedural = false
			} else {
				cfg.Geometry.Mode = "procedural"
			}

			g, _ := geometry.Load(cmd.Context(), cfg, cfg.Viewport.Width, cfg.Viewport.Height)
			if g.Len() == 0 {
				return fmt.Errorf("no nodes to store")
			}
			if err := saveGeometry(cmd.Context(), cfg, name, g); err != nil {
				return err
			}
			ui.Good.Printf("  %s Stored %q: %d nodes, %d edges (%s store)\n",
				ui.StatusIcon(true), name, g.Len(), len(g.Edges), cfg.Store.Kind)
			if cfg.Store.Kind == "memory" {
				fmt.Println(ui.Subtle.Sprint("  The memory store is discarded on exit. Set store.kind = \"sqlite\" to keep it."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromFetch, "fetch", false, "Store what the configured base URL serves")
	return cmd
}

func saveGeometry(ctx context.Context, cfg *config.Config, name string, g *geometry.Geometry) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)
	return st.SaveGeometry(ctx, store.FromGeometry(name, g))
}

func geometryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored geometries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore(st)

			names, err := st.ListGeometries(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("  No stored geometries. Add one with: lattice geometry seed")
				return nil
			}
			for _, n := range names {
				fmt.Printf("  %s %s\n", ui.Subtle.Sprint("·"), n)
			}
			return nil
		},
	}
}

func geometryExportCmd() *cobra.Command {
	var what string

	cmd := &cobra.Command{
		Use:               "export [name]",
		Short:             "Write a stored geometry in endpoint format",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: geometryNameCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			name := store.DefaultName
			if len(args) == 1 {
				name = args[0]
			}

			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore(st)

			rec, ok, err := st.LoadGeometry(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no stored geometry named %q", name)
			}

			var data []byte
			switch what {
			case "nodes":
				data, err = geometry.EncodeNodes(rec.Nodes)
			case "edges":
				data, err = geometry.EncodeEdges(rec.Edges)
			case "grid-state":
				data, err = geometry.EncodeGridState(rec.GridState)
			default:
				return fmt.Errorf("unknown resource %q: want nodes, edges or grid-state", what)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&what, "resource", "nodes", "Resource to write: nodes, edges or grid-state")
	return cmd
}
