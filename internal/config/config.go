package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds lattice configuration. Every numeric tuning value is a
// visual default, not a contract; the TOML file may override any of them.
type Config struct {
	Seed      int64           `toml:"seed"` // 0 derives a seed from the session id
	Viewport  ViewportConfig  `toml:"viewport"`
	Geometry  GeometryConfig  `toml:"geometry"`
	Semantic  SemanticConfig  `toml:"semantic"`
	Projector ProjectorConfig `toml:"projector"`
	Relax     RelaxConfig     `toml:"relax"`
	Fields    FieldsConfig    `toml:"fields"`
	Lifecycle LifecycleConfig `toml:"lifecycle"`
	Particles ParticlesConfig `toml:"particles"`
	Viewer    ViewerConfig    `toml:"viewer"`
	Store     StoreConfig     `toml:"store"`
}

// ViewportConfig controls the simulated canvas size.
type ViewportConfig struct {
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	MinWidth  float64 `toml:"min_width"`
	MinHeight float64 `toml:"min_height"`
}

// GeometryConfig selects where nodes and structural edges come from.
type GeometryConfig struct {
	Mode               string  `toml:"mode"` // "procedural", "fetch"
	BaseURL            string  `toml:"base_url"`
	FallbackProcedural bool    `toml:"fallback_procedural"`
	FetchTimeoutMS     int     `toml:"fetch_timeout_ms"`
	Rows               int     `toml:"rows"`
	Cols               int     `toml:"cols"`
	GridFill           float64 `toml:"grid_fill"`
	EdgeWeight         float64 `toml:"edge_weight"`
	EdgeStability      float64 `toml:"edge_stability"`
	EmbeddingDims      int     `toml:"embedding_dims"`
	CoreRing           int     `toml:"core_ring"`
}

// SemanticWeights are the five interpretation score weights.
type SemanticWeights struct {
	Similarity float64 `toml:"similarity"`
	Ring       float64 `toml:"ring"`
	Density    float64 `toml:"density"`
	Gravity    float64 `toml:"gravity"`
	Attunement float64 `toml:"attunement"`
}

// SemanticConfig tunes the overlay engine.
type SemanticConfig struct {
	IntervalMS          int             `toml:"interval_ms"`
	StabilityDecay      float64         `toml:"stability_decay"`
	StabilityFloor      float64         `toml:"stability_floor"`
	AttuneRadius        float64         `toml:"attune_radius"`
	AttuneGain          float64         `toml:"attune_gain"`
	AttuneDecay         float64         `toml:"attune_decay"`
	CandidateRadiusMin  float64         `toml:"candidate_radius_min"`
	CandidateRadiusFrac float64         `toml:"candidate_radius_frac"`
	Threshold           float64         `toml:"threshold"`
	TopK                int             `toml:"top_k"`
	MaxStableEdges      int             `toml:"max_stable_edges"`
	StabilityGain       float64         `toml:"stability_gain"`
	Weights             SemanticWeights `toml:"weights"`
}

// ProjectorConfig tunes the per-frame node projector.
type ProjectorConfig struct {
	PointerRadius    float64 `toml:"pointer_radius"`
	PointerWeight    float64 `toml:"pointer_weight"`
	AttunementWeight float64 `toml:"attunement_weight"`
	DegreeWeight     float64 `toml:"degree_weight"`
	WaveWeight       float64 `toml:"wave_weight"`
	DensityWeight    float64 `toml:"density_weight"`
	WaveSpeed        float64 `toml:"wave_speed"`
	WaveScale        float64 `toml:"wave_scale"`
	ParallaxPx       float64 `toml:"parallax_px"`
	RadialPx         float64 `toml:"radial_px"`
	StartupEaseS     float64 `toml:"startup_ease_s"`
	PlanetaryGain    float64 `toml:"planetary_gain"`
	SpringStiffness  float64 `toml:"spring_stiffness"`
	SpringDamping    float64 `toml:"spring_damping"`
	RestPullOuter    float64 `toml:"rest_pull_outer"`
	RestPullCore     float64 `toml:"rest_pull_core"`
	BillowPx         float64 `toml:"billow_px"`
	ShellRepelPx     float64 `toml:"shell_repel_px"`
	CoreElasticPx    float64 `toml:"core_elastic_px"`
	ShearPx          float64 `toml:"shear_px"`
	MinScale         float64 `toml:"min_scale"` // raised to MinScaleFloor by Validate
	VesselFollow     float64 `toml:"vessel_follow"`
	VesselDamping    float64 `toml:"vessel_damping"`
}

// RelaxConfig tunes the mesh relaxation pass.
type RelaxConfig struct {
	Rate        float64 `toml:"rate"`
	CoreFactor  float64 `toml:"core_factor"`
	ForceResist float64 `toml:"force_resist"`
}

// FieldsConfig tunes the derived scalar fields and the meta-grid.
type FieldsConfig struct {
	StrainGain        float64 `toml:"strain_gain"`
	ConnectorDecay    float64 `toml:"connector_decay"`
	ConnectorSelf     float64 `toml:"connector_self"`
	ConnectorNeighbor float64 `toml:"connector_neighbor"`
	FocusSeeds        int     `toml:"focus_seeds"`
	FocusSeedSpacing  float64 `toml:"focus_seed_spacing"`
	FocusSigmaFrac    float64 `toml:"focus_sigma_frac"`
	FocusSigmaMin     float64 `toml:"focus_sigma_min"`
	FocusCoreBonus    float64 `toml:"focus_core_bonus"`
	CoreReassignMinS  float64 `toml:"core_reassign_min_s"`
	CoreReassignJitS  float64 `toml:"core_reassign_jitter_s"`
	MetaSmoothing     float64 `toml:"meta_smoothing"`
	MetaLocalIndex    int     `toml:"meta_local_index"`
	CenterModeMinS    float64 `toml:"center_mode_min_s"`
	CenterModeMaxS    float64 `toml:"center_mode_max_s"`
}

// LifecycleConfig tunes the event lifecycle state machine.
type LifecycleConfig struct {
	IgniteThreshold  float64 `toml:"ignite_threshold"`
	ReleaseThreshold float64 `toml:"release_threshold"`
	GainCap          float64 `toml:"gain_cap"`
	ResidueGain      float64 `toml:"residue_gain"`
	IgniteMS         int     `toml:"ignite_ms"`
	HoldMS           int     `toml:"hold_ms"`
	ReleaseMS        int     `toml:"release_ms"`
	ResidueMS        int     `toml:"residue_ms"`
	SilenceMS        int     `toml:"silence_ms"`
	CooldownMS       int     `toml:"cooldown_ms"`
}

// ParticlesConfig tunes the decorative particle swarms.
type ParticlesConfig struct {
	Count           int     `toml:"count"`
	Damping         float64 `toml:"damping"`
	MaxSpeed        float64 `toml:"max_speed"`
	BoxMargin       float64 `toml:"box_margin"`
	WallRestitution float64 `toml:"wall_restitution"`
	CenterPull      float64 `toml:"center_pull"`
	OrbitPull       float64 `toml:"orbit_pull"`
	FocusPull       float64 `toml:"focus_pull"`
	Wander          float64 `toml:"wander"`
	Gust            float64 `toml:"gust"`
	Planetary       float64 `toml:"planetary"`
	PairSpring      float64 `toml:"pair_spring"`
	PairRest        float64 `toml:"pair_rest"`
	Swirl           float64 `toml:"swirl"`
	SeparationRange float64 `toml:"separation_range"`
	SeparationGain  float64 `toml:"separation_gain"`
	CoreForce       float64 `toml:"core_force"`
	CoreSigma       float64 `toml:"core_sigma"`
	CoreForceCap    float64 `toml:"core_force_cap"`
}

// ViewerConfig controls the terminal viewer.
type ViewerConfig struct {
	FPS            int     `toml:"fps"`
	DiagnosticsKey string  `toml:"diagnostics_key"`
	CellWidth      float64 `toml:"cell_width"`
	CellHeight     float64 `toml:"cell_height"`
	PointerStep    float64 `toml:"pointer_step"`
	ShowDiagnostic bool    `toml:"show_diagnostics"`
}

// StoreConfig selects the geometry store used by `lattice serve`.
type StoreConfig struct {
	Kind   string `toml:"kind"` // "memory", "sqlite"
	DBPath string `toml:"db_path"`
	Addr   string `toml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{Width: 1024, Height: 768, MinWidth: 320, MinHeight: 240},
		Geometry: GeometryConfig{
			Mode:               "procedural",
			BaseURL:            "http://localhost:8787",
			FallbackProcedural: true,
			FetchTimeoutMS:     4000,
			Rows:               8,
			Cols:               8,
			GridFill:           0.72,
			EdgeWeight:         1,
			EdgeStability:      1,
			EmbeddingDims:      8,
			CoreRing:           1,
		},
		Semantic: SemanticConfig{
			IntervalMS:          3000,
			StabilityDecay:      0.98,
			StabilityFloor:      0.02,
			AttuneRadius:        210,
			AttuneGain:          0.1,
			AttuneDecay:         0.975,
			CandidateRadiusMin:  220,
			CandidateRadiusFrac: 0.4,
			Threshold:           0.65,
			TopK:                6,
			MaxStableEdges:      150,
			StabilityGain:       0.32,
			Weights: SemanticWeights{
				Similarity: 0.45,
				Ring:       0.15,
				Density:    0.15,
				Gravity:    0.15,
				Attunement: 0.10,
			},
		},
		Projector: ProjectorConfig{
			PointerRadius:    320,
			PointerWeight:    0.5,
			AttunementWeight: 0.15,
			DegreeWeight:     0.12,
			WaveWeight:       0.13,
			DensityWeight:    0.1,
			WaveSpeed:        1.3,
			WaveScale:        0.012,
			ParallaxPx:       18,
			RadialPx:         26,
			StartupEaseS:     5.5,
			PlanetaryGain:    22,
			SpringStiffness:  34,
			SpringDamping:    11,
			RestPullOuter:    9,
			RestPullCore:     2.5,
			BillowPx:         2.4,
			ShellRepelPx:     6,
			CoreElasticPx:    4.5,
			ShearPx:          10,
			MinScale:         0.75,
			VesselFollow:     9,
			VesselDamping:    0.82,
		},
		Relax: RelaxConfig{Rate: 0.18, CoreFactor: 0.25, ForceResist: 0.7},
		Fields: FieldsConfig{
			StrainGain:        3.5,
			ConnectorDecay:    0.9,
			ConnectorSelf:     0.11,
			ConnectorNeighbor: 0.025,
			FocusSeeds:        2,
			FocusSeedSpacing:  100,
			FocusSigmaFrac:    0.09,
			FocusSigmaMin:     64,
			FocusCoreBonus:    0.08,
			CoreReassignMinS:  1,
			CoreReassignJitS:  1,
			MetaSmoothing:     2.2,
			MetaLocalIndex:    4,
			CenterModeMinS:    8,
			CenterModeMaxS:    12,
		},
		Lifecycle: LifecycleConfig{
			IgniteThreshold:  0.3,
			ReleaseThreshold: 0.22,
			GainCap:          0.9,
			ResidueGain:      0.18,
			IgniteMS:         520,
			HoldMS:           1250,
			ReleaseMS:        840,
			ResidueMS:        950,
			SilenceMS:        520,
			CooldownMS:       980,
		},
		Particles: ParticlesConfig{
			Count:           24,
			Damping:         0.935,
			MaxSpeed:        220,
			BoxMargin:       0.12,
			WallRestitution: 0.25,
			CenterPull:      0.8,
			OrbitPull:       1.1,
			FocusPull:       0.9,
			Wander:          60,
			Gust:            140,
			Planetary:       0.6,
			PairSpring:      2.2,
			PairRest:        22,
			Swirl:           40,
			SeparationRange: 18,
			SeparationGain:  90,
			CoreForce:       120,
			CoreSigma:       42,
			CoreForceCap:    160,
		},
		Viewer: ViewerConfig{
			FPS:            60,
			DiagnosticsKey: "d",
			CellWidth:      8,
			CellHeight:     16,
			PointerStep:    24,
		},
		Store: StoreConfig{Kind: "memory", DBPath: "lattice.db", Addr: ":8787"},
	}
}

// SemanticInterval is the overlay engine period.
func (c *Config) SemanticInterval() time.Duration {
	return time.Duration(c.Semantic.IntervalMS) * time.Millisecond
}

// FetchTimeout bounds each geometry endpoint request.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Geometry.FetchTimeoutMS) * time.Millisecond
}

// MinScaleFloor is the smallest node scale the projector may emit. Overrides
// below it are raised.
const MinScaleFloor = 0.75

// Validate resets values that would break the simulation back to their defaults.
func (c *Config) Validate() {
	def := Default()
	if c.Viewport.MinWidth <= 0 || c.Viewport.MinHeight <= 0 {
		c.Viewport.MinWidth, c.Viewport.MinHeight = def.Viewport.MinWidth, def.Viewport.MinHeight
	}
	if c.Viewport.Width < c.Viewport.MinWidth {
		c.Viewport.Width = c.Viewport.MinWidth
	}
	if c.Viewport.Height < c.Viewport.MinHeight {
		c.Viewport.Height = c.Viewport.MinHeight
	}
	if c.Geometry.Mode != "procedural" && c.Geometry.Mode != "fetch" {
		c.Geometry.Mode = def.Geometry.Mode
	}
	if c.Geometry.Rows < 2 || c.Geometry.Cols < 2 {
		c.Geometry.Rows, c.Geometry.Cols = def.Geometry.Rows, def.Geometry.Cols
	}
	if c.Geometry.EmbeddingDims <= 0 {
		c.Geometry.EmbeddingDims = def.Geometry.EmbeddingDims
	}
	if c.Semantic.IntervalMS <= 0 {
		c.Semantic.IntervalMS = def.Semantic.IntervalMS
	}
	if c.Semantic.Threshold < 0 || c.Semantic.Threshold > 1 {
		c.Semantic.Threshold = def.Semantic.Threshold
	}
	if c.Semantic.TopK <= 0 {
		c.Semantic.TopK = def.Semantic.TopK
	}
	if c.Semantic.MaxStableEdges <= 0 {
		c.Semantic.MaxStableEdges = def.Semantic.MaxStableEdges
	}
	if !(c.Projector.MinScale >= MinScaleFloor) {
		c.Projector.MinScale = MinScaleFloor
	}
	if c.Fields.FocusSeeds <= 0 {
		c.Fields.FocusSeeds = def.Fields.FocusSeeds
	}
	if c.Fields.MetaLocalIndex < 0 || c.Fields.MetaLocalIndex > 8 {
		c.Fields.MetaLocalIndex = def.Fields.MetaLocalIndex
	}
	if c.Fields.CenterModeMaxS < c.Fields.CenterModeMinS || c.Fields.CenterModeMinS <= 0 {
		c.Fields.CenterModeMinS, c.Fields.CenterModeMaxS = def.Fields.CenterModeMinS, def.Fields.CenterModeMaxS
	}
	if c.Particles.Count < 0 {
		c.Particles.Count = def.Particles.Count
	}
	if c.Particles.Damping <= 0 || c.Particles.Damping >= 1 {
		c.Particles.Damping = def.Particles.Damping
	}
	if c.Viewer.FPS <= 0 {
		c.Viewer.FPS = def.Viewer.FPS
	}
	if c.Viewer.DiagnosticsKey == "" {
		c.Viewer.DiagnosticsKey = def.Viewer.DiagnosticsKey
	}
	if c.Viewer.CellWidth <= 0 || c.Viewer.CellHeight <= 0 {
		c.Viewer.CellWidth, c.Viewer.CellHeight = def.Viewer.CellWidth, def.Viewer.CellHeight
	}
}

// ConfigDir returns the lattice config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "lattice")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the default config file, falling back to defaults if it is
// missing or unreadable.
func Load() *Config {
	cfg := Default()
	data, err := os.ReadFile(Path())
	if err != nil {
		return cfg
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return Default()
	}
	cfg.Validate()
	return cfg
}

// LoadFile reads an explicit config file. Unlike Load, errors are returned.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil // already exists
	}
	return Save(Default())
}
