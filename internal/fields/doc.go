// Package fields holds the derived scalar fields computed from projected node
// positions each frame: edge strain, connector diffusion, the focus heatmap,
// the event lifecycle, the coarse meta-grid oscillator network, the centre
// mode envelope and the per-core-node interaction weights.
//
// Fields are read by the projector on the next frame and by the decorative
// passes; renderers only read them.
package fields
