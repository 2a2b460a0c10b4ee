// Package ddgi implements the Dynamic Diffuse Global Illumination probe
// volume: a grid of probes whose irradiance and depth are refreshed a
// handful at a time each frame by rendering each probe's six cubemap
// faces and convolving them into the volume.
package ddgi

import (
	"github.com/lumenforge/framegraph/rendergraph"
)

// Dims is a probe grid's extent along each axis.
type Dims struct{ NX, NY, NZ uint32 }

// Count returns the total probe count NX*NY*NZ.
func (d Dims) Count() uint32 { return d.NX * d.NY * d.NZ }

// ProbeVolume is the DDGI probe grid's per-frame update state.
type ProbeVolume struct {
	Origin         [3]float32
	Dims           Dims
	Spacing        float32
	ProbesPerFrame uint32
	BlendFactor    float32

	// CurrentProbeIndex is a monotone cursor modulo Dims.Count(),
	// advanced by ProbesPerFrame probes at the end of each Update call.
	CurrentProbeIndex uint32

	// ProbeViews holds Dims.Count()*6 view handles, indexed
	// probeIndex*6+face, once Resize has run (discarding old views first).
	// It is empty until then; nothing allocates ProbesPerFrame*6 handles
	// up front.
	ProbeViews []rendergraph.Handle

	ProbeCubemap rendergraph.Handle // 2D array, 6 layers per in-flight probe
	Irradiance   rendergraph.Handle // 3D volume
	Depth        rendergraph.Handle // 3D volume
}

// Resize discards ProbeViews and re-allocates newCount*6 handles when the
// grid dimensions change. allocate is called once per discarded view
// slot's replacement (the caller owns actual GPU view creation).
//
// Parameters:
//   - dims: the new grid dimensions
//   - allocate: called once per new view slot to produce its Handle
func (v *ProbeVolume) Resize(dims Dims, allocate func(face int) rendergraph.Handle) {
	v.Dims = dims
	total := dims.Count() * 6
	v.ProbeViews = make([]rendergraph.Handle, total)
	for i := range v.ProbeViews {
		v.ProbeViews[i] = allocate(i % 6)
	}
}
