//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/fractal"
)

// uniformSize is the byte size of the Params block in escape.wgsl.
const uniformSize = 32

// Uniforms mirrors the Params block of the compute shader. The view is
// narrowed to f32, which is why zoom stops at Config.MinExtent.
type Uniforms struct {
	Center     [2]float32
	Extent     [2]float32
	Julia      [2]float32
	Iterations uint32
	Family     uint32
}

// NewUniforms snapshots a view for one frame.
func NewUniforms(view fractal.ViewState, family fractal.Family, julia fractal.Point) Uniforms {
	iter := view.Iterations
	if iter < 0 {
		iter = 0
	}
	return Uniforms{
		Center:     [2]float32{float32(view.Center.X), float32(view.Center.Y)},
		Extent:     [2]float32{float32(view.Extent.X), float32(view.Extent.Y)},
		Julia:      [2]float32{float32(julia.X), float32(julia.Y)},
		Iterations: uint32(iter),
		Family:     uint32(family),
	}
}

// Bytes packs the uniforms in the shader's little-endian layout.
func (u Uniforms) Bytes() []byte {
	b := make([]byte, uniformSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], math.Float32bits(u.Center[0]))
	le.PutUint32(b[4:], math.Float32bits(u.Center[1]))
	le.PutUint32(b[8:], math.Float32bits(u.Extent[0]))
	le.PutUint32(b[12:], math.Float32bits(u.Extent[1]))
	le.PutUint32(b[16:], math.Float32bits(u.Julia[0]))
	le.PutUint32(b[20:], math.Float32bits(u.Julia[1]))
	le.PutUint32(b[24:], u.Iterations)
	le.PutUint32(b[28:], u.Family)
	return b
}
