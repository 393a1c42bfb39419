//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/fractal/internal/cache"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/escape.wgsl
var escapeShaderTemplate string

//go:embed shaders/present.wgsl
var presentShaderSource string

// tileSizePlaceholder is replaced in escape.wgsl by the workgroup edge.
const tileSizePlaceholder = "TILE_SIZE"

// escapeShaderSource returns the compute shader specialised for a square
// workgroup of tile x tile invocations.
func escapeShaderSource(tile uint32) string {
	return strings.ReplaceAll(escapeShaderTemplate, tileSizePlaceholder, strconv.FormatUint(uint64(tile), 10))
}

// spirvCache holds compiled shaders keyed by WGSL source. One entry per
// tile size in use plus the present shader.
var spirvCache = cache.New[string, []uint32](8)

// compileSPIRV returns the SPIR-V words for WGSL source, compiling on first
// use. The returned slice is shared and must not be modified.
func compileSPIRV(wgsl string) ([]uint32, error) {
	return spirvCache.GetOrCreate(wgsl, func() ([]uint32, error) {
		return lowerWGSL(wgsl)
	})
}

// lowerWGSL compiles WGSL with naga.
// SPIR-V is a stream of little-endian 32-bit words.
func lowerWGSL(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// createShaderModule builds a shader module from WGSL. With precompile set
// the source is lowered to SPIR-V by naga first; otherwise the backend
// compiles the WGSL itself.
func createShaderModule(device hal.Device, label, wgsl string, precompile bool) (hal.ShaderModule, error) {
	source := hal.ShaderSource{WGSL: wgsl}
	if precompile {
		words, err := compileSPIRV(wgsl)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		source = hal.ShaderSource{SPIRV: words}
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader: %w", label, err)
	}
	return module, nil
}
