//go:build !nogpu

package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/drape"
	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources, one per drape.Program.

//go:embed shaders/uniform_color.wgsl
var uniformColorShaderSource string

//go:embed shaders/vertex_color.wgsl
var vertexColorShaderSource string

// programSources maps each program to its WGSL source. Both programs share
// the uniform layout of drape.Uniforms at group(0) binding(0) and the entry
// points vs_main / fs_main.
var programSources = map[drape.Program]string{
	drape.ProgramUniformColor: uniformColorShaderSource,
	drape.ProgramVertexColor:  vertexColorShaderSource,
}

// ShaderSource returns the WGSL source of a program.
func ShaderSource(p drape.Program) (string, bool) {
	src, ok := programSources[p]
	return src, ok
}

// ValidateShaders compiles every embedded program with naga and reports the
// first failure. It needs no GPU.
func ValidateShaders() error {
	for _, p := range []drape.Program{drape.ProgramUniformColor, drape.ProgramVertexColor} {
		if _, err := naga.Compile(programSources[p]); err != nil {
			return fmt.Errorf("compile %s shader: %w", p, err)
		}
	}
	return nil
}
