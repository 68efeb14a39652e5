package graphics

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lume/engine/core"
)

//go:embed shaders/default.vert
var defaultVertexShader string

//go:embed shaders/default.frag
var defaultFragmentShader string

// Shader owns a compiled GPU program. The program is immutable after
// creation except for per-draw uniform writes. Like textures, shaders
// are reference-counted so they can back many draw requests.
type Shader struct {
	device  Device
	program ProgramHandle

	refs      int
	destroyed bool
}

// NewShader compiles and links a vertex/fragment source pair. The vertex
// stage must consume the engine's fixed attribute layout and the
// u_projection matrix uniform.
func NewShader(device Device, vertexSrc, fragmentSrc string) (*Shader, error) {
	program, err := device.CreateProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	return &Shader{
		device:  device,
		program: program,
		refs:    1,
	}, nil
}

// newDefaultShader builds the built-in sprite shader.
func newDefaultShader(device Device) (*Shader, error) {
	return NewShader(device, defaultVertexShader, defaultFragmentShader)
}

func (s *Shader) Program() ProgramHandle {
	return s.program
}

func (s *Shader) Retain() *Shader {
	if s.destroyed {
		core.ReportStateError(core.NewStateError("Shader.Retain", "shader already destroyed"))
		return s
	}
	s.refs++
	return s
}

func (s *Shader) Release() {
	if s.destroyed {
		core.ReportStateError(core.NewStateError("Shader.Release", "shader already destroyed"))
		return
	}
	s.refs--
	if s.refs <= 0 {
		s.device.DestroyProgram(s.program)
		s.destroyed = true
	}
}

// Uniform setters. Writes take effect for draws batched after the call;
// the batcher flushes on shader changes so ordering holds.

func (s *Shader) SetUniformMat4(name string, value mgl32.Mat4) error {
	return s.device.SetUniformMat4(s.program, name, value)
}

func (s *Shader) SetUniformVec4(name string, value mgl32.Vec4) error {
	return s.device.SetUniformVec4(s.program, name, value)
}

func (s *Shader) SetUniformFloat(name string, value float32) error {
	return s.device.SetUniformFloat(s.program, name, value)
}

func (s *Shader) SetUniformInt(name string, value int32) error {
	return s.device.SetUniformInt(s.program, name, value)
}
