package loaders

import (
	"os"

	"github.com/spaghettifunk/lume/engine/core"
)

// ShaderData holds the GLSL source pair of a shader program.
type ShaderData struct {
	VertexSource   string
	FragmentSource string
}

type ShaderLoader struct{}

// Load reads a <base>.vert / <base>.frag source pair.
func (l *ShaderLoader) Load(basePath string) (*ShaderData, error) {
	vert, err := os.ReadFile(basePath + ".vert")
	if err != nil {
		return nil, core.ResourceErrorf("read vertex shader %s.vert: %v", basePath, err)
	}
	frag, err := os.ReadFile(basePath + ".frag")
	if err != nil {
		return nil, core.ResourceErrorf("read fragment shader %s.frag: %v", basePath, err)
	}
	return &ShaderData{
		VertexSource:   string(vert),
		FragmentSource: string(frag),
	}, nil
}
