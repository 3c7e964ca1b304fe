package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/math"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

// RenderContext is the GPU state an object draws against: the backend, the
// model-view matrix stack, the projection, and the active program's layout.
// One context exists per GPU context and is passed explicitly to every draw.
type RenderContext struct {
	Backend    Backend
	Stack      *math.MatrixStack
	Projection mgl32.Mat4
	Program    *metadata.ProgramLayout
}

func NewRenderContext(backend Backend, program *metadata.ProgramLayout) (*RenderContext, error) {
	if backend == nil {
		return nil, errors.Wrap(core.ErrInvalidContext, "nil backend")
	}
	if program == nil {
		return nil, errors.Wrap(core.ErrInvalidContext, "nil program layout")
	}
	return &RenderContext{
		Backend:    backend,
		Stack:      math.NewMatrixStack(),
		Projection: mgl32.Ident4(),
		Program:    program,
	}, nil
}

// BeginFrame resets the matrix stack to the camera's view matrix. A non-zero
// depth here means some draw did not pop what it pushed.
func (c *RenderContext) BeginFrame(view, projection mgl32.Mat4) {
	if depth := c.Stack.Depth(); depth != 0 {
		core.LogWarn("matrix stack left at depth %d by the previous frame", depth)
		c.Stack = math.NewMatrixStack()
	}
	c.Stack.Load(view)
	c.Projection = projection
}
