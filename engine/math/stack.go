package math

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/propengine/engine/core"
)

// MatrixStack is a LIFO save/restore stack of 4x4 transforms.
// The bottom entry always exists and starts as the identity.
type MatrixStack struct {
	stack []mgl32.Mat4
}

func NewMatrixStack() *MatrixStack {
	return &MatrixStack{stack: []mgl32.Mat4{mgl32.Ident4()}}
}

// Push saves the current transform; the new top starts as a copy of it.
func (s *MatrixStack) Push() {
	s.stack = append(s.stack, s.Top())
}

// Pop restores the transform saved by the matching Push.
// Popping the bottom entry is refused.
func (s *MatrixStack) Pop() error {
	if len(s.stack) <= 1 {
		core.LogError("matrix stack: pop without matching push")
		return core.ErrStackUnderflow
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

func (s *MatrixStack) Top() mgl32.Mat4 {
	return s.stack[len(s.stack)-1]
}

// Load replaces the current transform.
func (s *MatrixStack) Load(m mgl32.Mat4) {
	s.stack[len(s.stack)-1] = m
}

// MulRight post-multiplies the current transform: top = top · m.
func (s *MatrixStack) MulRight(m mgl32.Mat4) {
	top := len(s.stack) - 1
	s.stack[top] = s.stack[top].Mul4(m)
}

// Depth is the number of saved transforms above the bottom entry.
func (s *MatrixStack) Depth() int {
	return len(s.stack) - 1
}
