package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/renderer"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

// Backend implements renderer.Backend on an OpenGL 4.1 core context.
// It must be created and used on the thread that owns the context.
type Backend struct {
	vao uint32
}

// New loads the GL function pointers and binds the vertex array object every
// attribute declaration is recorded into. Call after the context is current.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "gl init")
	}
	core.LogInfo("OpenGL %s, GLSL %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))

	b := &Backend{}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	return b, nil
}

func (b *Backend) Shutdown() {
	gl.BindVertexArray(0)
	gl.DeleteVertexArrays(1, &b.vao)
}

// Err drains the GL error queue. GPU failures during a frame surface here
// rather than through the draw calls that caused them.
func (b *Backend) Err() error {
	var codes []string
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		codes = append(codes, errorName(code))
	}
	if len(codes) == 0 {
		return nil
	}
	return errors.Errorf("gl errors: %v", codes)
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("0x%x", code)
	}
}

func (b *Backend) Clear(r, g, bl, a float32) {
	gl.ClearColor(r, g, bl, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (b *Backend) Viewport(width, height uint32) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *Backend) CreateBuffer() (renderer.BufferHandle, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, errors.Wrap(b.Err(), "glGenBuffers returned 0")
	}
	return renderer.BufferHandle(id), nil
}

func (b *Backend) DeleteBuffer(handle renderer.BufferHandle) {
	id := uint32(handle)
	gl.DeleteBuffers(1, &id)
}

func (b *Backend) BindBuffer(target renderer.BufferTarget, handle renderer.BufferHandle) {
	gl.BindBuffer(bufferTarget(target), uint32(handle))
}

func (b *Backend) BufferData(target renderer.BufferTarget, data interface{}, usage renderer.BufferUsage) error {
	switch d := data.(type) {
	case []float32:
		if len(d) == 0 {
			return errors.Wrap(core.ErrUnsupportedBufferData, "empty []float32")
		}
		gl.BufferData(bufferTarget(target), 4*len(d), gl.Ptr(d), bufferUsage(usage))
	case []uint16:
		if len(d) == 0 {
			return errors.Wrap(core.ErrUnsupportedBufferData, "empty []uint16")
		}
		gl.BufferData(bufferTarget(target), 2*len(d), gl.Ptr(d), bufferUsage(usage))
	case []uint32:
		if len(d) == 0 {
			return errors.Wrap(core.ErrUnsupportedBufferData, "empty []uint32")
		}
		gl.BufferData(bufferTarget(target), 4*len(d), gl.Ptr(d), bufferUsage(usage))
	default:
		return errors.Wrapf(core.ErrUnsupportedBufferData, "%T", data)
	}
	return nil
}

func (b *Backend) VertexAttribPointer(index uint32, size int32, dataType renderer.DataType, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, glType(dataType), normalized, stride, uintptr(offset))
}

func (b *Backend) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (b *Backend) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (b *Backend) BindTexture(texture *metadata.Texture) {
	var id uint32
	if texture != nil {
		id = texture.ID
	}
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func (b *Backend) Uniform1i(location int32, value int32) {
	gl.Uniform1i(location, value)
}

func (b *Backend) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (b *Backend) DrawElements(mode renderer.Primitive, count int32, dataType renderer.DataType, offset int) {
	gl.DrawElements(primitive(mode), count, glType(dataType), gl.PtrOffset(offset))
}

func bufferTarget(t renderer.BufferTarget) uint32 {
	switch t {
	case renderer.ElementArrayBuffer:
		return gl.ELEMENT_ARRAY_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func bufferUsage(u renderer.BufferUsage) uint32 {
	switch u {
	case renderer.DynamicDraw:
		return gl.DYNAMIC_DRAW
	case renderer.StreamDraw:
		return gl.STREAM_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

func glType(t renderer.DataType) uint32 {
	switch t {
	case renderer.UnsignedByte:
		return gl.UNSIGNED_BYTE
	case renderer.UnsignedShort:
		return gl.UNSIGNED_SHORT
	case renderer.UnsignedInt:
		return gl.UNSIGNED_INT
	default:
		return gl.FLOAT
	}
}

func primitive(p renderer.Primitive) uint32 {
	switch p {
	case renderer.Lines:
		return gl.LINES
	case renderer.Points:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}
