package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

// BufferHandle is an opaque GPU buffer name. Zero means "no buffer".
type BufferHandle uint32

type BufferTarget uint8

const (
	// Per-vertex attribute data.
	ArrayBuffer BufferTarget = iota + 1
	// Index data for indexed draws.
	ElementArrayBuffer
)

// BufferUsage hints how often a buffer's contents will be rewritten.
type BufferUsage uint8

const (
	StaticDraw BufferUsage = iota + 1
	DynamicDraw
	StreamDraw
)

type DataType uint8

const (
	Float DataType = iota + 1
	UnsignedByte
	UnsignedShort
	UnsignedInt
)

// Size returns the size in bytes of one element of the type.
func (t DataType) Size() int {
	switch t {
	case Float, UnsignedInt:
		return 4
	case UnsignedShort:
		return 2
	case UnsignedByte:
		return 1
	default:
		return 0
	}
}

type Primitive uint8

const (
	Triangles Primitive = iota + 1
	Lines
	Points
)

// Backend is the subset of a GPU API that renderable objects drive.
// Calls are issued from the thread owning the GPU context. Failures of the
// fire-and-forget calls are reported through the implementation's own error
// channel, not through these methods.
type Backend interface {
	CreateBuffer() (BufferHandle, error)
	DeleteBuffer(handle BufferHandle)
	BindBuffer(target BufferTarget, handle BufferHandle)
	// BufferData uploads data ([]float32 or []uint16) to the buffer bound to target.
	BufferData(target BufferTarget, data interface{}, usage BufferUsage) error

	VertexAttribPointer(index uint32, size int32, dataType DataType, normalized bool, stride int32, offset int)
	EnableVertexAttribArray(index uint32)

	ActiveTexture(unit uint32)
	BindTexture(texture *metadata.Texture)

	Uniform1i(location int32, value int32)
	UniformMatrix4(location int32, m mgl32.Mat4)

	DrawElements(mode Primitive, count int32, dataType DataType, offset int)
}
