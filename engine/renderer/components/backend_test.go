package components

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/renderer"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

type call struct {
	name string
	args []interface{}
}

func (c call) String() string {
	return fmt.Sprintf("%s%v", c.name, c.args)
}

// recordingBackend records every call and keeps track of live buffers.
type recordingBackend struct {
	calls []call

	next    renderer.BufferHandle
	live    map[renderer.BufferHandle]bool
	deleted map[renderer.BufferHandle]int
	bound   map[renderer.BufferTarget]renderer.BufferHandle
	uploads map[renderer.BufferHandle]interface{}

	failCreateAt int // 1-based CreateBuffer call that fails, 0 never
	creates      int
	panicOnDraw  bool
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		live:    make(map[renderer.BufferHandle]bool),
		deleted: make(map[renderer.BufferHandle]int),
		bound:   make(map[renderer.BufferTarget]renderer.BufferHandle),
		uploads: make(map[renderer.BufferHandle]interface{}),
	}
}

func (b *recordingBackend) record(name string, args ...interface{}) {
	b.calls = append(b.calls, call{name: name, args: args})
}

func (b *recordingBackend) names() []string {
	out := make([]string, len(b.calls))
	for i, c := range b.calls {
		out[i] = c.name
	}
	return out
}

func (b *recordingBackend) reset() {
	b.calls = nil
}

func (b *recordingBackend) CreateBuffer() (renderer.BufferHandle, error) {
	b.creates++
	b.record("CreateBuffer")
	if b.failCreateAt == b.creates {
		return 0, errors.New("out of memory")
	}
	b.next++
	b.live[b.next] = true
	return b.next, nil
}

func (b *recordingBackend) DeleteBuffer(h renderer.BufferHandle) {
	b.record("DeleteBuffer", h)
	b.deleted[h]++
	delete(b.live, h)
}

func (b *recordingBackend) BindBuffer(target renderer.BufferTarget, h renderer.BufferHandle) {
	b.record("BindBuffer", target, h)
	b.bound[target] = h
}

func (b *recordingBackend) BufferData(target renderer.BufferTarget, data interface{}, usage renderer.BufferUsage) error {
	b.record("BufferData", target, usage)
	b.uploads[b.bound[target]] = data
	return nil
}

func (b *recordingBackend) VertexAttribPointer(index uint32, size int32, dataType renderer.DataType, normalized bool, stride int32, offset int) {
	b.record("VertexAttribPointer", index, size, dataType, normalized, stride, offset)
}

func (b *recordingBackend) EnableVertexAttribArray(index uint32) {
	b.record("EnableVertexAttribArray", index)
}

func (b *recordingBackend) ActiveTexture(unit uint32) {
	b.record("ActiveTexture", unit)
}

func (b *recordingBackend) BindTexture(texture *metadata.Texture) {
	b.record("BindTexture", texture.ID)
}

func (b *recordingBackend) Uniform1i(location int32, value int32) {
	b.record("Uniform1i", location, value)
}

func (b *recordingBackend) UniformMatrix4(location int32, m mgl32.Mat4) {
	b.record("UniformMatrix4", location, m)
}

func (b *recordingBackend) DrawElements(mode renderer.Primitive, count int32, dataType renderer.DataType, offset int) {
	b.record("DrawElements", mode, count, dataType, offset)
	if b.panicOnDraw {
		panic("device lost")
	}
}
