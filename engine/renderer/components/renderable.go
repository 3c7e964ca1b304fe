package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/math"
	"github.com/spaghettifunk/propengine/engine/renderer"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

const (
	positionComponents = 3
	normalComponents   = 3
	texCoordComponents = 2
	float32Size        = 4
)

// RenderableObjectConfig is everything needed to build a RenderableObject.
type RenderableObjectConfig struct {
	Name     string
	Mesh     *metadata.MeshAsset
	Texture  *metadata.Texture
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	// Rotation holds per-axis angles in degrees.
	Rotation mgl32.Vec3
	// Collider is optional; without one collision queries are indeterminate.
	Collider Collider
}

// RenderableObject is a mesh uploaded to the GPU once, drawn every frame at
// its current transform with a shared texture.
//
// It is not safe for concurrent use: mutate and draw it from the render thread.
type RenderableObject struct {
	ID   uuid.UUID
	Name string

	// Position and Scale are in world units; Rotation is in degrees per axis.
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Rotation mgl32.Vec3

	backend        renderer.Backend
	vertexBuffer   renderer.BufferHandle
	normalBuffer   renderer.BufferHandle
	texCoordBuffer renderer.BufferHandle
	indexBuffer    renderer.BufferHandle
	indexCount     int32

	texture  *metadata.Texture
	collider Collider

	destroyed bool
}

// NewRenderableObject validates the mesh and uploads positions, normals, the
// first texture-coordinate channel and the flattened 16-bit triangle indices
// into four static buffers. Either all four buffers exist afterwards or none do.
func NewRenderableObject(backend renderer.Backend, config RenderableObjectConfig) (*RenderableObject, error) {
	if backend == nil {
		return nil, errors.Wrap(core.ErrInvalidContext, "nil backend")
	}
	if config.Texture == nil {
		return nil, errors.Wrapf(core.ErrMissingTexture, "object %q", config.Name)
	}
	indices, err := config.Mesh.FlattenFaces()
	if err != nil {
		return nil, errors.Wrapf(err, "object %q", config.Name)
	}
	if channels := len(config.Mesh.TextureCoords); channels > 1 {
		core.LogDebug("object %q: mesh has %d texture coordinate channels, using the first", config.Name, channels)
	}

	o := &RenderableObject{
		ID:         uuid.New(),
		Name:       config.Name,
		Position:   config.Position,
		Scale:      config.Scale,
		Rotation:   config.Rotation,
		backend:    backend,
		indexCount: int32(len(indices)),
		texture:    config.Texture,
		collider:   config.Collider,
	}

	uploads := []struct {
		handle *renderer.BufferHandle
		target renderer.BufferTarget
		data   interface{}
	}{
		{&o.vertexBuffer, renderer.ArrayBuffer, config.Mesh.Vertices},
		{&o.normalBuffer, renderer.ArrayBuffer, config.Mesh.Normals},
		{&o.texCoordBuffer, renderer.ArrayBuffer, config.Mesh.TextureCoords[0]},
		{&o.indexBuffer, renderer.ElementArrayBuffer, indices},
	}
	for _, u := range uploads {
		handle, err := backend.CreateBuffer()
		if err == nil && handle == 0 {
			err = errors.New("backend returned the null buffer")
		}
		if err != nil {
			o.releaseBuffers()
			return nil, errors.Wrapf(core.ErrBufferAllocation, "object %q: %v", config.Name, err)
		}
		*u.handle = handle
		backend.BindBuffer(u.target, handle)
		if err := backend.BufferData(u.target, u.data, renderer.StaticDraw); err != nil {
			o.releaseBuffers()
			return nil, errors.Wrapf(core.ErrBufferAllocation, "object %q: upload: %v", config.Name, err)
		}
	}
	backend.BindBuffer(renderer.ArrayBuffer, 0)
	backend.BindBuffer(renderer.ElementArrayBuffer, 0)

	core.LogDebug("object %q (%s): uploaded %d vertices, %d indices", o.Name, o.ID, config.Mesh.VertexCount(), o.indexCount)
	return o, nil
}

// releaseBuffers unbinds both targets and deletes every buffer created so far.
func (o *RenderableObject) releaseBuffers() {
	o.backend.BindBuffer(renderer.ArrayBuffer, 0)
	o.backend.BindBuffer(renderer.ElementArrayBuffer, 0)
	for _, h := range []*renderer.BufferHandle{&o.vertexBuffer, &o.normalBuffer, &o.texCoordBuffer, &o.indexBuffer} {
		if *h != 0 {
			o.backend.DeleteBuffer(*h)
			*h = 0
		}
	}
}

func (o *RenderableObject) MoveX(x float32) { o.Position[0] = x }
func (o *RenderableObject) MoveY(y float32) { o.Position[1] = y }
func (o *RenderableObject) MoveZ(z float32) { o.Position[2] = z }

func (o *RenderableObject) RotateX(deg float32) { o.Rotation[0] = deg }
func (o *RenderableObject) RotateY(deg float32) { o.Rotation[1] = deg }
func (o *RenderableObject) RotateZ(deg float32) { o.Rotation[2] = deg }

func (o *RenderableObject) SetScale(scale mgl32.Vec3) { o.Scale = scale }

// IndexCount is the number of 16-bit indices drawn per frame.
func (o *RenderableObject) IndexCount() int32 {
	return o.indexCount
}

func (o *RenderableObject) Texture() *metadata.Texture {
	return o.texture
}

func (o *RenderableObject) Collider() Collider {
	return o.collider
}

// SetCollider attaches a collision strategy; nil detaches it.
func (o *RenderableObject) SetCollider(c Collider) {
	o.collider = c
}

func (o *RenderableObject) Destroyed() bool {
	return o.destroyed
}

// LocalTransform is Translate · RotateX · RotateY · RotateZ · Scale of the current fields.
func (o *RenderableObject) LocalTransform() mgl32.Mat4 {
	return math.ComposeTRS(o.Position, o.Rotation, o.Scale)
}

// CheckCollision asks this object's collider whether it intersects other.
// ok is false when either side has no collider: the answer is unknown, which
// callers must not read as "no collision".
func (o *RenderableObject) CheckCollision(other *RenderableObject) (hit bool, ok bool) {
	if o.collider == nil || other == nil || other.collider == nil {
		core.LogWarn("checking collision on object %q without a collider", o.Name)
		return false, false
	}
	return o.collider.CheckCollision(o, other.collider, other)
}

// Draw renders the object at its current transform into the bound framebuffer.
// The model-view stack is pushed for the duration of the call and popped on
// every exit path.
func (o *RenderableObject) Draw(ctx *renderer.RenderContext) {
	if o.destroyed {
		core.LogError("object %q (%s): draw after destroy", o.Name, o.ID)
		return
	}

	ctx.Stack.Push()
	defer ctx.Stack.Pop()

	ctx.Stack.MulRight(o.LocalTransform())

	b := ctx.Backend
	program := ctx.Program

	b.BindBuffer(renderer.ArrayBuffer, o.vertexBuffer)
	b.VertexAttribPointer(program.PositionAttrib, positionComponents, renderer.Float, false, positionComponents*float32Size, 0)
	b.EnableVertexAttribArray(program.PositionAttrib)

	b.BindBuffer(renderer.ArrayBuffer, o.normalBuffer)
	b.VertexAttribPointer(program.NormalAttrib, normalComponents, renderer.Float, false, normalComponents*float32Size, 0)
	b.EnableVertexAttribArray(program.NormalAttrib)

	b.BindBuffer(renderer.ArrayBuffer, o.texCoordBuffer)
	b.VertexAttribPointer(program.TexCoordAttrib, texCoordComponents, renderer.Float, false, texCoordComponents*float32Size, 0)
	b.EnableVertexAttribArray(program.TexCoordAttrib)
	b.ActiveTexture(0)
	b.BindTexture(o.texture)
	b.Uniform1i(program.SamplerUniform, 0)

	b.BindBuffer(renderer.ElementArrayBuffer, o.indexBuffer)
	b.UniformMatrix4(program.ModelViewUniform, ctx.Stack.Top())
	b.UniformMatrix4(program.ProjectionUniform, ctx.Projection)

	b.DrawElements(renderer.Triangles, o.indexCount, renderer.UnsignedShort, 0)
}

// Destroy releases the four GPU buffers. The texture is shared and left alone.
// Calling Destroy more than once is a no-op.
func (o *RenderableObject) Destroy() {
	if o.destroyed {
		core.LogDebug("object %q (%s): already destroyed", o.Name, o.ID)
		return
	}
	o.releaseBuffers()
	o.destroyed = true
	core.LogDebug("object %q (%s): destroyed", o.Name, o.ID)
}
