package components

import (
	"bytes"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/math"
	"github.com/spaghettifunk/propengine/engine/renderer"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

var testProgram = &metadata.ProgramLayout{
	ProgramID:         7,
	PositionAttrib:    0,
	NormalAttrib:      1,
	TexCoordAttrib:    2,
	SamplerUniform:    10,
	ModelViewUniform:  11,
	ProjectionUniform: 12,
}

var testTexture = &metadata.Texture{ID: 42, Name: "crate.png", Width: 64, Height: 64}

// quadMesh is a unit quad: 4 vertices, 2 triangles.
func quadMesh() *metadata.MeshAsset {
	return &metadata.MeshAsset{
		Name:          "quad",
		Vertices:      []float32{-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0},
		Normals:       []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		TextureCoords: [][]float32{{0, 0, 1, 0, 1, 1, 0, 1}},
		Faces:         [][]uint32{{0, 1, 2}, {0, 2, 3}},
	}
}

func newTestObject(t *testing.T, b *recordingBackend, collider Collider) *RenderableObject {
	t.Helper()
	o, err := NewRenderableObject(b, RenderableObjectConfig{
		Name:     "quad",
		Mesh:     quadMesh(),
		Texture:  testTexture,
		Position: mgl32.Vec3{1, 2, 3},
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.Vec3{0, 90, 0},
		Collider: collider,
	})
	if err != nil {
		t.Fatalf("NewRenderableObject: %v", err)
	}
	return o
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })
	return &buf
}

func warnings(buf *bytes.Buffer) int {
	return strings.Count(buf.String(), "WARN")
}

func TestNewRenderableObjectUploadsBuffers(t *testing.T) {
	b := newRecordingBackend()
	mesh := quadMesh()
	o, err := NewRenderableObject(b, RenderableObjectConfig{Name: "quad", Mesh: mesh, Texture: testTexture, Scale: mgl32.Vec3{1, 1, 1}})
	if err != nil {
		t.Fatalf("NewRenderableObject: %v", err)
	}

	n, m := mesh.VertexCount(), mesh.FaceCount()
	if got := o.IndexCount(); got != int32(3*m) {
		t.Fatalf("IndexCount=%d; expected %d", got, 3*m)
	}

	wantFloats := map[renderer.BufferHandle]int{
		o.vertexBuffer:   3 * n,
		o.normalBuffer:   3 * n,
		o.texCoordBuffer: 2 * n,
	}
	for h, want := range wantFloats {
		data, ok := b.uploads[h].([]float32)
		if !ok {
			t.Fatalf("buffer %d holds %T; expected []float32", h, b.uploads[h])
		}
		if len(data) != want {
			t.Errorf("buffer %d holds %d floats; expected %d", h, len(data), want)
		}
	}
	indices, ok := b.uploads[o.indexBuffer].([]uint16)
	if !ok {
		t.Fatalf("index buffer holds %T; expected []uint16", b.uploads[o.indexBuffer])
	}
	if !reflect.DeepEqual(indices, []uint16{0, 1, 2, 0, 2, 3}) {
		t.Errorf("indices=%v", indices)
	}

	if len(b.live) != 4 {
		t.Errorf("%d live buffers; expected 4", len(b.live))
	}
	for _, c := range b.calls {
		if c.name == "DrawElements" {
			t.Fatalf("construction issued a draw call")
		}
		if c.name == "BufferData" && c.args[1] != renderer.StaticDraw {
			t.Errorf("upload usage %v; expected StaticDraw", c.args[1])
		}
	}
	if b.bound[renderer.ArrayBuffer] != 0 || b.bound[renderer.ElementArrayBuffer] != 0 {
		t.Errorf("buffers left bound after construction: %v", b.bound)
	}
}

func TestNewRenderableObjectRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		mesh    func() *metadata.MeshAsset
		texture *metadata.Texture
		wantErr error
	}{
		{"nil texture", quadMesh, nil, core.ErrMissingTexture},
		{"nil mesh", func() *metadata.MeshAsset { return nil }, testTexture, core.ErrMalformedMesh},
		{"no texcoord channel", func() *metadata.MeshAsset {
			m := quadMesh()
			m.TextureCoords = nil
			return m
		}, testTexture, core.ErrMalformedMesh},
		{"empty faces", func() *metadata.MeshAsset {
			m := quadMesh()
			m.Faces = [][]uint32{}
			return m
		}, testTexture, core.ErrMalformedMesh},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := newRecordingBackend()
			o, err := NewRenderableObject(b, RenderableObjectConfig{Name: test.name, Mesh: test.mesh(), Texture: test.texture})
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("err=%v; expected %v", err, test.wantErr)
			}
			if o != nil {
				t.Fatalf("got an object on failure")
			}
			if b.creates != 0 {
				t.Fatalf("%d buffers created for invalid input", b.creates)
			}
		})
	}
}

func TestNewRenderableObjectAllocationFailureIsAllOrNothing(t *testing.T) {
	for failAt := 1; failAt <= 4; failAt++ {
		b := newRecordingBackend()
		b.failCreateAt = failAt

		o, err := NewRenderableObject(b, RenderableObjectConfig{Name: "quad", Mesh: quadMesh(), Texture: testTexture})
		if !errors.Is(err, core.ErrBufferAllocation) {
			t.Fatalf("failAt=%d: err=%v; expected ErrBufferAllocation", failAt, err)
		}
		if o != nil {
			t.Fatalf("failAt=%d: got a partial object", failAt)
		}
		if len(b.live) != 0 {
			t.Errorf("failAt=%d: %d buffers leaked", failAt, len(b.live))
		}
		if len(b.deleted) != failAt-1 {
			t.Errorf("failAt=%d: %d buffers deleted; expected %d", failAt, len(b.deleted), failAt-1)
		}
		for h, n := range b.deleted {
			if n != 1 {
				t.Errorf("failAt=%d: buffer %d deleted %d times", failAt, h, n)
			}
		}
		if b.bound[renderer.ArrayBuffer] != 0 || b.bound[renderer.ElementArrayBuffer] != 0 {
			t.Errorf("failAt=%d: buffers left bound: %v", failAt, b.bound)
		}
	}
}

func TestMutatorsSetSingleComponents(t *testing.T) {
	b := newRecordingBackend()

	a := newTestObject(t, b, nil)
	a.MoveX(5)
	a.MoveY(2)
	a.MoveZ(-1)

	c := newTestObject(t, b, nil)
	c.MoveZ(-1)
	c.MoveX(5)
	c.MoveY(2)

	want := mgl32.Vec3{5, 2, -1}
	if a.Position != want || c.Position != want {
		t.Fatalf("positions %v / %v; expected %v", a.Position, c.Position, want)
	}

	a.RotateX(720)
	a.RotateY(-45)
	a.RotateZ(400)
	if a.Rotation != (mgl32.Vec3{720, -45, 400}) {
		t.Fatalf("rotation=%v; angles must be stored as given", a.Rotation)
	}
	if a.Position != want {
		t.Fatalf("rotation changed position: %v", a.Position)
	}
}

type countingCollider struct {
	calls     int
	self      *RenderableObject
	peerState Collider
	peer      *RenderableObject
	hit       bool
}

func (c *countingCollider) CheckCollision(self *RenderableObject, peerState Collider, peer *RenderableObject) (bool, bool) {
	c.calls++
	c.self, c.peerState, c.peer = self, peerState, peer
	return c.hit, true
}

func TestCheckCollisionWithoutColliderIsIndeterminate(t *testing.T) {
	b := newRecordingBackend()
	withCollider := func() *RenderableObject { return newTestObject(t, b, &countingCollider{hit: true}) }
	without := func() *RenderableObject { return newTestObject(t, b, nil) }

	tests := []struct {
		name  string
		self  *RenderableObject
		other *RenderableObject
	}{
		{"self missing", without(), withCollider()},
		{"peer missing", withCollider(), without()},
		{"both missing", without(), without()},
		{"nil peer", withCollider(), nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := captureLog(t)
			hit, ok := test.self.CheckCollision(test.other)
			if ok {
				t.Fatalf("ok=true; expected an indeterminate result")
			}
			if hit {
				t.Fatalf("hit=true on an indeterminate result")
			}
			if n := warnings(buf); n != 1 {
				t.Fatalf("%d warnings; expected exactly 1:\n%s", n, buf.String())
			}
			if sc, isCounting := test.self.Collider().(*countingCollider); isCounting && sc.calls != 0 {
				t.Fatalf("strategy invoked %d times", sc.calls)
			}
		})
	}
}

func TestCheckCollisionDelegatesOnce(t *testing.T) {
	for _, hit := range []bool{true, false} {
		b := newRecordingBackend()
		selfCollider := &countingCollider{hit: hit}
		peerCollider := &countingCollider{}
		a := newTestObject(t, b, selfCollider)
		p := newTestObject(t, b, peerCollider)

		buf := captureLog(t)
		gotHit, ok := a.CheckCollision(p)
		if !ok || gotHit != hit {
			t.Fatalf("CheckCollision=(%v,%v); expected (%v,true)", gotHit, ok, hit)
		}
		if selfCollider.calls != 1 {
			t.Fatalf("strategy called %d times; expected 1", selfCollider.calls)
		}
		if peerCollider.calls != 0 {
			t.Fatalf("peer strategy called %d times; expected 0", peerCollider.calls)
		}
		if selfCollider.self != a || selfCollider.peer != p || selfCollider.peerState != Collider(peerCollider) {
			t.Fatalf("strategy received (%p, %v, %p); expected (self, peer collider, peer)", selfCollider.self, selfCollider.peerState, selfCollider.peer)
		}
		if n := warnings(buf); n != 0 {
			t.Fatalf("%d warnings on a determined query", n)
		}
	}
}

func TestColliderFunc(t *testing.T) {
	b := newRecordingBackend()
	var got *RenderableObject
	f := ColliderFunc(func(self *RenderableObject, _ Collider, peer *RenderableObject) (bool, bool) {
		got = peer
		return false, true
	})
	a := newTestObject(t, b, f)
	p := newTestObject(t, b, f)
	if hit, ok := a.CheckCollision(p); hit || !ok {
		t.Fatalf("CheckCollision=(%v,%v); expected (false,true)", hit, ok)
	}
	if got != p {
		t.Fatalf("ColliderFunc did not receive the peer")
	}
}

func newTestContext(t *testing.T, b renderer.Backend) (*renderer.RenderContext, mgl32.Mat4) {
	t.Helper()
	ctx, err := renderer.NewRenderContext(b, testProgram)
	if err != nil {
		t.Fatalf("NewRenderContext: %v", err)
	}
	view := mgl32.Translate3D(0, 0, -10)
	ctx.BeginFrame(view, mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100))
	return ctx, view
}

func TestDrawIssuesOrderedCalls(t *testing.T) {
	b := newRecordingBackend()
	o := newTestObject(t, b, nil)
	ctx, view := newTestContext(t, b)
	b.reset()

	o.Draw(ctx)

	wantNames := []string{
		"BindBuffer", "VertexAttribPointer", "EnableVertexAttribArray",
		"BindBuffer", "VertexAttribPointer", "EnableVertexAttribArray",
		"BindBuffer", "VertexAttribPointer", "EnableVertexAttribArray",
		"ActiveTexture", "BindTexture", "Uniform1i",
		"BindBuffer", "UniformMatrix4", "UniformMatrix4",
		"DrawElements",
	}
	if got := b.names(); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("calls=%v\nexpected %v", got, wantNames)
	}

	c := b.calls
	checks := []struct {
		idx  int
		args []interface{}
	}{
		{0, []interface{}{renderer.ArrayBuffer, o.vertexBuffer}},
		{1, []interface{}{uint32(0), int32(3), renderer.Float, false, int32(12), 0}},
		{3, []interface{}{renderer.ArrayBuffer, o.normalBuffer}},
		{4, []interface{}{uint32(1), int32(3), renderer.Float, false, int32(12), 0}},
		{6, []interface{}{renderer.ArrayBuffer, o.texCoordBuffer}},
		{7, []interface{}{uint32(2), int32(2), renderer.Float, false, int32(8), 0}},
		{9, []interface{}{uint32(0)}},
		{10, []interface{}{uint32(42)}},
		{11, []interface{}{int32(10), int32(0)}},
		{12, []interface{}{renderer.ElementArrayBuffer, o.indexBuffer}},
		{15, []interface{}{renderer.Triangles, int32(6), renderer.UnsignedShort, 0}},
	}
	for _, check := range checks {
		if !reflect.DeepEqual(c[check.idx].args, check.args) {
			t.Errorf("call %d %s; expected args %v", check.idx, c[check.idx], check.args)
		}
	}

	wantMV := view.Mul4(math.ComposeTRS(o.Position, o.Rotation, o.Scale))
	if loc := c[13].args[0]; loc != int32(11) {
		t.Errorf("model-view uniform location %v; expected 11", loc)
	}
	if mv := c[13].args[1].(mgl32.Mat4); !mv.ApproxEqualThreshold(wantMV, 1e-5) {
		t.Errorf("model-view=%v; expected %v", mv, wantMV)
	}
	if p := c[14].args[1].(mgl32.Mat4); c[14].args[0] != int32(12) || !p.ApproxEqual(ctx.Projection) {
		t.Errorf("projection call %v", c[14])
	}

	if ctx.Stack.Depth() != 0 || !ctx.Stack.Top().ApproxEqual(view) {
		t.Fatalf("stack not restored: depth=%d top=%v", ctx.Stack.Depth(), ctx.Stack.Top())
	}
}

func TestDrawIsRepeatable(t *testing.T) {
	b := newRecordingBackend()
	o := newTestObject(t, b, nil)
	ctx, _ := newTestContext(t, b)

	b.reset()
	o.Draw(ctx)
	first := append([]call(nil), b.calls...)
	b.reset()
	o.Draw(ctx)
	if !reflect.DeepEqual(first, b.calls) {
		t.Fatalf("second draw differs from the first")
	}
}

func TestDrawPopsOnPanic(t *testing.T) {
	b := newRecordingBackend()
	o := newTestObject(t, b, nil)
	ctx, view := newTestContext(t, b)
	b.panicOnDraw = true

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatalf("expected the backend panic to propagate")
			}
		}()
		o.Draw(ctx)
	}()

	if ctx.Stack.Depth() != 0 {
		t.Fatalf("stack depth %d after a failed draw; expected 0", ctx.Stack.Depth())
	}
	if !ctx.Stack.Top().ApproxEqual(view) {
		t.Fatalf("stack top not restored after a failed draw")
	}
}

func TestDestroyReleasesBuffersOnce(t *testing.T) {
	b := newRecordingBackend()
	o := newTestObject(t, b, nil)
	handles := []renderer.BufferHandle{o.vertexBuffer, o.normalBuffer, o.texCoordBuffer, o.indexBuffer}

	o.Destroy()
	o.Destroy()

	if !o.Destroyed() {
		t.Fatalf("Destroyed()=false after Destroy")
	}
	if len(b.deleted) != 4 {
		t.Fatalf("%d buffers deleted; expected 4", len(b.deleted))
	}
	for _, h := range handles {
		if b.deleted[h] != 1 {
			t.Errorf("buffer %d deleted %d times; expected 1", h, b.deleted[h])
		}
	}
	if len(b.live) != 0 {
		t.Errorf("%d buffers still live", len(b.live))
	}
	if o.Texture() != testTexture {
		t.Errorf("Destroy dropped the shared texture")
	}
}

func TestDrawAfterDestroyIsRefused(t *testing.T) {
	b := newRecordingBackend()
	o := newTestObject(t, b, nil)
	ctx, _ := newTestContext(t, b)
	o.Destroy()
	b.reset()

	buf := captureLog(t)
	o.Draw(ctx)

	if len(b.calls) != 0 {
		t.Fatalf("draw after destroy issued %v", b.names())
	}
	if ctx.Stack.Depth() != 0 {
		t.Fatalf("stack depth %d", ctx.Stack.Depth())
	}
	if !strings.Contains(buf.String(), "draw after destroy") {
		t.Fatalf("missing error log:\n%s", buf.String())
	}
}
