package scene

import (
	"path/filepath"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/assets/loaders"
	"github.com/spaghettifunk/propengine/engine/config"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/math"
	"github.com/spaghettifunk/propengine/engine/renderer"
	"github.com/spaghettifunk/propengine/engine/renderer/components"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
	"github.com/spaghettifunk/propengine/engine/systems"
)

// GPU is the backend plus the texture lifecycle the scene owns.
type GPU interface {
	renderer.Backend
	TextureCreate(name string, width, height uint32, pixels []uint8) (*metadata.Texture, error)
	TextureUpdate(texture *metadata.Texture, width, height uint32, pixels []uint8) error
	TextureDestroy(texture *metadata.Texture)
}

// ImageSource decodes image files into RGBA pixels.
type ImageSource interface {
	LoadImage(path string, flipY bool) (*metadata.ImageResourceData, error)
}

// CollisionReport summarises one pairwise collision pass.
type CollisionReport struct {
	Pairs         int
	Hits          int
	Indeterminate int
	// Names of the colliding pairs, in object order.
	Colliding [][2]string
}

// Scene owns a set of renderable objects built from configuration and the
// textures they share. Every method must be called on the render thread.
type Scene struct {
	gpu     GPU
	images  ImageSource
	baseDir string

	objects  []*components.RenderableObject
	byName   map[string]*components.RenderableObject
	spins    map[string]mgl32.Vec3
	textures map[string]*metadata.Texture
}

// New creates an empty scene. Relative texture paths resolve against baseDir.
func New(gpu GPU, images ImageSource, baseDir string) *Scene {
	return &Scene{
		gpu:      gpu,
		images:   images,
		baseDir:  baseDir,
		byName:   make(map[string]*components.RenderableObject),
		spins:    make(map[string]mgl32.Vec3),
		textures: make(map[string]*metadata.Texture),
	}
}

// Load builds every object described by cfg. Either all objects are built
// or, on error, everything created by this call is released again.
func (s *Scene) Load(cfg *config.Config) error {
	if len(s.objects) > 0 {
		return errors.New("scene already loaded, destroy it first")
	}
	for i := range cfg.Scene.Objects {
		oc := &cfg.Scene.Objects[i]
		if err := s.add(oc); err != nil {
			s.Destroy()
			return errors.Wrapf(err, "scene object %q", oc.Name)
		}
	}
	core.LogInfo("scene loaded with %d objects and %d textures", len(s.objects), len(s.textures))
	return nil
}

func (s *Scene) add(oc *config.ObjectConfig) error {
	var mesh *metadata.MeshAsset
	switch oc.Mesh {
	case config.MeshPlane:
		mesh = systems.GeneratePlane(oc.Size[0], oc.Size[2], oc.Tiling, oc.Tiling, oc.Name)
	default:
		mesh = systems.GenerateCube(oc.Size[0], oc.Size[1], oc.Size[2], oc.Tiling, oc.Tiling, oc.Name)
	}

	texture, err := s.acquireTexture(oc.Texture)
	if err != nil {
		return err
	}

	obj, err := components.NewRenderableObject(s.gpu, components.RenderableObjectConfig{
		Name:     oc.Name,
		Mesh:     mesh,
		Texture:  texture,
		Position: mgl32.Vec3(oc.Position),
		Rotation: mgl32.Vec3(oc.Rotation),
		Scale:    mgl32.Vec3(oc.Scale),
	})
	if err != nil {
		return err
	}
	s.objects = append(s.objects, obj)
	s.byName[oc.Name] = obj
	s.spins[oc.Name] = mgl32.Vec3(oc.Spin)
	return nil
}

// acquireTexture returns the shared texture for ref, creating it on first
// use. A file that cannot be loaded falls back to the checkerboard.
func (s *Scene) acquireTexture(ref string) (*metadata.Texture, error) {
	key := s.textureKey(ref)
	if t, ok := s.textures[key]; ok {
		return t, nil
	}

	var data *metadata.ImageResourceData
	if key != config.TextureChecker {
		img, err := s.images.LoadImage(key, true)
		if err != nil {
			core.LogWarn("texture %s unavailable, using checkerboard: %v", key, err)
			return s.acquireTexture(config.TextureChecker)
		}
		data = img
	} else {
		data = loaders.Checkerboard(64)
	}

	t, err := s.gpu.TextureCreate(key, data.Width, data.Height, data.Pixels)
	if err != nil {
		return nil, err
	}
	s.textures[key] = t
	return t, nil
}

func (s *Scene) textureKey(ref string) string {
	if ref == "" || ref == config.TextureChecker {
		return config.TextureChecker
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(s.baseDir, ref)
}

// ApplyTransforms pushes the positions, rotations, scales and spins of cfg
// onto the existing objects through their setters. Objects that are not in
// the scene are reported and skipped; adding them needs a full reload.
func (s *Scene) ApplyTransforms(cfg *config.Config) (missing []string) {
	for i := range cfg.Scene.Objects {
		oc := &cfg.Scene.Objects[i]
		obj, ok := s.byName[oc.Name]
		if !ok {
			missing = append(missing, oc.Name)
			continue
		}
		obj.MoveX(oc.Position[0])
		obj.MoveY(oc.Position[1])
		obj.MoveZ(oc.Position[2])
		obj.RotateX(oc.Rotation[0])
		obj.RotateY(oc.Rotation[1])
		obj.RotateZ(oc.Rotation[2])
		obj.SetScale(mgl32.Vec3(oc.Scale))
		s.spins[oc.Name] = mgl32.Vec3(oc.Spin)
	}
	if len(missing) > 0 {
		core.LogWarn("objects %v are not in the scene, reload to add them", missing)
	}
	return missing
}

// ReloadTexture re-reads an image that objects already use. It reports
// whether the path belonged to the scene.
func (s *Scene) ReloadTexture(path string) (bool, error) {
	t, ok := s.textures[filepath.Clean(path)]
	if !ok {
		return false, nil
	}
	img, err := s.images.LoadImage(t.Name, true)
	if err != nil {
		return true, errors.Wrapf(err, "reload texture %s", t.Name)
	}
	if err := s.gpu.TextureUpdate(t, img.Width, img.Height, img.Pixels); err != nil {
		return true, err
	}
	core.LogInfo("texture %s reloaded (generation %d)", t.Name, t.Generation)
	return true, nil
}

// Update advances every spinning object by dt seconds.
func (s *Scene) Update(dt float64) {
	for _, obj := range s.objects {
		spin := s.spins[obj.Name]
		if spin == (mgl32.Vec3{}) {
			continue
		}
		d := spin.Mul(float32(dt))
		obj.RotateX(math.WrapDegrees(obj.Rotation[0] + d[0]))
		obj.RotateY(math.WrapDegrees(obj.Rotation[1] + d[1]))
		obj.RotateZ(math.WrapDegrees(obj.Rotation[2] + d[2]))
	}
}

func (s *Scene) Draw(ctx *renderer.RenderContext) {
	for _, obj := range s.objects {
		obj.Draw(ctx)
	}
}

// CheckCollisions queries every unordered pair once.
func (s *Scene) CheckCollisions() CollisionReport {
	var report CollisionReport
	for i := 0; i < len(s.objects); i++ {
		for j := i + 1; j < len(s.objects); j++ {
			a, b := s.objects[i], s.objects[j]
			report.Pairs++
			hit, ok := a.CheckCollision(b)
			switch {
			case !ok:
				report.Indeterminate++
			case hit:
				report.Hits++
				report.Colliding = append(report.Colliding, [2]string{a.Name, b.Name})
			}
		}
	}
	return report
}

func (s *Scene) Object(name string) (*components.RenderableObject, bool) {
	obj, ok := s.byName[name]
	return obj, ok
}

func (s *Scene) Objects() []*components.RenderableObject {
	return s.objects
}

// SetCollider attaches c to every object.
func (s *Scene) SetCollider(c components.Collider) {
	for _, obj := range s.objects {
		obj.SetCollider(c)
	}
}

// Destroy releases every object and texture. The scene can be loaded again afterwards.
func (s *Scene) Destroy() {
	for _, obj := range s.objects {
		obj.Destroy()
	}
	keys := make([]string, 0, len(s.textures))
	for k := range s.textures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.gpu.TextureDestroy(s.textures[k])
	}

	s.objects = nil
	s.byName = make(map[string]*components.RenderableObject)
	s.spins = make(map[string]mgl32.Vec3)
	s.textures = make(map[string]*metadata.Texture)
}

type objectState struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Spin     mgl32.Vec3
	Indices  int32
	Texture  string
}

// Dump logs the state of every object at debug level.
func (s *Scene) Dump() {
	states := make([]objectState, 0, len(s.objects))
	for _, obj := range s.objects {
		st := objectState{
			Name:     obj.Name,
			Position: obj.Position,
			Rotation: obj.Rotation,
			Scale:    obj.Scale,
			Spin:     s.spins[obj.Name],
			Indices:  obj.IndexCount(),
		}
		if t := obj.Texture(); t != nil {
			st.Texture = t.Name
		}
		states = append(states, st)
	}
	core.Dump("scene", states)
}
