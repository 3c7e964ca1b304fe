package testbed

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/platform"
	"github.com/spaghettifunk/propengine/engine/renderer/components"
)

const (
	// Object the arrow keys drive.
	controlledObject = "crate"

	moveSpeed   = 3.0  // units per second
	turnSpeed   = 90.0 // degrees per second
	cameraSpeed = 5.0
	lookSpeed   = 1.2 // radians per second
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	controlled *components.RenderableObject
	// starting transform of the controlled object, restored with R
	home struct {
		position mgl32.Vec3
		rotation mgl32.Vec3
	}
}

func NewTestGame(app *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: app,
			State:             &gameState{},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Boot() error {
	core.LogInfo("booting testbed with %d scene objects", len(g.ApplicationConfig.Scene.Objects))
	return nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Scene == nil {
		return errors.New("the engine did not provide a scene")
	}
	g.Events.Register(core.EventCodeKeyPressed, g, g.onKey)
	g.Events.Register(core.EventCodeSceneReloaded, g, g.onSceneReloaded)
	g.bindControlled()
	return nil
}

func (g *TestGame) bindControlled() {
	state := g.State.(*gameState)
	obj, ok := g.Scene.Object(controlledObject)
	if !ok {
		core.LogWarn("no %q object in the scene, arrow keys do nothing", controlledObject)
		state.controlled = nil
		return
	}
	state.controlled = obj
	state.home.position = obj.Position
	state.home.rotation = obj.Rotation
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	dt := float32(deltaTime)

	if obj := state.controlled; obj != nil {
		if g.Platform.IsKeyDown(platform.KeyLeft) {
			obj.MoveX(obj.Position.X() - moveSpeed*dt)
		}
		if g.Platform.IsKeyDown(platform.KeyRight) {
			obj.MoveX(obj.Position.X() + moveSpeed*dt)
		}
		if g.Platform.IsKeyDown(platform.KeyUp) {
			obj.MoveZ(obj.Position.Z() - moveSpeed*dt)
		}
		if g.Platform.IsKeyDown(platform.KeyDown) {
			obj.MoveZ(obj.Position.Z() + moveSpeed*dt)
		}
		if g.Platform.IsKeyDown(platform.KeyPageUp) {
			obj.MoveY(obj.Position.Y() + moveSpeed*dt)
		}
		if g.Platform.IsKeyDown(platform.KeyPageDn) {
			obj.MoveY(obj.Position.Y() - moveSpeed*dt)
		}
		if g.Platform.IsKeyDown(platform.KeyQ) {
			obj.RotateZ(obj.Rotation.Z() + turnSpeed*dt)
		}
		if g.Platform.IsKeyDown(platform.KeyE) {
			obj.RotateX(obj.Rotation.X() + turnSpeed*dt)
		}
	}

	cam := g.Camera
	if g.Platform.IsKeyDown(platform.KeyW) {
		cam.MoveForward(cameraSpeed * dt)
	}
	if g.Platform.IsKeyDown(platform.KeyS) {
		cam.MoveBackward(cameraSpeed * dt)
	}
	if g.Platform.IsKeyDown(platform.KeyA) {
		cam.Yaw(lookSpeed * dt)
	}
	if g.Platform.IsKeyDown(platform.KeyD) {
		cam.Yaw(-lookSpeed * dt)
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	g.Events.Unregister(core.EventCodeKeyPressed, g)
	g.Events.Unregister(core.EventCodeSceneReloaded, g)
	return nil
}

func (g *TestGame) onKey(ctx core.EventContext) bool {
	state := g.State.(*gameState)
	switch ctx.Key {
	case platform.KeyR:
		if obj := state.controlled; obj != nil {
			obj.MoveX(state.home.position.X())
			obj.MoveY(state.home.position.Y())
			obj.MoveZ(state.home.position.Z())
			obj.RotateX(state.home.rotation.X())
			obj.RotateY(state.home.rotation.Y())
			obj.RotateZ(state.home.rotation.Z())
			return true
		}
	case platform.KeySpace:
		if obj := state.controlled; obj != nil {
			obj.SetScale(obj.Scale.Mul(1.25))
			return true
		}
	}
	return false
}

// onSceneReloaded rebinds the controlled object, which may have been rebuilt.
func (g *TestGame) onSceneReloaded(ctx core.EventContext) bool {
	core.LogInfo("scene reloaded from %s", ctx.Path)
	g.bindControlled()
	return false
}
