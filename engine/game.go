package engine

import (
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/platform"
	"github.com/spaghettifunk/propengine/engine/renderer"
	"github.com/spaghettifunk/propengine/engine/renderer/components"
	"github.com/spaghettifunk/propengine/engine/scene"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Filled in by the engine before FnInitialize is called.
	Scene    *scene.Scene
	Camera   *components.Camera
	Platform *platform.Platform
	Events   *core.EventBus

	State        interface{}
	FnBoot       Boot
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Boot func() error
type Initialize func() error
type Update func(deltaTime float64) error

// Render runs after the scene is drawn, with the camera view on the stack.
type Render func(ctx *renderer.RenderContext, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
