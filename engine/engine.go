package engine

import (
	"os"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/assets"
	"github.com/spaghettifunk/propengine/engine/config"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/platform"
	"github.com/spaghettifunk/propengine/engine/renderer"
	"github.com/spaghettifunk/propengine/engine/renderer/components"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
	"github.com/spaghettifunk/propengine/engine/renderer/opengl"
	"github.com/spaghettifunk/propengine/engine/scene"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool
	quit         atomic.Bool

	platform      *platform.Platform
	assetManager  *assets.AssetManager
	events        *core.EventBus
	backend       *opengl.Backend
	program       *opengl.Program
	renderContext *renderer.RenderContext
	scene         *scene.Scene
	camera        *components.Camera
	logFile       *os.File

	width    uint32
	height   uint32
	clock    *core.Clock
	metrics  *core.FrameMetrics
	lastTime float64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.New("game has no application config")
	}
	events := core.NewEventBus()

	am, err := assets.NewAssetManager(64)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		events:       events,
		platform:     platform.New(events),
		assetManager: am,
		camera:       components.NewCamera(),
		isRunning:    true,
		isSuspended:  false,
		width:        g.ApplicationConfig.Application.Width,
		height:       g.ApplicationConfig.Application.Height,
		lastTime:     0,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageBooting
	app := e.gameInstance.ApplicationConfig

	f, err := app.configureLogging()
	if err != nil {
		return err
	}
	e.logFile = f

	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			return errors.Wrap(err, "game boot")
		}
	}
	e.currentStage = EngineStageBootComplete
	e.currentStage = EngineStageInitializing

	e.events.Register(core.EventCodeApplicationQuit, e, e.onEvent)
	e.events.Register(core.EventCodeKeyPressed, e, e.onKey)
	e.events.Register(core.EventCodeResized, e, e.onResized)

	if err := e.platform.Startup(app.Application.Name,
		app.Application.PosX,
		app.Application.PosY,
		app.Application.Width,
		app.Application.Height,
		app.Application.VSync); err != nil {
		return err
	}
	e.width, e.height = e.platform.FramebufferSize()

	backend, err := opengl.New()
	if err != nil {
		return err
	}
	e.backend = backend
	e.backend.Viewport(e.width, e.height)

	program, layout, err := opengl.LoadObjectProgram()
	if err != nil {
		return err
	}
	e.program = program
	e.program.Use()

	ctx, err := renderer.NewRenderContext(e.backend, layout)
	if err != nil {
		return err
	}
	e.renderContext = ctx

	e.applyCamera(&app.Camera)

	e.scene = scene.New(e.backend, e.assetManager, app.BaseDir())
	if err := e.scene.Load(app.Config); err != nil {
		return err
	}
	if err := e.backend.Err(); err != nil {
		core.LogWarn("GPU reported errors while loading the scene: %v", err)
	}

	if app.Path != "" {
		if err := e.assetManager.Watch(app.Path, app.BaseDir()); err != nil {
			core.LogWarn("hot reload disabled: %v", err)
		}
	}

	e.gameInstance.Scene = e.scene
	e.gameInstance.Camera = e.camera
	e.gameInstance.Platform = e.platform
	e.gameInstance.Events = e.events

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) applyCamera(c *config.Camera) {
	e.camera.Reset()
	e.camera.FOV = mgl32.DegToRad(c.FOV)
	e.camera.Near = c.Near
	e.camera.Far = c.Far
	e.camera.SetPosition(mgl32.Vec3(c.Position))
	e.camera.SetEulerRotation(mgl32.Vec3{mgl32.DegToRad(c.Pitch), mgl32.DegToRad(c.Yaw), 0})
}

// RequestQuit asks the loop to stop after the current frame. It is safe to
// call from any goroutine.
func (e *Engine) RequestQuit() {
	e.quit.Store(true)
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()

	e.lastTime = e.clock.Elapsed()

	var runningTime float64 = 0.0
	var targetFrameSeconds float64 = 1.0 / 60.0
	limitFrames := !e.gameInstance.ApplicationConfig.Application.VSync

	for e.isRunning {
		if !e.platform.PumpMessages() || e.quit.Load() {
			e.isRunning = false
			break
		}
		if e.isSuspended {
			e.platform.Sleep(100)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		var currentTime float64 = e.clock.Elapsed()
		var delta float64 = (currentTime - e.lastTime)
		var frameStartTime float64 = platform.GetAbsoluteTime()

		e.applyReloads(e.assetManager.Drain())

		e.scene.Update(delta)
		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %v", err)
				e.isRunning = false
				break
			}
		}

		clearColor := e.gameInstance.ApplicationConfig.Scene.ClearColor
		e.backend.Clear(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
		e.renderContext.BeginFrame(e.camera.GetView(), e.camera.GetProjection(e.width, e.height))
		e.scene.Draw(e.renderContext)

		// Call the game's render routine.
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(e.renderContext, delta); err != nil {
				core.LogError("game render failed, shutting down: %v", err)
				e.isRunning = false
				break
			}
		}
		if err := e.backend.Err(); err != nil {
			core.LogError("frame: %v", err)
		}
		e.platform.SwapBuffers()

		// Figure out how long the frame took and, if below
		var frameEndTime float64 = platform.GetAbsoluteTime()
		var frameElapsedTime float64 = frameEndTime - frameStartTime
		runningTime += frameElapsedTime
		e.metrics.Update(frameElapsedTime)

		if remainingSeconds := targetFrameSeconds - frameElapsedTime; remainingSeconds > 0 && limitFrames {
			// If there is time left, give it back to the OS.
			e.platform.Sleep(remainingSeconds*1000 - 1)
		}

		// Update last time
		e.lastTime = currentTime
	}

	core.LogInfo("ran for %.1fs of frame time, last %.0f fps", runningTime, e.metrics.FPS())
	return e.Shutdown()
}

// applyReloads handles the file changes collected since the last frame.
func (e *Engine) applyReloads(events []assets.ReloadEvent) {
	app := e.gameInstance.ApplicationConfig
	for _, ev := range events {
		switch {
		case ev.Removed:
			core.LogWarn("%s was removed, keeping the loaded copy", ev.Path)

		case ev.Type == metadata.ResourceTypeScene && ev.Path == app.Path:
			cfg, err := config.Load(app.Path)
			if err != nil {
				core.LogError("config reload failed, keeping previous scene: %v", err)
				continue
			}
			if missing := e.scene.ApplyTransforms(cfg); len(missing) > 0 || len(cfg.Scene.Objects) != len(e.scene.Objects()) {
				e.rebuildScene(cfg)
			}
			app.Config = cfg
			e.applyCamera(&cfg.Camera)
			e.events.Fire(core.EventContext{Code: core.EventCodeSceneReloaded, Sender: e, Path: ev.Path})

		case ev.Type == metadata.ResourceTypeImage:
			if _, err := e.scene.ReloadTexture(ev.Path); err != nil {
				core.LogError("%v", err)
			}
		}
	}
}

func (e *Engine) rebuildScene(cfg *config.Config) {
	core.LogInfo("scene layout changed, rebuilding")
	e.scene.Destroy()
	if err := e.scene.Load(cfg); err != nil {
		core.LogError("scene rebuild failed: %v", err)
	}
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown: %v", err)
		}
	}

	e.assetManager.Shutdown()
	if e.scene != nil {
		e.scene.Destroy()
	}
	if e.program != nil {
		e.program.Delete()
	}
	if e.backend != nil {
		e.backend.Shutdown()
	}
	e.events.Shutdown()
	if e.platform.Window != nil {
		e.platform.Shutdown()
	}
	if e.logFile != nil {
		core.SetLogOutput(os.Stderr)
		return e.logFile.Close()
	}
	return nil
}

func (e *Engine) onEvent(ctx core.EventContext) bool {
	switch ctx.Code {
	case core.EventCodeApplicationQuit:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(ctx core.EventContext) bool {
	switch ctx.Key {
	case platform.KeyEscape:
		e.events.Fire(core.EventContext{Code: core.EventCodeApplicationQuit, Sender: e})
		return true
	case platform.KeyF1:
		e.scene.Dump()
		return false
	case platform.KeyF2:
		r := e.scene.CheckCollisions()
		core.LogInfo("collisions: %d pairs, %d hits, %d indeterminate %v", r.Pairs, r.Hits, r.Indeterminate, r.Colliding)
		return false
	case platform.KeyF3:
		core.LogInfo("%.0f fps, %.2f ms/frame", e.metrics.FPS(), e.metrics.FrameTime())
		return false
	}
	return false
}

func (e *Engine) onResized(ctx core.EventContext) bool {
	if ctx.Width == 0 || ctx.Height == 0 {
		core.LogInfo("window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application.")
		e.isSuspended = false
	}
	e.width, e.height = ctx.Width, ctx.Height
	e.backend.Viewport(e.width, e.height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			core.LogError("game resize: %v", err)
		}
	}
	return false
}
