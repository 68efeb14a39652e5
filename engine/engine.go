package engine

import (
	"github.com/spaghettifunk/lume/engine/assets"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/graphics"
	"github.com/spaghettifunk/lume/engine/graphics/opengl"
	"github.com/spaghettifunk/lume/engine/platform"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Engine ties the subsystems together and runs the frame loop: pump OS
// events, advance the simulation in fixed steps, render once, present.
type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool

	platform     *platform.Platform
	device       *opengl.Device
	graphics     *graphics.Graphics
	assetManager *assets.AssetManager
	timestep     *Timestep

	clock    *core.Clock
	lastTime float64
}

func New(g *Game) (*Engine, error) {
	cfg := g.ApplicationConfig
	if cfg == nil {
		return nil, core.ConfigErrorf("game has no application config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	core.SetLogLevel(cfg.LogLevel)
	core.SetStrictState(cfg.Debug)

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	ts, err := NewTimestep(cfg.FixedTimestep, cfg.MaxUpdatesPerAdvance)
	if err != nil {
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		platform:     p,
		device:       opengl.NewDevice(),
		assetManager: am,
		timestep:     ts,
		isRunning:    true,
		isSuspended:  false,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	cfg := e.gameInstance.ApplicationConfig

	if err := core.InputInitialize(); err != nil {
		return err
	}
	if !core.EventSystemInitialize() {
		return core.ConfigErrorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(cfg.Name, cfg.WindowWidth, cfg.WindowHeight, cfg.VSync); err != nil {
		return err
	}

	// The GL context exists now; bring up the device and the renderer.
	if err := e.device.Initialize(); err != nil {
		return err
	}

	fbWidth, fbHeight := e.platform.FramebufferSize()
	gfx, err := graphics.New(e.device, graphics.Config{
		LogicalWidth:  cfg.LogicalWidth,
		LogicalHeight: cfg.LogicalHeight,
		WindowWidth:   fbWidth,
		WindowHeight:  fbHeight,
		BatchCapacity: cfg.BatchCapacity,
	})
	if err != nil {
		return err
	}
	e.graphics = gfx

	if cfg.AssetsDir != "" {
		if err := e.assetManager.Initialize(cfg.AssetsDir); err != nil {
			// Missing asset directory is not fatal; games may embed
			// everything.
			core.LogWarn("asset manager disabled: %s", err.Error())
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e, uint32(fbWidth), uint32(fbHeight)); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the frame loop until quit is requested.
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		e.platform.PumpMessages()

		if e.isSuspended {
			e.lastTime = e.clock.Elapsed()
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := e.platform.GetAbsoluteTime()

		_, alpha, err := e.timestep.Advance(delta, func(dt float64) error {
			if e.gameInstance.FnUpdate == nil {
				return nil
			}
			return e.gameInstance.FnUpdate(e, dt)
		})
		if err != nil {
			core.LogError("Game update failed, shutting down: %s", err.Error())
			e.isRunning = false
			break
		}

		if err := e.renderFrame(alpha); err != nil {
			core.LogError("Game render failed, shutting down: %s", err.Error())
			e.isRunning = false
			break
		}
		e.platform.SwapBuffers()

		frameElapsedTime := e.platform.GetAbsoluteTime() - frameStartTime
		core.MetricsUpdate(frameElapsedTime)

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		// As a safety, input is the last thing to be updated before
		// this frame ends.
		core.InputUpdate()

		e.lastTime = currentTime
	}

	return nil
}

func (e *Engine) renderFrame(alpha float64) error {
	if err := e.graphics.BeginFrame(); err != nil {
		return err
	}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(e, alpha); err != nil {
			e.graphics.EndFrame()
			return err
		}
	}
	return e.graphics.EndFrame()
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(e); err != nil {
			core.LogError(err.Error())
		}
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if e.graphics != nil {
		e.graphics.Shutdown()
	}
	if err := e.device.Shutdown(); err != nil {
		return err
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	return e.platform.Shutdown()
}

// Graphics exposes the renderer to game callbacks.
func (e *Engine) Graphics() *graphics.Graphics {
	return e.graphics
}

func (e *Engine) Assets() *assets.AssetManager {
	return e.assetManager
}

// SimTime is the total simulated time in seconds.
func (e *Engine) SimTime() float64 {
	return e.timestep.SimTime()
}

// Quit requests a clean shutdown at the end of the current frame.
func (e *Engine) Quit() {
	e.isRunning = false
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
	}
}

func (e *Engine) onResized(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	width, height := int32(se.WindowWidth), int32(se.WindowHeight)
	e.graphics.OnResize(width, height)

	// A zero-area framebuffer means the window is minimized; stop
	// advancing until it comes back.
	e.isSuspended = width == 0 || height == 0

	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e, se.WindowWidth, se.WindowHeight); err != nil {
			core.LogError(err.Error())
		}
	}
}
