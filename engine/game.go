package engine

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func(ctx *Engine) error

// Update runs zero or more times per frame with a constant dt.
type Update func(ctx *Engine, deltaTime float64) error

// Render runs exactly once per frame. alpha in [0,1) is how far the
// accumulated time sits into the next simulation step; interpolate
// between the last two update states with it for smooth motion.
type Render func(ctx *Engine, alpha float64) error

type OnResize func(ctx *Engine, width uint32, height uint32) error
type Shutdown func(ctx *Engine) error
