package testbed

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lume/engine"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/graphics"
	amath "github.com/spaghettifunk/lume/engine/math"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	// Positions of the bouncing square at the previous and current
	// simulation step, for interpolated rendering.
	prevPos mgl32.Vec2
	currPos mgl32.Vec2
	vel     mgl32.Vec2

	scene   *graphics.Canvas
	shapes  *graphics.Mesh
	elapsed float64
}

func NewTestGame() (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				Name:                 "Lume Testbed",
				WindowWidth:          1280,
				WindowHeight:         720,
				LogicalWidth:         640,
				LogicalHeight:        360,
				FixedTimestep:        engine.DefaultFixedTimestep,
				MaxUpdatesPerAdvance: engine.DefaultMaxUpdatesPerAdvance,
				VSync:                true,
				BatchCapacity:        graphics.DefaultBatchCapacity,
				AssetsDir:            "assets",
				Debug:                true,
				LogLevel:             core.DebugLevel,
			},
			State: &gameState{
				currPos: mgl32.Vec2{100, 100},
				prevPos: mgl32.Vec2{100, 100},
				vel: mgl32.Vec2{
					amath.FRandomInRange(140, 220),
					amath.FRandomInRange(100, 180),
				},
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize(ctx *engine.Engine) error {
	core.LogInfo("initializing testbed...")
	st := g.state()

	scene, err := graphics.NewCanvas(ctx.Graphics().Device(), 320, 180, graphics.FilterNearest)
	if err != nil {
		return err
	}
	st.scene = scene

	builder := graphics.NewGeometryBuilder()
	builder.SetColor(graphics.RGB(0.2, 0.8, 0.4))
	if err := builder.Circle(graphics.Fill(), mgl32.Vec2{60, 60}, 40); err != nil {
		return err
	}
	builder.SetColor(graphics.ColorWhite)
	if err := builder.Rectangle(graphics.Stroke(2), graphics.NewRectangle(10, 10, 100, 100)); err != nil {
		return err
	}
	st.shapes = builder.BuildMesh()

	return nil
}

func (g *TestGame) Update(ctx *engine.Engine, deltaTime float64) error {
	st := g.state()
	st.elapsed += deltaTime

	if core.InputIsKeyDown(core.KEY_ESCAPE) {
		ctx.Quit()
		return nil
	}

	st.prevPos = st.currPos
	st.currPos = st.currPos.Add(st.vel.Mul(float32(deltaTime)))

	// Bounce inside the logical area.
	w, h := float32(640), float32(360)
	const size = 32
	if st.currPos.X() < 0 || st.currPos.X()+size > w {
		st.vel[0] = -st.vel[0]
	}
	if st.currPos.Y() < 0 || st.currPos.Y()+size > h {
		st.vel[1] = -st.vel[1]
	}
	return nil
}

func (g *TestGame) Render(ctx *engine.Engine, alpha float64) error {
	st := g.state()
	gfx := ctx.Graphics()

	// Draw the shapes into the low-res canvas, then blow it up.
	if err := gfx.PushCanvas(st.scene); err != nil {
		return err
	}
	if err := gfx.Clear(graphics.RGB(0.1, 0.1, 0.15)); err != nil {
		return err
	}
	if err := gfx.DrawMesh(st.shapes, graphics.NewDrawParams()); err != nil {
		return err
	}
	if err := gfx.PopCanvas(); err != nil {
		return err
	}

	if err := gfx.Clear(graphics.ColorBlack); err != nil {
		return err
	}
	if err := gfx.DrawCanvas(st.scene, graphics.NewDrawParams().WithScale(2, 2)); err != nil {
		return err
	}

	// Blend the last two simulation positions for smooth motion.
	pos := st.prevPos.Add(st.currPos.Sub(st.prevPos).Mul(float32(alpha)))
	builder := graphics.NewGeometryBuilder()
	builder.SetColor(graphics.RGB(0.9, 0.6, 0.2))
	if err := builder.Rectangle(graphics.Fill(), graphics.NewRectangle(0, 0, 32, 32)); err != nil {
		return err
	}
	square := builder.BuildMesh()

	return gfx.DrawMesh(square, graphics.NewDrawParams().WithPosition(pos.X(), pos.Y()))
}

func (g *TestGame) Shutdown(ctx *engine.Engine) error {
	st := g.state()
	if st.scene != nil {
		st.scene.Release(ctx.Graphics().Device())
		st.scene = nil
	}
	return nil
}
