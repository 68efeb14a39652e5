package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/lume/engine/containers"
	"github.com/spaghettifunk/lume/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the window and the OpenGL context, and translates OS
// events into the engine's input and event systems.
type Platform struct {
	Window *glfw.Window

	// Resize notifications are buffered and coalesced so a burst of
	// events during an interactive resize fires a single engine event
	// per pump.
	resizes *containers.RingQueue
}

func New() (*Platform, error) {
	return &Platform{
		resizes: containers.NewRingQueue(64),
	}, nil
}

func (p *Platform) Startup(applicationName string, width, height uint32, vsync bool) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return core.ConfigErrorf("glfw init failed: %v", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return core.ConfigErrorf("window creation failed: %v", err)
	}
	window.MakeContextCurrent()
	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetMouseButtonCallback(mouseButtonCallback)
	p.Window.SetCursorPosCallback(cursorPosCallback)
	p.Window.SetScrollCallback(scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(closeCallback)
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages runs pending OS callbacks, then fires at most one resize
// event with the newest framebuffer size.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()

	var last *core.SystemEvent
	for {
		v, err := p.resizes.Dequeue()
		if err != nil {
			break
		}
		last = v.(*core.SystemEvent)
	}
	if last != nil {
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: last,
		})
	}
}

// SwapBuffers presents the finished frame.
func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

// FramebufferSize returns the drawable surface size in pixels, which on
// high-DPI displays differs from the window size.
func (p *Platform) FramebufferSize() (int32, int32) {
	w, h := p.Window.GetFramebufferSize()
	return int32(w), int32(h)
}

// GetAbsoluteTime returns seconds since GLFW initialization.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime()
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	ev := &core.SystemEvent{
		WindowWidth:  uint32(width),
		WindowHeight: uint32(height),
	}
	if err := p.resizes.Enqueue(ev); err != nil {
		// Queue full; drop the oldest so the newest size wins.
		p.resizes.Dequeue()
		p.resizes.Enqueue(ev)
	}
}

func closeCallback(w *glfw.Window) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_APPLICATION_QUIT,
	})
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	code, ok := translateKey(key)
	if !ok {
		return
	}
	core.InputProcessKey(code, action == glfw.Press)
}

func mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	core.InputProcessButton(b, action == glfw.Press)
}

func cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	core.InputProcessMouseMove(int32(xpos), int32(ypos))
}

func scrollCallback(w *glfw.Window, xoff, yoff float64) {
	if yoff > 0 {
		core.InputProcessMouseWheel(1)
	} else if yoff < 0 {
		core.InputProcessMouseWheel(-1)
	}
}

// translateKey maps GLFW keys onto the engine's keycodes. Letters and
// digits share ASCII values on both sides.
func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return core.KEY_A + core.KeyCode(key-glfw.KeyA), true
	case key >= glfw.Key0 && key <= glfw.Key9:
		return core.KEY_0 + core.KeyCode(key-glfw.Key0), true
	case key >= glfw.KeyF1 && key <= glfw.KeyF12:
		return core.KEY_F1 + core.KeyCode(key-glfw.KeyF1), true
	}

	switch key {
	case glfw.KeySpace:
		return core.KEY_SPACE, true
	case glfw.KeyEscape:
		return core.KEY_ESCAPE, true
	case glfw.KeyEnter:
		return core.KEY_ENTER, true
	case glfw.KeyTab:
		return core.KEY_TAB, true
	case glfw.KeyBackspace:
		return core.KEY_BACKSPACE, true
	case glfw.KeyInsert:
		return core.KEY_INSERT, true
	case glfw.KeyDelete:
		return core.KEY_DELETE, true
	case glfw.KeyRight:
		return core.KEY_RIGHT, true
	case glfw.KeyLeft:
		return core.KEY_LEFT, true
	case glfw.KeyDown:
		return core.KEY_DOWN, true
	case glfw.KeyUp:
		return core.KEY_UP, true
	case glfw.KeyHome:
		return core.KEY_HOME, true
	case glfw.KeyEnd:
		return core.KEY_END, true
	case glfw.KeyCapsLock:
		return core.KEY_CAPITAL, true
	case glfw.KeyPause:
		return core.KEY_PAUSE, true
	case glfw.KeyLeftShift, glfw.KeyRightShift:
		return core.KEY_SHIFT, true
	case glfw.KeyLeftControl, glfw.KeyRightControl:
		return core.KEY_CONTROL, true
	}
	return 0, false
}
