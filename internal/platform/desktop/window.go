//go:build gl

// Package desktop is the windowed backend: a GLFW window with an OpenGL 4.1
// core context. Everything here must run on the main OS thread.
package desktop

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/observability/log"
)

var _ gpu.Surface = (*Window)(nil)

type Options struct {
	Title  string
	Width  int
	Height int
	VSync  bool
}

// Opener creates the window on first call from the render goroutine.
func Opener(opts Options, logger log.Log) gpu.Opener {
	return func() (gpu.Surface, error) {
		return Open(opts, logger)
	}
}

type Window struct {
	win    *glfw.Window
	device *Device
	logger log.Log

	captured atomic.Bool
	applied  bool
	closing  atomic.Bool

	mu         sync.Mutex
	cursorX    float64
	cursorY    float64
	hasCursor  bool
	dx, dy     float64
	destroyOne sync.Once
}

func Open(opts Options, logger log.Log) (*Window, error) {
	logger = logger.With(log.Component("desktop"))
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	logger.Info("window opened",
		log.String("gl_version", gl.GoStr(gl.GetString(gl.VERSION))),
		log.Int("width", opts.Width),
		log.Int("height", opts.Height))

	device, err := newDevice(logger)
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}

	w := &Window{win: win, device: device, logger: logger}
	win.SetCursorPosCallback(w.onCursor)
	return w, nil
}

func (w *Window) onCursor(_ *glfw.Window, x, y float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hasCursor {
		w.dx += x - w.cursorX
		w.dy += y - w.cursorY
	}
	w.cursorX, w.cursorY, w.hasCursor = x, y, true
}

func (w *Window) Size() (int, int) { return w.win.GetFramebufferSize() }

func (w *Window) Device() gpu.Device { return w.device }

func (w *Window) Input() input.Source { return w }

func (w *Window) CloseRequested() bool { return w.closing.Load() }

// RequestClose asks the loops to stop at their next iteration.
func (w *Window) RequestClose() { w.closing.Store(true) }

func (w *Window) SetPointerCaptured(captured bool) { w.captured.Store(captured) }

// PollEvents processes window events and applies a pending pointer capture
// change.
func (w *Window) PollEvents() {
	glfw.PollEvents()
	if w.win.ShouldClose() {
		w.closing.Store(true)
	}
	if want := w.captured.Load(); want != w.applied {
		mode := glfw.CursorNormal
		if want {
			mode = glfw.CursorDisabled
		}
		w.win.SetInputMode(glfw.CursorMode, mode)
		w.applied = want
		w.mu.Lock()
		w.hasCursor = false
		w.mu.Unlock()
	}
}

func (w *Window) Present() { w.win.SwapBuffers() }

func (w *Window) Destroy() {
	w.destroyOne.Do(func() {
		w.device.release()
		w.win.Destroy()
		glfw.Terminate()
		w.logger.Info("window closed")
	})
}

func (w *Window) KeyDown(key input.Key) bool {
	k, ok := keys[key]
	if !ok {
		return false
	}
	return w.win.GetKey(k) == glfw.Press
}

// CursorDelta returns movement since the previous call while the pointer is
// captured.
func (w *Window) CursorDelta() (float64, float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	dx, dy := w.dx, w.dy
	w.dx, w.dy = 0, 0
	if !w.applied {
		return 0, 0
	}
	return dx, dy
}
