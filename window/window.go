// Package window provides platform windowing and input event handling for
// the demo driver (cmd/demo). It wraps GLFW and produces the
// wgpu.SurfaceDescriptor the device layer presents into.
package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling. Wraps
// platform-specific window implementations behind a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	// Positive delta = scroll up (zoom in), negative = scroll down (zoom out).
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMiddleMouseDownCallback sets the callback for middle mouse button press.
	SetMiddleMouseDownCallback(callback func(x, y int32))

	// SetMiddleMouseUpCallback sets the callback for middle mouse button release.
	SetMiddleMouseUpCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for
	// creating a WebGPU surface, or nil if the window is not initialized.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still active.
	IsRunning() bool

	// Close closes the window and releases platform resources.
	Close() error

	// ProcessMessages runs the window message loop. Blocks until the
	// window is closed, calling the update callback each iteration.
	ProcessMessages()

	// Width returns the current window client area width in pixels.
	Width() int

	// Height returns the current window client area height in pixels.
	Height() int
}

// hostWindow is the implementation of the Window interface. Holds window
// configuration, GLFW state, and event callbacks.
type hostWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int
	width     int
	height    int

	internalWindow any

	onUpdate          func()
	onResize          func(width, height int)
	onScroll          func(delta float32)
	onKeyDown         func(keyCode uint32)
	onKeyUp           func(keyCode uint32)
	onMiddleMouseDown func(x, y int32)
	onMiddleMouseUp   func(x, y int32)
	onMouseMove       func(x, y int32)
}

var _ Window = &hostWindow{}

// NewWindow creates a new Window with the given options, applying defaults
// first and then each option in order.
func NewWindow(options ...WindowBuilderOption) Window {
	w := &hostWindow{
		title:     "framegraph demo",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1600,
		height:    900,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *hostWindow) SetUpdateCallback(callback func())             { w.onUpdate = callback }
func (w *hostWindow) SetResizeCallback(callback func(w2, h2 int))   { w.onResize = callback }
func (w *hostWindow) SetScrollCallback(callback func(delta float32)) { w.onScroll = callback }
func (w *hostWindow) SetKeyDownCallback(callback func(keyCode uint32)) { w.onKeyDown = callback }
func (w *hostWindow) SetKeyUpCallback(callback func(keyCode uint32))   { w.onKeyUp = callback }

func (w *hostWindow) SetMiddleMouseDownCallback(callback func(x, y int32)) {
	w.onMiddleMouseDown = callback
}

func (w *hostWindow) SetMiddleMouseUpCallback(callback func(x, y int32)) {
	w.onMiddleMouseUp = callback
}

func (w *hostWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *hostWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *hostWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *hostWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *hostWindow) ProcessMessages() {
	for w.IsRunning() {
		if ok := platformProcessMessages(w); !ok {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *hostWindow) Width() int  { return w.width }
func (w *hostWindow) Height() int { return w.height }
