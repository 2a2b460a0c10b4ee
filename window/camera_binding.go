package window

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/lumenforge/framegraph/camera"
)

// BindOrbitCamera wires a window's keyboard/scroll/resize events to an
// orbit-style CameraController: WASD orbits, arrow keys pan, the scroll
// wheel zooms, and window resizes update the aspect ratio. Intended for
// cmd/demo's interactive preview; headless/automated runs should drive the
// controller directly instead of calling this.
func BindOrbitCamera(w Window, cam camera.Camera, ctrl camera.CameraController) {
	pressed := make(map[uint32]bool)

	w.SetKeyDownCallback(func(keyCode uint32) { pressed[keyCode] = true })
	w.SetKeyUpCallback(func(keyCode uint32) { pressed[keyCode] = false })

	w.SetScrollCallback(func(delta float32) {
		ctrl.Zoom(delta)
	})

	w.SetResizeCallback(func(width, height int) {
		if height == 0 {
			return
		}
		cam.SetAspect(float32(width) / float32(height))
	})

	w.SetUpdateCallback(func() {
		if pressed[uint32(glfw.KeyA)] {
			ctrl.OrbitLeft()
		}
		if pressed[uint32(glfw.KeyD)] {
			ctrl.OrbitRight()
		}
		if pressed[uint32(glfw.KeyW)] {
			ctrl.OrbitUp()
		}
		if pressed[uint32(glfw.KeyS)] {
			ctrl.OrbitDown()
		}
		if pressed[uint32(glfw.KeyUp)] {
			ctrl.PanForward(0.1)
		}
		if pressed[uint32(glfw.KeyDown)] {
			ctrl.PanForward(-0.1)
		}
		if pressed[uint32(glfw.KeyLeft)] {
			ctrl.PanRight(-0.1)
		}
		if pressed[uint32(glfw.KeyRight)] {
			ctrl.PanRight(0.1)
		}
		cam.Update()
	})
}
