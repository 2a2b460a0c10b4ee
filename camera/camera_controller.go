package camera

// CameraController owns positional state (position, target); Camera reads
// from it and computes view/projection matrices. Embeds both
// orbitCameraController and planarCameraController, so orbit and planar
// controls work simultaneously from a single controller instance.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the camera's world-space position.
	Position() (x, y, z float32)

	// Target returns the look-at point.
	Target() (x, y, z float32)

	// SetTarget sets the look-at/pivot point and recomputes position from
	// spherical coordinates.
	SetTarget(x, y, z float32)

	// SetPosition sets the camera's world-space position directly.
	SetPosition(x, y, z float32)

	// Zoom adjusts the camera's distance by modifying orbit radius.
	// Positive delta zooms in (closer to target).
	Zoom(delta float32)
}

// orbitCameraController provides third-person orbit controls using
// spherical coordinates (radius, azimuth, elevation) relative to the
// target/pivot point.
type orbitCameraController interface {
	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Radius returns the current orbit radius (distance from target).
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to min/max bounds.
	SetRadius(radius float32)

	// MinRadius returns the minimum allowed orbit radius.
	MinRadius() float32

	// MaxRadius returns the maximum allowed orbit radius.
	MaxRadius() float32

	// Azimuth returns the current horizontal angle around the Y axis.
	Azimuth() float32

	// SetAzimuth sets the horizontal angle directly and recomputes position.
	SetAzimuth(azimuth float32)

	// Elevation returns the current vertical angle from the horizontal plane.
	Elevation() float32

	// SetElevation sets the vertical angle directly, clamped to min/max bounds.
	SetElevation(elevation float32)

	// MinElevation returns the minimum allowed elevation angle.
	MinElevation() float32

	// MaxElevation returns the maximum allowed elevation angle.
	MaxElevation() float32

	// OrbitSpeed returns the keyboard orbit speed in radians per step.
	OrbitSpeed() float32

	// MouseSensitivity returns the mouse drag sensitivity multiplier.
	MouseSensitivity() float32

	// ZoomSpeed returns the zoom speed multiplier.
	ZoomSpeed() float32
}

// planarCameraController provides first-person-style panning along the
// camera's local axes without changing orbit angles. Panning shifts both
// position and target by the same offset, preserving the orbit relationship.
type planarCameraController interface {
	// PanRight translates the camera along its local right axis.
	PanRight(delta float32)

	// PanUp translates the camera along its local up axis.
	PanUp(delta float32)

	// PanForward translates the camera along its local forward axis (dolly).
	PanForward(delta float32)

	// PanSpeed returns the pan speed multiplier.
	PanSpeed() float32
}
