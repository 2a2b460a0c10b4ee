package light

import "math"

// LightBuilderOption configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the world-space position of the light.
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) { l.position = [3]float32{x, y, z} }
}

// WithDirection sets the direction of the light, normalized before storing.
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) { l.direction = normalize3(x, y, z) }
}

// WithColor sets the RGB color of the light.
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) { l.color = [3]float32{r, g, b} }
}

// WithIntensity sets the scalar intensity multiplier.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) { l.intensity = intensity }
}

// WithRange sets the maximum attenuation distance for point/spot lights.
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) { l.lightRange = lightRange }
}

// WithSpotCone sets the inner/outer cone half-angles for spot lights, in
// degrees, converted to cosines internally (the format the GPU shader needs).
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerCone = cosDeg(innerDeg)
		l.outerCone = cosDeg(outerDeg)
	}
}

// WithEnabled sets whether the light is active for rendering.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) { l.enabled = enabled }
}

// WithEphemeral marks the light as a short-lived particle-emitted light not
// persisted in any scene-level light registry.
func WithEphemeral(ephemeral bool) LightBuilderOption {
	return func(l *lightImpl) { l.ephemeral = ephemeral }
}

// WithCastsShadows sets whether the light is eligible for AS-VSM shadow paging.
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) { l.castsShadows = castsShadows }
}

func normalize3(x, y, z float32) [3]float32 {
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length == 0 {
		return [3]float32{0, 0, 0}
	}
	inv := 1.0 / length
	return [3]float32{x * inv, y * inv, z * inv}
}

func cosDeg(deg float32) float32 {
	return float32(math.Cos(float64(deg) * math.Pi / 180.0))
}
