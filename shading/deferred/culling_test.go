package deferred

import "testing"

// Guard-clause tests: each of these methods must return before touching
// s.Graph (nil here) when its feature is disabled/absent.

func TestSkyboxSkipsWhenDisabled(t *testing.T) {
	s := &Strategy{}
	frame := &FrameData{}
	frame.Skybox.Enabled = false
	s.skybox(frame)
}

func TestDepthPrepassSkipsWhenDisabled(t *testing.T) {
	s := &Strategy{}
	frame := &FrameData{DepthPrepassEnabled: false}
	s.depthPrepass(frame, ViewData{}, 0)
}

func TestComputeRasterizationSkipsWhenQueueAbsent(t *testing.T) {
	s := &Strategy{}
	frame := &FrameData{ComputeRaster: nil}
	s.computeRasterization(frame)
}
