// Package device wraps the WebGPU-class device/adapter/surface bootstrap
// and the thin per-frame primitives (command encoder creation, submission,
// swapchain acquisition) the render graph composes arbitrary passes on top
// of. It deliberately does not own any notion of "the main render pass" —
// unlike a fixed single-pass renderer, the graph decides what passes exist
// each frame.
package device

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device owns the WebGPU instance/adapter/device/queue/surface and exposes
// only the primitives the render graph needs to build its own pass
// encoding: surface acquisition, command encoder creation, and submission.
type Device interface {
	WGPU() *wgpu.Device
	Queue() *wgpu.Queue
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface
	SurfaceFormat() wgpu.TextureFormat

	// ConfigureSurface (re)configures the swapchain for the given
	// dimensions. cmd/demo calls it once at startup; nothing in the module
	// calls it again when the window is resized.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	ConfigureSurface(width, height uint32)

	// AcquireSurfaceTexture returns the current swapchain texture and a
	// default view onto it. Present releases the texture; the caller must
	// Release the view once the frame's present pass has consumed it.
	//
	// Returns:
	//   - *wgpu.Texture: the acquired swapchain texture
	//   - *wgpu.TextureView: a default view of that texture
	//   - error: an error if acquisition failed
	AcquireSurfaceTexture() (*wgpu.Texture, *wgpu.TextureView, error)

	// Present presents the currently-acquired swapchain texture.
	Present()

	// CreateCommandEncoder creates a new encoder, one per graph submit.
	//
	// Returns:
	//   - *wgpu.CommandEncoder: a fresh encoder
	//   - error: an error if creation failed
	CreateCommandEncoder(label string) (*wgpu.CommandEncoder, error)

	// Submit finishes encoder and submits the resulting command buffer.
	//
	// Parameters:
	//   - encoder: the encoder to finish and submit
	//
	// Returns:
	//   - error: an error if Finish failed
	Submit(encoder *wgpu.CommandEncoder) error

	// SupportsHalfFloat reports whether the adapter advertises half-float
	// shader support; gpu/shader's preprocessor substitutes precision_float
	// with the half-float type when true, f32 otherwise.
	//
	// Returns:
	//   - bool: true if half-float is supported
	SupportsHalfFloat() bool
}

type device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	wgpuDev  *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	halfFloat     bool

	acquiredTexture *wgpu.Texture
}

var _ Device = &device{}

// Options configures device bootstrap.
type Options struct {
	// ForceFallbackAdapter requests a software adapter when true.
	ForceFallbackAdapter bool
	// MaxBindGroups raises the device's bind group limit above the WebGPU
	// default; the deferred shading strategy's final lighting pass alone
	// references Global, Pass, Material, DDGI, and AS-VSM groups.
	MaxBindGroups uint32
}

// New bootstraps a WebGPU instance, requests an adapter compatible with
// surfaceDescriptor, and requests a device with the given options.
//
// Parameters:
//   - surfaceDescriptor: describes the native surface to render into
//   - opts: adapter/device request options
//
// Returns:
//   - Device: a ready-to-configure device
//   - error: an error if adapter or device request fails
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, opts Options) (Device, error) {
	runtime.LockOSThread()

	d := &device{instance: wgpu.CreateInstance(nil)}
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("device: request adapter: %w", err)
	}
	d.adapter = adapter

	limits := wgpu.DefaultLimits()
	if opts.MaxBindGroups > 0 {
		limits.MaxBindGroups = opts.MaxBindGroups
	}

	wgpuDev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "framegraph device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: limits},
	})
	if err != nil {
		return nil, fmt.Errorf("device: request device: %w", err)
	}
	d.wgpuDev = wgpuDev
	d.queue = wgpuDev.GetQueue()

	features := adapter.GetFeatures()
	for _, f := range features {
		if f == wgpu.FeatureNameShaderF16 {
			d.halfFloat = true
			break
		}
	}

	return d, nil
}

func (d *device) WGPU() *wgpu.Device            { return d.wgpuDev }
func (d *device) Queue() *wgpu.Queue            { return d.queue }
func (d *device) Adapter() *wgpu.Adapter        { return d.adapter }
func (d *device) Surface() *wgpu.Surface        { return d.surface }
func (d *device) SurfaceFormat() wgpu.TextureFormat { return d.surfaceFormat }
func (d *device) SupportsHalfFloat() bool       { return d.halfFloat }

func (d *device) ConfigureSurface(width, height uint32) {
	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.wgpuDev, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: wgpu.PresentModeImmediate,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (d *device) AcquireSurfaceTexture() (*wgpu.Texture, *wgpu.TextureView, error) {
	if d.acquiredTexture != nil {
		return nil, nil, fmt.Errorf("device: previous surface texture not yet presented")
	}

	tex, err := d.surface.GetCurrentTexture()
	if err != nil {
		return nil, nil, fmt.Errorf("device: acquire surface texture: %w", err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("device: create surface view: %w", err)
	}

	d.acquiredTexture = tex
	return tex, view, nil
}

func (d *device) Present() {
	if d.acquiredTexture == nil {
		return
	}
	d.surface.Present()
	d.acquiredTexture.Release()
	d.acquiredTexture = nil
}

func (d *device) CreateCommandEncoder(label string) (*wgpu.CommandEncoder, error) {
	return d.wgpuDev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
}

func (d *device) Submit(encoder *wgpu.CommandEncoder) error {
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("device: finish command encoder: %w", err)
	}
	d.queue.Submit(cmdBuf)
	cmdBuf.Release()
	encoder.Release()
	return nil
}
