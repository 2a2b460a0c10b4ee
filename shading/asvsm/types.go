// Package asvsm implements Adaptive Sparse Virtual Shadow Maps: a
// shadowing technique addressing a large virtual tile grid through a
// small physical atlas, paged in on demand and evicted by an LRU ring per
// light.
package asvsm

import "github.com/lumenforge/framegraph/rendergraph"

// HistogramBins is the fixed bin count the split-depth-sum pass reduces
// over.
const HistogramBins = 64

// DefaultMaxRequestsPerView bounds how many new tile requests the Gather
// pass may append per view per frame.
const DefaultMaxRequestsPerView = 64

// Settings configures the virtual/physical tile grid. TileSize, AtlasSize,
// and VirtualDim must each be powers of two.
type Settings struct {
	TileSize    uint32
	AtlasSize   uint32
	VirtualDim  uint32
	MaxLODs     uint32
	MaxRequests uint32
}

// VirtualTilesPerRow returns VirtualDim / TileSize.
func (s Settings) VirtualTilesPerRow() uint32 { return s.VirtualDim / s.TileSize }

// PhysicalTilesPerRow returns AtlasSize / TileSize.
func (s Settings) PhysicalTilesPerRow() uint32 { return s.AtlasSize / s.TileSize }

// TotalVirtualTiles returns (VirtualTilesPerRow^2) * MaxLODs.
func (s Settings) TotalVirtualTiles() uint32 {
	per := s.VirtualTilesPerRow()
	return per * per * s.MaxLODs
}

// TotalPhysicalTiles returns (PhysicalTilesPerRow^2) * MaxLODs.
func (s Settings) TotalPhysicalTiles() uint32 {
	per := s.PhysicalTilesPerRow()
	return per * per * s.MaxLODs
}

// BitmaskWordCount returns the number of u32 words needed for one bit per
// virtual tile.
func (s Settings) BitmaskWordCount() uint32 {
	total := s.TotalVirtualTiles()
	return (total + 31) / 32
}

// RequestBufferWordCount returns the word count of the requested-tiles
// buffer: a 1-word count header plus 3 words per possible request.
func (s Settings) RequestBufferWordCount() uint32 {
	maxReq := s.MaxRequests
	if maxReq == 0 {
		maxReq = DefaultMaxRequestsPerView
	}
	return 1 + maxReq*3
}

// LRU is one light's physical-slot recency ring: a head cursor plus the
// full payload of physical slot indices, oldest-first from head.
type LRU struct {
	Head    uint32
	Payload []uint32
}

// NewLRU builds the initial LRU ring for totalPhysicalTiles slots: payload
// [0..totalPhysicalTiles) in order, head at 0 — every physical slot starts
// unassigned and equally evictable.
func NewLRU(totalPhysicalTiles uint32) LRU {
	payload := make([]uint32, totalPhysicalTiles)
	for i := range payload {
		payload[i] = uint32(i)
	}
	return LRU{Head: 0, Payload: payload}
}

// State is one light set's AS-VSM resources, persistent across frames
// (force_recreate on cache invalidation) except where noted.
type State struct {
	Settings Settings

	ShadowAtlas       rendergraph.Handle // 2D array, one layer per shadow-casting light
	PageTable         rendergraph.Handle // r32uint 2D array, virtual tiles
	Bitmask           rendergraph.Handle
	Requested         rendergraph.Handle
	PhysicalToVirtual rendergraph.Handle
	SettingsBuffer    rendergraph.Handle
	Histogram         rendergraph.Handle

	LRUByLight []LRU

	// DebugAtlas / DebugPageTable are created lazily only when a debug
	// view selects them.
	DebugAtlas     rendergraph.Handle
	DebugPageTable rendergraph.Handle
}
