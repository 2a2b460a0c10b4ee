package asvsm

import "testing"

// Settings from spec's worked example: 1 light, atlas 2048, tile 32,
// virtual 4096, max_lods 1.
func exampleSettings() Settings {
	return Settings{TileSize: 32, AtlasSize: 2048, VirtualDim: 4096, MaxLODs: 1}
}

func TestSettingsWorkedExample(t *testing.T) {
	s := exampleSettings()

	if got := s.VirtualTilesPerRow(); got != 128 {
		t.Errorf("VirtualTilesPerRow() = %d, want 128", got)
	}
	if got := s.PhysicalTilesPerRow(); got != 64 {
		t.Errorf("PhysicalTilesPerRow() = %d, want 64", got)
	}
	if got := s.TotalVirtualTiles(); got != 16384 {
		t.Errorf("TotalVirtualTiles() = %d, want 16384", got)
	}
	if got := s.TotalPhysicalTiles(); got != 4096 {
		t.Errorf("TotalPhysicalTiles() = %d, want 4096", got)
	}
	if got := s.BitmaskWordCount(); got != 512 {
		t.Errorf("BitmaskWordCount() = %d, want 512", got)
	}
}

func TestRequestBufferWordCountDefaultsMaxRequests(t *testing.T) {
	s := exampleSettings()
	got := s.RequestBufferWordCount()
	want := uint32(1 + DefaultMaxRequestsPerView*3)
	if got != want {
		t.Errorf("RequestBufferWordCount() = %d, want %d", got, want)
	}
}

func TestRequestBufferWordCountRespectsExplicitMax(t *testing.T) {
	s := exampleSettings()
	s.MaxRequests = 16
	got := s.RequestBufferWordCount()
	if got != 1+16*3 {
		t.Errorf("RequestBufferWordCount() = %d, want %d", got, 1+16*3)
	}
}

func TestNewLRUInitialState(t *testing.T) {
	lru := NewLRU(4096)
	if lru.Head != 0 {
		t.Errorf("expected Head=0, got %d", lru.Head)
	}
	if len(lru.Payload) != 4096 {
		t.Fatalf("expected 4096 payload slots, got %d", len(lru.Payload))
	}
	if lru.Payload[0] != 0 || lru.Payload[4095] != 4095 {
		t.Errorf("expected payload [0..4095] in order, got [%d..%d]", lru.Payload[0], lru.Payload[4095])
	}
}

func TestBitmaskWordCountRoundsUp(t *testing.T) {
	s := Settings{TileSize: 1, VirtualDim: 5, MaxLODs: 1} // 5 virtual tiles per row -> 25 total
	if got := s.TotalVirtualTiles(); got != 25 {
		t.Fatalf("expected 25 total virtual tiles, got %d", got)
	}
	if got := s.BitmaskWordCount(); got != 1 {
		t.Errorf("BitmaskWordCount() for 25 bits = %d, want 1 (ceil(25/32))", got)
	}
}
