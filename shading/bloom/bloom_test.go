package bloom

import (
	"encoding/binary"
	"testing"

	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/rendergraph"
)

func TestExtentBytesLayout(t *testing.T) {
	e := Extent{SrcWidth: 1920, SrcHeight: 1080, DstWidth: 960, DstHeight: 540, Step: 2}
	b := e.Bytes()
	if len(b) != 20 {
		t.Fatalf("expected 20-byte layout, got %d", len(b))
	}
	if got := binary.LittleEndian.Uint32(b[0:4]); got != e.SrcWidth {
		t.Errorf("SrcWidth = %d, want %d", got, e.SrcWidth)
	}
	if got := binary.LittleEndian.Uint32(b[4:8]); got != e.SrcHeight {
		t.Errorf("SrcHeight = %d, want %d", got, e.SrcHeight)
	}
	if got := binary.LittleEndian.Uint32(b[8:12]); got != e.DstWidth {
		t.Errorf("DstWidth = %d, want %d", got, e.DstWidth)
	}
	if got := binary.LittleEndian.Uint32(b[12:16]); got != e.DstHeight {
		t.Errorf("DstHeight = %d, want %d", got, e.DstHeight)
	}
	if got := binary.LittleEndian.Uint32(b[16:20]); got != e.Step {
		t.Errorf("Step = %d, want %d", got, e.Step)
	}
}

func TestAddPassesRejectsShortMipChain(t *testing.T) {
	g := rendergraph.New(nil, nil, nil, 2)
	g.Begin()
	p := Params{
		Source: g.RegisterImage(common.NewName("src")),
		Chain:  MipChain{Images: []rendergraph.Handle{g.RegisterImage(common.NewName("mip0"))}},
		Output: g.RegisterImage(common.NewName("out")),
	}
	if err := AddPasses(g, p); err == nil {
		t.Fatalf("expected error for a mip chain shorter than downsampleIterations+1")
	}
}

func TestAddPassesRejectsTooFewExtentUniforms(t *testing.T) {
	g := rendergraph.New(nil, nil, nil, 2)
	g.Begin()

	images := make([]rendergraph.Handle, downsampleIterations+1)
	for i := range images {
		images[i] = g.RegisterImage(common.Name(uint64(i) + 1))
	}
	p := Params{
		Source: g.RegisterImage(common.NewName("src")),
		Chain:  MipChain{Images: images, Widths: make([]uint32, len(images)), Heights: make([]uint32, len(images))},
		Output: g.RegisterImage(common.NewName("out")),
	}
	if err := AddPasses(g, p); err == nil {
		t.Fatalf("expected error when ExtentUniforms is empty")
	}
}

func TestDispatchCount(t *testing.T) {
	cases := []struct{ extent, want uint32 }{
		{0, 0},
		{1, 1},
		{8, 1},
		{9, 2},
		{1920, 240},
	}
	for _, c := range cases {
		if got := dispatchCount(c.extent); got != c.want {
			t.Errorf("dispatchCount(%d) = %d, want %d", c.extent, got, c.want)
		}
	}
}
