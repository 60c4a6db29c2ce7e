package state

import (
	"image"
	"image/color"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/pack"
)

func solid(source string, w, h int, c color.NRGBA, regions pack.Regions) *pack.Block {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return pack.NewBlock(source, img, regions)
}

func packed(t *testing.T, size int, blocks ...*pack.Block) *pack.Atlas {
	t.Helper()
	a, err := pack.NewAtlas(size)
	require.NoError(t, err)
	a.Pack(blocks)
	return a
}

func roundTrip(t *testing.T, s *Snapshot) *Snapshot {
	t.Helper()
	data, err := Encode(s)
	require.NoError(t, err)
	out, err := Decode(data)
	require.NoError(t, err)
	return out
}

func TestSnapshotRoundTripPreservesTree(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	a := packed(t, 256,
		solid("a.png", 128, 128, red, pack.Regions{"frame": {X: 1, Y: 2, Width: 3, Height: 4}}),
		solid("b.png", 64, 64, red, nil),
		solid("c.png", 32, 16, red, nil),
	)

	snap := FromAtlas(a, "atlas-1")
	got := roundTrip(t, snap)

	assert.Equal(t, Version, got.Version)
	assert.Equal(t, "atlas-1", got.AtlasID)
	assert.Equal(t, 256, got.ContainerSize)
	assert.Equal(t, a.Records(), got.Records)

	restored, err := got.Atlas(0)
	require.NoError(t, err)
	require.Len(t, restored.Containers(), 1)

	var before, after []pack.Node
	a.Containers()[0].Packer.Walk(func(n *pack.Node, _ int) bool {
		before = append(before, pack.Node{X: n.X, Y: n.Y, W: n.W, H: n.H, Used: n.Used})
		return true
	})
	restored.Containers()[0].Packer.Walk(func(n *pack.Node, _ int) bool {
		after = append(after, pack.Node{X: n.X, Y: n.Y, W: n.W, H: n.H, Used: n.Used})
		return true
	})
	assert.Equal(t, before, after)
	assert.Equal(t, a.Containers()[0].Canvas.Pix, restored.Containers()[0].Canvas.Pix)
}

func TestFromAtlasAssignsID(t *testing.T) {
	a := packed(t, 64)
	s := FromAtlas(a, "")
	assert.NotEmpty(t, s.AtlasID)
	assert.Empty(t, s.Containers)
}

func TestAppendAfterReloadDoesNotOverlap(t *testing.T) {
	first := packed(t, 256,
		solid("a.png", 128, 128, color.NRGBA{R: 255, A: 255}, nil),
		solid("b.png", 128, 64, color.NRGBA{G: 255, A: 255}, nil),
	)
	snap := roundTrip(t, FromAtlas(first, ""))

	a, err := snap.Atlas(256)
	require.NoError(t, err)
	res := a.Pack([]*pack.Block{
		solid("c.png", 128, 128, color.NRGBA{B: 255, A: 255}, nil),
		solid("d.png", 64, 64, color.NRGBA{B: 255, A: 255}, nil),
	})
	require.Len(t, res.Records, 2)
	assert.Empty(t, res.Created, "room left in the restored container")

	recs := a.Records()
	require.Len(t, recs, 4)
	for i := range recs {
		for j := i + 1; j < len(recs); j++ {
			if recs[i].Container != recs[j].Container {
				continue
			}
			assert.False(t, recs[i].Rect().Overlaps(recs[j].Rect()),
				"%s overlaps %s", recs[i].Source, recs[j].Source)
		}
	}

	// Pixels from the first run survive.
	canvas := a.Containers()[0].Canvas
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, canvas.NRGBAAt(0, 0))
}

func TestAppendContinuesContainerIndices(t *testing.T) {
	first := packed(t, 64, solid("a.png", 64, 64, color.NRGBA{A: 255}, nil))
	snap := roundTrip(t, FromAtlas(first, ""))

	a, err := snap.Atlas(0)
	require.NoError(t, err)
	res := a.Pack([]*pack.Block{solid("b.png", 32, 32, color.NRGBA{A: 255}, nil)})

	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Records[0].Container)
	require.Len(t, res.Created, 1)
	assert.Equal(t, 1, res.Created[0].Index)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not a state file"))
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidState))

	_, err = Decode(append([]byte("APKS"), 0x01, 0x02, 0x03))
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidState))
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	s := FromAtlas(packed(t, 64), "x")
	s.Version = Version + 1
	data, err := Encode(s)
	require.NoError(t, err)

	_, err = Decode(data)
	assert.True(t, errs.Is(err, errs.ErrCodeUnsupportedState))
}

func TestRestoreDetectsChecksumMismatch(t *testing.T) {
	a := packed(t, 64, solid("a.png", 16, 16, color.NRGBA{R: 9, A: 255}, nil))
	s := roundTrip(t, FromAtlas(a, ""))
	s.Containers[0].Pixels[0] ^= 0xff

	_, err := s.Atlas(0)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidState))
}

func TestRestoreRejectsDanglingRecord(t *testing.T) {
	a := packed(t, 64, solid("a.png", 16, 16, color.NRGBA{A: 255}, nil))
	s := roundTrip(t, FromAtlas(a, ""))
	s.Records[0].Container = 5

	_, err := s.Atlas(0)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidState))
}

func TestRestoreRejectsShortCanvas(t *testing.T) {
	pix := make([]byte, 10)
	s := &Snapshot{
		Version:       Version,
		ContainerSize: 64,
		Containers: []ContainerState{{
			Index: 0, Size: 64,
			Nodes:    []NodeState{{W: 64, H: 64, Right: noChild, Down: noChild}},
			Pixels:   pix,
			Checksum: xxhash.Sum64(pix),
		}},
	}
	_, err := s.Atlas(0)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidState))
}

func TestRestoreRejectsTamperedGeometry(t *testing.T) {
	a := packed(t, 64, solid("x.png", 32, 32, color.NRGBA{R: 1, A: 255}, nil))
	s := roundTrip(t, FromAtlas(a, ""))

	// Move the free space to the right of x off the canvas.
	nodes := s.Containers[0].Nodes
	right := nodes[0].Right
	nodes[right].X = 100
	nodes[right].W = 64

	data, err := Encode(s)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)

	_, err = decoded.Atlas(0)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidState), "got %v", err)
}

func TestRestoreRejectsOversizedContainer(t *testing.T) {
	for _, size := range []int{1 << 31, 3, -64} {
		s := &Snapshot{
			Version:       Version,
			ContainerSize: 64,
			Containers: []ContainerState{{
				Index: 0, Size: size,
				Nodes:    []NodeState{{W: size, H: size, Right: noChild, Down: noChild}},
				Checksum: xxhash.Sum64(nil),
			}},
		}
		_, err := s.Atlas(0)
		assert.True(t, errs.Is(err, errs.ErrCodeInvalidState), "size %d: got %v", size, err)
	}
}

func TestRestoreRejectsBadSnapshotSize(t *testing.T) {
	s := FromAtlas(packed(t, 64), "x")
	s.ContainerSize = 1 << 40
	_, err := s.Atlas(0)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidState))
}

func TestUnflatten(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []NodeState
		wantErr bool
	}{
		{
			name:  "single leaf",
			nodes: []NodeState{{W: 8, H: 8, Right: noChild, Down: noChild}},
		},
		{
			name: "split",
			nodes: []NodeState{
				{W: 8, H: 8, Used: true, Right: 1, Down: 2},
				{X: 4, W: 4, H: 4, Right: noChild, Down: noChild},
				{Y: 4, W: 8, H: 4, Right: noChild, Down: noChild},
			},
		},
		{name: "empty", wantErr: true},
		{
			name:    "self reference",
			nodes:   []NodeState{{W: 8, H: 8, Used: true, Right: 0, Down: 0}},
			wantErr: true,
		},
		{
			name: "shared child",
			nodes: []NodeState{
				{W: 8, H: 8, Used: true, Right: 1, Down: 1},
				{W: 4, H: 4, Right: noChild, Down: noChild},
			},
			wantErr: true,
		},
		{
			name:    "out of range",
			nodes:   []NodeState{{W: 8, H: 8, Used: true, Right: 3, Down: 4}},
			wantErr: true,
		},
		{
			name: "children do not tile",
			nodes: []NodeState{
				{W: 8, H: 8, Used: true, Right: 1, Down: 2},
				{X: 5, W: 4, H: 4, Right: noChild, Down: noChild},
				{Y: 4, W: 8, H: 4, Right: noChild, Down: noChild},
			},
			wantErr: true,
		},
		{
			name: "down child too narrow",
			nodes: []NodeState{
				{W: 8, H: 8, Used: true, Right: 1, Down: 2},
				{X: 4, W: 4, H: 4, Right: noChild, Down: noChild},
				{Y: 4, W: 4, H: 4, Right: noChild, Down: noChild},
			},
			wantErr: true,
		},
		{
			name: "full placement",
			nodes: []NodeState{
				{W: 8, H: 8, Used: true, Right: 1, Down: 2},
				{X: 8, W: 0, H: 8, Right: noChild, Down: noChild},
				{Y: 8, W: 8, H: 0, Right: noChild, Down: noChild},
			},
		},
		{
			name:    "negative leaf",
			nodes:   []NodeState{{W: -8, H: 8, Right: noChild, Down: noChild}},
			wantErr: true,
		},
		{
			name:    "used without children",
			nodes:   []NodeState{{W: 8, H: 8, Used: true, Right: noChild, Down: noChild}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := unflatten(tt.nodes)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.nodes[0].W, root.W)
		})
	}
}

func TestCanvasPixelsDropsStridePadding(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4)).SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)
	assert.Len(t, canvasPixels(img), 2*2*4)
}
