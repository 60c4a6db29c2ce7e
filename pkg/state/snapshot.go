package state

import (
	"fmt"
	"image"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/pack"
)

// Version is the snapshot schema version written by this build.
const Version = 1

// noChild marks an absent child in a flattened tree.
const noChild = -1

// Snapshot is the persisted form of an atlas: every container's placement
// tree and canvas plus all records placed so far.
type Snapshot struct {
	Version       int              `cbor:"version"`
	AtlasID       string           `cbor:"atlas_id"`
	ContainerSize int              `cbor:"container_size"`
	SavedAt       time.Time        `cbor:"saved_at"`
	Containers    []ContainerState `cbor:"containers"`
	Records       []pack.Record    `cbor:"records"`
}

// ContainerState is one container's tree and canvas.
//
// The tree is stored as a pre-order array with child indices so arbitrarily
// deep trees encode without nesting.
type ContainerState struct {
	Index    int         `cbor:"index"`
	Size     int         `cbor:"size"`
	Nodes    []NodeState `cbor:"nodes"`
	Pixels   []byte      `cbor:"pixels"`
	Checksum uint64      `cbor:"checksum"`
}

// NodeState is one flattened placement node. Right and Down index into the
// owning ContainerState.Nodes, or are -1 when absent.
type NodeState struct {
	_     struct{} `cbor:",toarray"`
	X     int
	Y     int
	W     int
	H     int
	Used  bool
	Right int32
	Down  int32
}

// NewAtlasID returns a fresh identifier for a new atlas.
func NewAtlasID() string {
	return uuid.NewString()
}

// FromAtlas captures the current state of a. An empty id gets a new one.
func FromAtlas(a *pack.Atlas, id string) *Snapshot {
	if id == "" {
		id = NewAtlasID()
	}
	s := &Snapshot{
		Version:       Version,
		AtlasID:       id,
		ContainerSize: a.Size(),
		SavedAt:       time.Now().UTC(),
		Records:       a.Records(),
	}
	for _, c := range a.Containers() {
		s.Containers = append(s.Containers, captureContainer(c))
	}
	return s
}

func captureContainer(c *pack.Container) ContainerState {
	var nodes []NodeState
	flatten(c.Packer.Root(), &nodes)
	pix := canvasPixels(c.Canvas)
	return ContainerState{
		Index:    c.Index,
		Size:     c.Size,
		Nodes:    nodes,
		Pixels:   pix,
		Checksum: xxhash.Sum64(pix),
	}
}

// canvasPixels returns the canvas rows without stride padding.
func canvasPixels(img *image.NRGBA) []byte {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if img.Stride == rowLen && b.Min == (image.Point{}) {
		return img.Pix[:rowLen*b.Dy()]
	}
	out := make([]byte, 0, rowLen*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+rowLen]...)
	}
	return out
}

func flatten(n *pack.Node, out *[]NodeState) int32 {
	idx := int32(len(*out))
	*out = append(*out, NodeState{
		X: n.X, Y: n.Y, W: n.W, H: n.H,
		Used:  n.Used,
		Right: noChild,
		Down:  noChild,
	})
	if n.Right != nil {
		r := flatten(n.Right, out)
		(*out)[idx].Right = r
	}
	if n.Down != nil {
		d := flatten(n.Down, out)
		(*out)[idx].Down = d
	}
	return idx
}

// Atlas rebuilds a pack.Atlas from the snapshot. Restored containers keep
// their split trees, so new placements never overlap pixels drawn by an
// earlier run. New containers use size; zero means the snapshot's size.
func (s *Snapshot) Atlas(size int, opts ...pack.Option) (*pack.Atlas, error) {
	if err := errs.ValidateContainerSize(s.ContainerSize); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidState, err, "snapshot container size")
	}
	if size == 0 {
		size = s.ContainerSize
	}
	containers := make([]*pack.Container, 0, len(s.Containers))
	for i, cs := range s.Containers {
		if cs.Index != i {
			return nil, errs.New(errs.ErrCodeInvalidState, "container %d stored at position %d", cs.Index, i)
		}
		c, err := cs.restore()
		if err != nil {
			return nil, err
		}
		containers = append(containers, c)
	}
	for _, r := range s.Records {
		if r.Container < 0 || r.Container >= len(containers) {
			return nil, errs.New(errs.ErrCodeInvalidState, "record %q references missing container %d", r.Source, r.Container)
		}
	}
	a, err := pack.RestoreAtlas(size, containers, s.Records, opts...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidState, err, "restore atlas")
	}
	return a, nil
}

func (cs ContainerState) restore() (*pack.Container, error) {
	// Bounding the size first keeps the pixel count below from overflowing.
	if err := errs.ValidateContainerSize(cs.Size); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidState, err, "container %d", cs.Index)
	}
	if want := cs.Size * cs.Size * 4; len(cs.Pixels) != want {
		return nil, errs.New(errs.ErrCodeInvalidState, "container %d canvas has %d bytes, want %d", cs.Index, len(cs.Pixels), want)
	}
	if sum := xxhash.Sum64(cs.Pixels); sum != cs.Checksum {
		return nil, errs.New(errs.ErrCodeInvalidState, "container %d canvas checksum mismatch", cs.Index)
	}
	root, err := unflatten(cs.Nodes)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidState, err, "container %d tree", cs.Index)
	}
	if root.X != 0 || root.Y != 0 || root.W != cs.Size || root.H != cs.Size {
		return nil, errs.New(errs.ErrCodeInvalidState, "container %d root does not cover the canvas", cs.Index)
	}

	canvas := &image.NRGBA{
		Pix:    cs.Pixels,
		Stride: cs.Size * 4,
		Rect:   image.Rect(0, 0, cs.Size, cs.Size),
	}
	return pack.RestoreContainer(cs.Index, root, canvas), nil
}

// unflatten rebuilds a tree from its pre-order array. Children must come
// after their parent and be referenced once, which rules out cycles.
func unflatten(states []NodeState) (*pack.Node, error) {
	if len(states) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidState, "empty tree")
	}
	nodes := make([]*pack.Node, len(states))
	for i, ns := range states {
		nodes[i] = &pack.Node{X: ns.X, Y: ns.Y, W: ns.W, H: ns.H, Used: ns.Used}
	}
	referenced := make([]bool, len(states))
	child := func(parent int, idx int32) (*pack.Node, error) {
		if idx == noChild {
			return nil, nil
		}
		if int(idx) <= parent || int(idx) >= len(nodes) || referenced[idx] {
			return nil, errs.New(errs.ErrCodeInvalidState, "node %d has invalid child index %d", parent, idx)
		}
		referenced[idx] = true
		return nodes[idx], nil
	}
	for i, ns := range states {
		var err error
		if nodes[i].Right, err = child(i, ns.Right); err != nil {
			return nil, err
		}
		if nodes[i].Down, err = child(i, ns.Down); err != nil {
			return nil, err
		}
		if ns.Used != (nodes[i].Right != nil && nodes[i].Down != nil) {
			return nil, errs.New(errs.ErrCodeInvalidState, "node %d used flag disagrees with its children", i)
		}
		if err := checkSplit(nodes[i]); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidState, err, "node %d", i)
		}
	}
	return nodes[0], nil
}

// checkSplit verifies that a node has sane dimensions and that a used node's
// children are exactly the rectangles a split leaves behind. Together with a
// root that covers the canvas this keeps every node inside the canvas.
func checkSplit(n *pack.Node) error {
	if n.W < 0 || n.H < 0 {
		return fmt.Errorf("negative size %dx%d", n.W, n.H)
	}
	if !n.Used {
		return nil
	}
	w, h := n.Placed()
	if w <= 0 || h <= 0 || w > n.W || h > n.H {
		return fmt.Errorf("placed size %dx%d does not fit %dx%d", w, h, n.W, n.H)
	}
	right := pack.Node{X: n.X + w, Y: n.Y, W: n.W - w, H: h}
	down := pack.Node{X: n.X, Y: n.Y + h, W: n.W, H: n.H - h}
	if !sameRect(n.Right, right) || !sameRect(n.Down, down) {
		return fmt.Errorf("children do not tile (%d,%d %dx%d)", n.X, n.Y, n.W, n.H)
	}
	return nil
}

func sameRect(a *pack.Node, b pack.Node) bool {
	return a.X == b.X && a.Y == b.Y && a.W == b.W && a.H == b.H
}
