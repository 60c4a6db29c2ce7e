package pack

import (
	"errors"
	"fmt"
	"slices"
)

// Sentinel errors reported through Diagnostics.BlockDropped.
var (
	// ErrOversized means the block is wider or taller than the container edge.
	ErrOversized = errors.New("texture larger than container")

	// ErrNoSpace means even a fresh container could not hold the block.
	ErrNoSpace = errors.New("no space in a fresh container")

	// ErrAlreadyPlaced means the block already carries a placement.
	ErrAlreadyPlaced = errors.New("texture already placed")

	// ErrInvalidSize means the block has a zero or negative side.
	ErrInvalidSize = errors.New("texture size must be positive")
)

// Option configures an Atlas.
type Option func(*Atlas)

// WithDiagnostics sets the receiver of packing events.
func WithDiagnostics(d Diagnostics) Option {
	return func(a *Atlas) {
		if d != nil {
			a.diag = d
		}
	}
}

// Atlas is the ordered set of containers for one atlas and the records of
// every texture placed into it.
//
// An Atlas is not safe for concurrent use.
type Atlas struct {
	size       int
	containers []*Container
	records    []Record
	diag       Diagnostics
}

// Result describes what one call to Pack changed.
type Result struct {
	// Created holds the containers opened by this call, in index order.
	Created []*Container

	// Records holds one entry per placed block in processing order.
	Records []Record

	// Dropped holds blocks that received no placement, with the reason.
	Dropped []Drop
}

// Drop is a block that Pack could not place.
type Drop struct {
	Block *Block
	Err   error
}

// NewAtlas creates an empty atlas whose new containers are size×size.
func NewAtlas(size int, opts ...Option) (*Atlas, error) {
	return RestoreAtlas(size, nil, nil, opts...)
}

// RestoreAtlas creates an atlas that continues from previously packed
// containers and records. Containers must be indexed 0..n-1 in order.
func RestoreAtlas(size int, containers []*Container, records []Record, opts ...Option) (*Atlas, error) {
	if size <= 0 {
		return nil, fmt.Errorf("container size must be positive, got %d", size)
	}
	for i, c := range containers {
		if c.Index != i {
			return nil, fmt.Errorf("container at position %d has index %d", i, c.Index)
		}
	}
	a := &Atlas{
		size:       size,
		containers: containers,
		records:    records,
		diag:       NopDiagnostics{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Size returns the edge length used for new containers.
func (a *Atlas) Size() int { return a.size }

// Containers returns all containers in creation order.
func (a *Atlas) Containers() []*Container { return a.containers }

// Records returns every record placed into the atlas, across all Pack calls.
func (a *Atlas) Records() []Record { return a.records }

// Pack places blocks into the atlas.
//
// Blocks are processed largest-first by their shorter side; ties keep input
// order. Each block goes into the first container, in creation order, whose
// tree has room. When none has room a new container is opened. A block larger
// than every container it could go into is dropped without opening one.
//
// Pack reorders the blocks slice in place.
func (a *Atlas) Pack(blocks []*Block) Result {
	slices.SortStableFunc(blocks, func(x, y *Block) int {
		return y.minSide() - x.minSide()
	})

	var res Result
	firstNew := len(a.containers)
	for _, b := range blocks {
		rec, err := a.packOne(b)
		if err != nil {
			res.Dropped = append(res.Dropped, Drop{Block: b, Err: err})
			a.diag.BlockDropped(b, err)
			continue
		}
		res.Records = append(res.Records, rec)
		a.diag.BlockPlaced(b, rec)
	}
	res.Created = a.containers[firstNew:]
	return res
}

func (a *Atlas) packOne(b *Block) (Record, error) {
	if b.Placed() {
		return Record{}, ErrAlreadyPlaced
	}
	if b.Width <= 0 || b.Height <= 0 {
		return Record{}, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, b.Width, b.Height)
	}

	// Pages restored from an earlier run may be larger than new ones, so an
	// oversized block still gets a chance there.
	for _, c := range a.containers {
		if c.Size < b.Width || c.Size < b.Height {
			continue
		}
		if origin, ok := c.place(b); ok {
			return a.commit(b, c, origin.X, origin.Y), nil
		}
	}
	if b.Width > a.size || b.Height > a.size {
		return Record{}, fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrOversized, b.Width, b.Height, a.size, a.size)
	}

	c := NewContainer(len(a.containers), a.size)
	a.containers = append(a.containers, c)
	a.diag.ContainerCreated(c)

	origin, ok := c.place(b)
	if !ok {
		return Record{}, ErrNoSpace
	}
	return a.commit(b, c, origin.X, origin.Y), nil
}

func (a *Atlas) commit(b *Block, c *Container, x, y int) Record {
	rec := Record{
		Container: c.Index,
		X:         x,
		Y:         y,
		Width:     b.Width,
		Height:    b.Height,
		Source:    b.Source,
		Regions:   b.Regions.Translate(x, y),
	}
	b.placement = &rec
	a.records = append(a.records, rec)
	return rec
}
