package pack

import (
	"github.com/charmbracelet/log"
)

// Diagnostics receives events while an Atlas packs blocks.
//
// Implementations are called synchronously from Pack and must not modify the
// containers or blocks they are handed.
type Diagnostics interface {
	ContainerCreated(c *Container)
	BlockPlaced(b *Block, rec Record)
	BlockDropped(b *Block, reason error)
}

// NopDiagnostics ignores every event.
type NopDiagnostics struct{}

func (NopDiagnostics) ContainerCreated(*Container) {}
func (NopDiagnostics) BlockPlaced(*Block, Record)  {}
func (NopDiagnostics) BlockDropped(*Block, error)  {}

// LogDiagnostics reports packing events to a logger. Placements are logged
// at debug level, drops as warnings.
type LogDiagnostics struct {
	Logger *log.Logger
}

// NewLogDiagnostics returns diagnostics that write to l.
// A nil logger falls back to log.Default().
func NewLogDiagnostics(l *log.Logger) *LogDiagnostics {
	if l == nil {
		l = log.Default()
	}
	return &LogDiagnostics{Logger: l}
}

func (d *LogDiagnostics) ContainerCreated(c *Container) {
	d.Logger.Debug("created container", "index", c.Index, "size", c.Size)
}

func (d *LogDiagnostics) BlockPlaced(b *Block, rec Record) {
	d.Logger.Debug("placed texture",
		"source", b.Source,
		"container", rec.Container,
		"x", rec.X,
		"y", rec.Y)
}

func (d *LogDiagnostics) BlockDropped(b *Block, reason error) {
	d.Logger.Warn("texture not packed",
		"source", b.Source,
		"width", b.Width,
		"height", b.Height,
		"reason", reason)
}

// MultiDiagnostics fans events out to several receivers in order.
type MultiDiagnostics []Diagnostics

func (m MultiDiagnostics) ContainerCreated(c *Container) {
	for _, d := range m {
		d.ContainerCreated(c)
	}
}

func (m MultiDiagnostics) BlockPlaced(b *Block, rec Record) {
	for _, d := range m {
		d.BlockPlaced(b, rec)
	}
}

func (m MultiDiagnostics) BlockDropped(b *Block, reason error) {
	for _, d := range m {
		d.BlockDropped(b, reason)
	}
}

var (
	_ Diagnostics = NopDiagnostics{}
	_ Diagnostics = (*LogDiagnostics)(nil)
	_ Diagnostics = MultiDiagnostics(nil)
)
