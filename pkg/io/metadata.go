package io

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/atlaspack/pkg/pack"
)

// MetadataFile is the document name inside the output directory.
const MetadataFile = "packed_texture.json"

// Metadata is the decoded metadata document.
type Metadata struct {
	SubTextures map[string]pack.Record `json:"sub_textures"`
}

// NewMetadata builds the document for records. A later record for the same
// source replaces an earlier one.
func NewMetadata(records []pack.Record) *Metadata {
	m := &Metadata{SubTextures: make(map[string]pack.Record, len(records))}
	for _, r := range records {
		if r.Regions == nil {
			r.Regions = pack.Regions{}
		}
		m.SubTextures[r.Source] = r
	}
	return m
}

// Records returns the entries ordered by container, then row, then column.
func (m *Metadata) Records() []pack.Record {
	out := make([]pack.Record, 0, len(m.SubTextures))
	for _, r := range m.SubTextures {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b pack.Record) int {
		return cmp.Or(
			cmp.Compare(a.Container, b.Container),
			cmp.Compare(a.Y, b.Y),
			cmp.Compare(a.X, b.X),
			cmp.Compare(a.Source, b.Source),
		)
	})
	return out
}

// Containers returns the number of pages the document references.
func (m *Metadata) Containers() int {
	n := 0
	for _, r := range m.SubTextures {
		n = max(n, r.Container+1)
	}
	return n
}

// WriteMetadata encodes the document for records to w.
func WriteMetadata(records []pack.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(NewMetadata(records)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportMetadata writes the document for records to path.
func ExportMetadata(records []pack.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteMetadata(records, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadMetadata decodes a document from r. Each record's Source is set from
// its key.
func ReadMetadata(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if m.SubTextures == nil {
		m.SubTextures = make(map[string]pack.Record)
	}
	for src, rec := range m.SubTextures {
		if rec.Container < 0 {
			return nil, fmt.Errorf("texture %s: negative container index %d", src, rec.Container)
		}
		rec.Source = src
		m.SubTextures[src] = rec
	}
	return &m, nil
}

// ImportMetadata reads the document at path.
func ImportMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadMetadata(f)
}
