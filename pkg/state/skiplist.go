package state

import (
	"bufio"
	"os"
	"path/filepath"
	"slices"
	"strings"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
)

// SkipList is the set of source identifiers already packed by earlier runs.
// Ingestion consults it so append runs do not place a texture twice.
type SkipList map[string]struct{}

// Has reports whether id was packed before.
func (s SkipList) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add records id as packed.
func (s SkipList) Add(id string) {
	s[id] = struct{}{}
}

// Sorted returns the identifiers in lexical order.
func (s SkipList) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ReadSkipList reads one identifier per line. Blank lines are ignored and a
// missing file yields an empty list.
func ReadSkipList(path string) (SkipList, error) {
	list := make(SkipList)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return list, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRead, err, "open skip-list %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			list.Add(id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeRead, err, "read skip-list %s", path)
	}
	return list, nil
}

// WriteSkipList writes the identifiers sorted, one per line.
func WriteSkipList(path string, list SkipList) error {
	var b strings.Builder
	for _, id := range list.Sorted() {
		if err := errs.ValidateSourceID(id); err != nil {
			return err
		}
		b.WriteString(id)
		b.WriteByte('\n')
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "create skip-list dir")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "write skip-list %s", path)
	}
	return nil
}
