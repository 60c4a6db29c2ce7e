package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/atlaspack/pkg/pack"
)

func TestToDOT(t *testing.T) {
	p := pack.NewPacker(64, 64)
	p.Fit(64, 32)
	p.Fit(16, 16)

	dot := ToDOT(p.Root(), TreeOptions{})
	for _, want := range []string{
		"digraph G {",
		`label="64x32"`,
		`label="16x16"`,
		`n0 -> n1 [label="right"]`,
		`[label="down"]`,
		"free 48x16",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTHideEmpty(t *testing.T) {
	p := pack.NewPacker(64, 64)
	p.Fit(64, 32)

	full := ToDOT(p.Root(), TreeOptions{})
	hidden := ToDOT(p.Root(), TreeOptions{HideEmpty: true})

	if !strings.Contains(full, "free 0x32") {
		t.Errorf("expected zero-width leaf in:\n%s", full)
	}
	if strings.Contains(hidden, "free 0x32") {
		t.Errorf("zero-width leaf not hidden:\n%s", hidden)
	}
	if !strings.Contains(hidden, "free 64x32") {
		t.Errorf("non-empty leaf hidden:\n%s", hidden)
	}
}

func TestToDOTDetailed(t *testing.T) {
	p := pack.NewPacker(32, 32)
	dot := ToDOT(p.Root(), TreeOptions{Detailed: true})
	if !strings.Contains(dot, `(0,0) 32x32`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if got := normalizeViewBox([]byte("<svg/>")); string(got) != "<svg/>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}
