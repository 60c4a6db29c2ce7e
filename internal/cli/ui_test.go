package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/pipeline"
)

// captureStdout returns what fn prints to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()
	fn()
	w.Close()
	return <-done
}

func TestSummarizeContainers(t *testing.T) {
	a, err := pack.NewAtlas(64)
	if err != nil {
		t.Fatal(err)
	}
	blocks := []*pack.Block{
		{Source: "a", Width: 64, Height: 64},
		{Source: "b", Width: 32, Height: 32},
		{Source: "c", Width: 16, Height: 16},
	}
	res := a.Pack(blocks)
	if len(res.Created) != 2 {
		t.Fatalf("created %d containers, want 2", len(res.Created))
	}

	rows := summarizeContainers(a.Containers(), map[int]bool{1: true}, map[int]bool{0: true, 1: true})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].textures != 1 || rows[0].utilization != 1 || rows[0].status != "updated" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].textures != 2 || rows[1].status != "new" {
		t.Errorf("row 1 = %+v", rows[1])
	}

	table := renderContainerTable(rows)
	for _, want := range []string{"Page", "64×64", "100.0%", "new"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q:\n%s", want, table)
		}
	}
}

func TestPrintPackSummaryReportsDropReason(t *testing.T) {
	r := &pipeline.Result{
		Dropped: []pack.Drop{
			{Block: &pack.Block{Source: "big.png", Width: 2048, Height: 2048}, Err: fmt.Errorf("%w: 2048x2048 exceeds 1024x1024", pack.ErrOversized)},
			{Block: &pack.Block{Source: "again.png", Width: 16, Height: 16}, Err: pack.ErrAlreadyPlaced},
		},
		MetadataPath: "out/packed_texture.json",
	}
	out := captureStdout(t, func() { printPackSummary(r) })

	for _, want := range []string{
		"big.png (2048x2048): texture larger than container",
		"again.png (16x16): texture already placed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
