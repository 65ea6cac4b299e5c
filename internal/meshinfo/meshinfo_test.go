package meshinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/plykit/pkg/ply"
)

func writeTestMesh(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "mesh.ply")
	w, err := ply.Create(path, ply.StorageASCII, func(err error) { t.Fatalf("writer hook: %v", err) })
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := w.AddComment("test mesh"); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if err := w.AddElement("vertex", 4); err != nil {
		t.Fatalf("add vertex: %v", err)
	}
	if err := w.AddProperty("x", ply.KindFloat32); err != nil {
		t.Fatalf("add x: %v", err)
	}
	if err := w.AddElement("face", 2); err != nil {
		t.Fatalf("add face: %v", err)
	}
	if err := w.AddListProperty("vertex_indices", ply.KindUint8, ply.KindInt32); err != nil {
		t.Fatalf("add list: %v", err)
	}
	if err := w.WriteHeader(); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, x := range []float64{1, 2, 3, 4} {
		if err := w.Write(x); err != nil {
			t.Fatalf("write x: %v", err)
		}
	}
	for _, face := range [][]float64{{0, 1, 2}, {0, 2, 3}} {
		if err := w.Write(float64(len(face))); err != nil {
			t.Fatalf("write length: %v", err)
		}
		for _, idx := range face {
			if err := w.Write(idx); err != nil {
				t.Fatalf("write index: %v", err)
			}
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeTestMesh(t, t.TempDir())
	info, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.Format != "ascii" {
		t.Fatalf("format: got %q", info.Format)
	}
	if info.Path != path || info.Size == 0 {
		t.Fatalf("path/size: %q %d", info.Path, info.Size)
	}
	if len(info.Elements) != 2 {
		t.Fatalf("elements: got %d", len(info.Elements))
	}
	if info.Elements[0].Name != "vertex" || info.Elements[0].Count != 4 {
		t.Fatalf("vertex element: %+v", info.Elements[0])
	}
	p := info.Elements[1].Properties[0]
	if !p.List || p.Type != "int" || p.LengthType != "uchar" {
		t.Fatalf("list property: %+v", p)
	}
	if len(info.Comments) != 1 || info.Comments[0] != "test mesh" {
		t.Fatalf("comments: %v", info.Comments)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.ply")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCollectStats(t *testing.T) {
	t.Parallel()

	path := writeTestMesh(t, t.TempDir())
	stats, err := CollectStats(path)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(stats.Elements) != 2 {
		t.Fatalf("elements: got %d", len(stats.Elements))
	}

	x := stats.Elements[0].Properties[0]
	if x.Values != 4 || x.Min != 1 || x.Max != 4 || x.Mean != 2.5 {
		t.Fatalf("x stats: %+v", x)
	}

	idx := stats.Elements[1].Properties[0]
	if idx.Values != 6 || idx.Min != 0 || idx.Max != 3 {
		t.Fatalf("index stats: %+v", idx)
	}
	if idx.MinLength != 3 || idx.MaxLength != 3 {
		t.Fatalf("length stats: %+v", idx)
	}
}

func TestCollectStatsBadBody(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "short.ply")
	src := "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nend_header\n1.0\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := CollectStats(path); err == nil {
		t.Fatalf("expected error for truncated body")
	}
}
