package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

func newLock() *LockFile {
	return &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}
}

func TestHashDeterministic(t *testing.T) {
	h1 := Hash("Stone")
	h2 := Hash("Stone")
	if h1 != h2 {
		t.Errorf("Hash not deterministic: %s != %s", h1, h2)
	}
	if h1 == Hash("Cobblestone") {
		t.Errorf("Hash collision for different input")
	}
}

func TestLoadNonExistent(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error for non-existent file: %v", err)
	}
	if lf.Version != Version {
		t.Errorf("Version = %d, want %d", lf.Version, Version)
	}
	if len(lf.Checksums) != 0 {
		t.Errorf("Checksums not empty: %v", lf.Checksums)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	lf, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lf.UpdateBatch("mymod_zh_cn.json", map[string]string{
		"block.mymod.ore":  "Ore",
		"item.mymod.ingot": "Ingot",
	})
	lf.UpdateBatch("mymod_ja_jp.json", map[string]string{"block.mymod.ore": "Ore"})

	if err := lf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(dir, LockFileName)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Lock file not created at %s: %v", path, err)
	}

	lf2, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	targets, keys := lf2.Stats()
	if targets != 2 || keys != 3 {
		t.Errorf("Stats() = (%d, %d), want (2, 3)", targets, keys)
	}
	if lf2.Path() != path {
		t.Errorf("Path() = %q, want %q", lf2.Path(), path)
	}
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LockFileName), []byte("version: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected parse error for corrupt lock file")
	}
}

func TestIsChangedAndIsStale(t *testing.T) {
	lf := newLock()
	target := "mymod_zh_cn.lang"

	if !lf.IsChanged(target, "tile.stone.name", "Stone") {
		t.Error("new entry should be changed")
	}
	if lf.IsStale(target, "tile.stone.name", "Stone") {
		t.Error("unrecorded entry should not be stale")
	}

	lf.UpdateBatch(target, map[string]string{"tile.stone.name": "Stone"})

	if lf.IsChanged(target, "tile.stone.name", "Stone") {
		t.Error("unchanged entry should not be changed")
	}
	if lf.IsStale(target, "tile.stone.name", "Stone") {
		t.Error("unchanged entry should not be stale")
	}
	if !lf.IsStale(target, "tile.stone.name", "Smooth Stone") {
		t.Error("edited source should be stale")
	}
	if !lf.IsChanged("other.lang", "tile.stone.name", "Stone") {
		t.Error("different target should be changed")
	}
}

func TestClean(t *testing.T) {
	lf := newLock()
	lf.UpdateBatch("t", map[string]string{"a": "A", "b": "B", "gone": "G"})

	lf.Clean("t", []string{"a", "b"})

	if lf.IsChanged("t", "a", "A") {
		t.Error("a should still be tracked")
	}
	if !lf.IsChanged("t", "gone", "G") {
		t.Error("gone should be removed by Clean")
	}
	lf.Clean("missing-target", nil)
}

func TestTargetKeyAndSummary(t *testing.T) {
	if got := TargetKey(filepath.Join("out", "lang", "mymod_zh_cn.json")); got != "mymod_zh_cn.json" {
		t.Errorf("TargetKey = %q", got)
	}

	lf := newLock()
	if lf.Summary() != "empty" {
		t.Errorf("empty summary = %q, want %q", lf.Summary(), "empty")
	}
	lf.UpdateBatch("b.json", map[string]string{"k": "v"})
	lf.UpdateBatch("a.json", map[string]string{"k": "v", "k2": "v2"})
	want := "2 targets, 3 keys (a.json: 2 keys, b.json: 1 keys)"
	if got := lf.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
