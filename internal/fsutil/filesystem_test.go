package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_CreateInThenOpen(t *testing.T) {
	fsys := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "Maldives")

	w, path, err := CreateIn(fsys, dir, "grid.csv")
	if err != nil {
		t.Fatalf("CreateIn failed: %v", err)
	}
	if _, err := io.WriteString(w, "1,2\n3,4\n"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := fsys.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "1,2\n3,4\n" {
		t.Errorf("unexpected content %q", data)
	}
	if _, err := fsys.Open(filepath.Join(dir, "missing.csv")); !os.IsNotExist(err) {
		t.Errorf("Open missing err = %v, want not-exist", err)
	}
}

func TestMemoryFileSystem_CreateAndOpen(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/out/run.csv")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("2021,100,12.5\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got, _ := mfs.ReadFile("/out/run.csv"); len(got) != 0 {
		t.Errorf("content visible before Close: %q", got)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := mfs.Open("/out/run.csv")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "2021,100,12.5\n" {
		t.Errorf("unexpected content %q", data)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "run.csv" || info.Size() != int64(len(data)) {
		t.Errorf("unexpected stat %s/%d", info.Name(), info.Size())
	}
}

func TestMemoryFileSystem_PutCopies(t *testing.T) {
	mfs := NewMemoryFileSystem()
	src := []byte("5,6\n")
	mfs.Put("/maps/isle.csv", src)
	src[0] = '9'

	got, err := mfs.ReadFile("/maps/isle.csv")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "5,6\n" {
		t.Errorf("stored content changed with caller slice: %q", got)
	}
}

func TestMemoryFileSystem_MissingFile(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if _, err := mfs.Open("/nope"); !os.IsNotExist(err) {
		t.Errorf("Open err = %v, want not-exist", err)
	}
	if _, err := mfs.ReadFile("/nope"); !os.IsNotExist(err) {
		t.Errorf("ReadFile err = %v, want not-exist", err)
	}
}

func TestMemoryFileSystem_MkdirAll(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, d := range []string{"/a", "/a/b", "/a/b/c"} {
		if !mfs.IsDir(d) {
			t.Errorf("expected %s to be a dir", d)
		}
	}
	if mfs.IsDir("/a/b/c/d") {
		t.Error("unexpected dir /a/b/c/d")
	}
}

func TestCreateIn(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, path, err := CreateIn(mfs, "/target/Maldives", "MaldivesRCP2.6.csv")
	if err != nil {
		t.Fatalf("CreateIn failed: %v", err)
	}
	if path != filepath.Join("/target/Maldives", "MaldivesRCP2.6.csv") {
		t.Errorf("path = %s", path)
	}
	w.Write([]byte("x"))
	w.Close()

	if !mfs.IsDir("/target/Maldives") {
		t.Error("expected output dir to be created")
	}
	if got := mfs.Files(); len(got) != 1 || got[0] != path {
		t.Errorf("Files() = %v", got)
	}
}

func TestCreateIn_RejectsEscapes(t *testing.T) {
	mfs := NewMemoryFileSystem()

	for _, name := range []string{"../up.csv", "/abs.csv", ".."} {
		if _, _, err := CreateIn(mfs, "/target", name); err == nil {
			t.Errorf("CreateIn(%q) succeeded, want error", name)
		}
	}
	if len(mfs.Files()) != 0 {
		t.Errorf("no files should be created, got %v", mfs.Files())
	}
}
