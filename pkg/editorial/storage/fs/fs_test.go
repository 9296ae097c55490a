package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tendant/simple-editorial/pkg/editorial"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp, URLPrefix: "http://localhost:8080/files/"})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	key := "media/1700000000000-abc.png"

	data := []byte("hello fs")
	if err := backend.Upload(ctx, key, bytes.NewReader(data), "image/png"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	meta, err := backend.GetObjectMeta(ctx, key)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if meta.Size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), meta.Size)
	}
	if meta.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", meta.ContentType)
	}

	rc, err := backend.Download(ctx, key)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != string(data) {
		t.Fatalf("download mismatch: %q", string(got))
	}

	if url := backend.PublicURL(key); url != "http://localhost:8080/files/"+key {
		t.Fatalf("unexpected public url %q", url)
	}

	if err := backend.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "media")); !os.IsNotExist(err) {
		t.Fatalf("expected empty media dir removed, stat err=%v", err)
	}
	if err := backend.Delete(ctx, key); !errors.Is(err, editorial.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound on second delete, got %v", err)
	}
}

func TestFSBackend_Missing(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	ctx := context.Background()

	if _, err := backend.Download(ctx, "media/none"); !errors.Is(err, editorial.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if _, err := backend.GetObjectMeta(ctx, "media/none"); !errors.Is(err, editorial.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	err = backend.Upload(context.Background(), "../outside.txt", bytes.NewReader([]byte("x")), "")
	if err == nil {
		t.Fatal("expected error for key outside base dir")
	}
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without base dir")
	}
}
