package local

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmartinelli/shopcart-backend/pkg/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(config.UploadsConfig{
		Dir:         t.TempDir(),
		MaxUploadMB: 1,
		PublicBase:  "/static/uploads",
	})
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return store
}

func TestSaveKeepsExtensionAndRandomizesName(t *testing.T) {
	store := newTestStore(t)

	name, url, err := store.Save("photo.PNG", strings.NewReader("fake-image-bytes"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Fatalf("expected lowercased extension, got %s", name)
	}
	if name == "photo.png" {
		t.Fatal("stored name should not reuse the original filename")
	}
	if url != "/static/uploads/"+name {
		t.Fatalf("unexpected public url %s", url)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "fake-image-bytes" {
		t.Fatalf("stored content mismatch: %q", data)
	}
}

func TestSaveRejectsUnsupportedExtension(t *testing.T) {
	store := newTestStore(t)

	if _, _, err := store.Save("malware.exe", strings.NewReader("x")); !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("expected ErrUnsupportedExtension, got %v", err)
	}
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	store := newTestStore(t)

	big := strings.NewReader(strings.Repeat("a", int(store.MaxBytes())+1))
	if _, _, err := store.Save("big.jpg", big); err == nil {
		t.Fatal("expected error for oversized upload")
	}
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("reading upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("oversized upload should be removed, found %d files", len(entries))
	}
}

func TestRemoveMissingFileIsNoop(t *testing.T) {
	store := newTestStore(t)

	if err := store.Remove("does-not-exist.png"); err != nil {
		t.Fatalf("Remove returned error for missing file: %v", err)
	}
}

func TestAllowedExtension(t *testing.T) {
	cases := map[string]bool{
		"a.png":  true,
		"a.JPG":  true,
		"a.jpeg": true,
		"a.gif":  true,
		"a.webp": true,
		"a.exe":  false,
		"a":      false,
	}
	for filename, want := range cases {
		if got := AllowedExtension(filename); got != want {
			t.Fatalf("AllowedExtension(%q) = %v, want %v", filename, got, want)
		}
	}
}
