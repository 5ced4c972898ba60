package limelight

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestWritePNG(t *testing.T) {
	_, scene := newTestScene(t, BridgeConfig{})
	path := filepath.Join(t.TempDir(), "scene.png")

	if err := scene.WritePNG(path); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("decoded size = %dx%d, want 320x240", cfg.Width, cfg.Height)
	}
}

func TestWritePNGWithoutImage(t *testing.T) {
	_, scene := newTestScene(t, BridgeConfig{})
	scene.Dispose()
	if err := scene.WritePNG(filepath.Join(t.TempDir(), "none.png")); err == nil {
		t.Fatal("WritePNG on disposed scene: want error")
	}
}

func TestBufferPoolReuse(t *testing.T) {
	pool := NewBufferPool()
	a := pool.Image(64, 64)
	b := pool.Image(64, 64)
	if a != b {
		t.Error("same size returned a different buffer")
	}
	c := pool.Image(32, 64)
	if c == a {
		t.Error("size change returned the old buffer")
	}
	if c.Bounds().Dx() != 32 || c.Bounds().Dy() != 64 {
		t.Errorf("buffer bounds = %v, want 32x64", c.Bounds())
	}
}
