package limelight

import (
	"fmt"
	"image/png"
	"os"
)

// WritePNG writes the scene's last render to path as a PNG file. Returns
// an error if the scene has no image (the last render failed or the scene
// is disposed).
func (s *Scene) WritePNG(path string) error {
	img := s.Image()
	if img == nil {
		return fmt.Errorf("write png: scene has no rendered image")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("write png %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write png %s: %w", path, err)
	}
	return nil
}
