// Package ebitenrender adapts [Ebitengine] as a limelight rendering
// backend. It keeps the reference block layout (via
// [limelight.PrepareTree]) and substitutes GPU rasterization: background
// rectangles are drawn as scaled white-pixel quads into an offscreen
// ebiten.Image, then read back into the *image.RGBA the session expects.
//
// The backend needs a running ebiten game loop (a graphics context), so it
// is meant for tooling that already hosts one. Headless use belongs to
// [limelight.BlockBackend].
//
// [Ebitengine]: https://ebitengine.org
package ebitenrender

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/limelight"
)

// whitePixel is a 1x1 white image; solid rectangles are drawn by scaling
// and tinting it.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(color.White)
}

// Backend is a [limelight.RenderBackend] rasterizing with ebiten.
// Not safe for concurrent use on its own, but the session already holds
// the render lock around every Render call.
type Backend struct {
	canvas *ebiten.Image
	pix    []byte
}

// New creates the ebiten-backed renderer.
func New() *Backend {
	return &Backend{}
}

// Render implements [limelight.RenderBackend].
func (b *Backend) Render(req *limelight.RenderRequest) (*limelight.ViewInfo, *image.RGBA, error) {
	root, err := limelight.PrepareTree(req)
	if err != nil {
		return nil, nil, err
	}

	w, h := req.Width, req.Height
	if b.canvas == nil || b.canvas.Bounds().Dx() != w || b.canvas.Bounds().Dy() != h {
		if b.canvas != nil {
			b.canvas.Deallocate()
		}
		b.canvas = ebiten.NewImage(w, h)
		b.pix = make([]byte, 4*w*h)
	}
	b.canvas.Clear()

	if err := b.paint(root, 1.0); err != nil {
		return nil, nil, err
	}

	// ReadPixels returns premultiplied RGBA, which is exactly the byte
	// layout of image.RGBA.
	b.canvas.ReadPixels(b.pix)
	img := req.Target
	if img == nil || img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		img = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	copy(img.Pix, b.pix)
	return root, img, nil
}

// DefaultProperties mirrors the reference backend's attribute defaults.
func (b *Backend) DefaultProperties(node *limelight.ViewInfo) map[string]string {
	return limelight.NewBlockBackend().DefaultProperties(node)
}

// paint draws v's background quad and recurses, multiplying alpha down
// the tree.
func (b *Backend) paint(v *limelight.ViewInfo, parentAlpha float64) error {
	alpha := parentAlpha
	if raw := v.Attr("alpha"); raw != "" {
		a, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("ebitenrender: node %d: parse alpha %q: %w", v.ID, raw, err)
		}
		if a < 0 {
			a = 0
		} else if a > 1 {
			a = 1
		}
		alpha *= a
	}

	if bg := v.Attr("background"); bg != "" {
		c, err := limelight.ParseColor(bg)
		if err != nil {
			return fmt.Errorf("ebitenrender: node %d: %w", v.ID, err)
		}
		rect := v.Bounds
		if rect.Dx() > 0 && rect.Dy() > 0 {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
			op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
			op.ColorScale.ScaleWithColor(c)
			op.ColorScale.ScaleAlpha(float32(alpha))
			b.canvas.DrawImage(whitePixel, op)
		}
	}

	for _, child := range v.Children() {
		if err := b.paint(child, alpha); err != nil {
			return err
		}
	}
	return nil
}
