package limelight

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// BlockBackend is the reference [RenderBackend]: a deliberately small
// vertical block layout that stacks each node's children top to bottom and
// paints background rectangles into an *image.RGBA.
//
// Recognized attributes:
//
//	width      box width in px; missing or "fill" stretches to the parent
//	height     box height in px; missing or "wrap" wraps the stacked children
//	background #RRGGBB or #AARRGGBB fill color; missing paints nothing
//	alpha      opacity in [0, 1], multiplied down the tree
//	offset-x   horizontal shift of the box in px
//	offset-y   vertical shift of the box in px
//
// It exists so the session contract can be exercised end to end (and it
// powers the package tests); it is not a real layout engine.
type BlockBackend struct{}

// NewBlockBackend creates the reference backend.
func NewBlockBackend() *BlockBackend {
	return &BlockBackend{}
}

// PrepareTree clones the request tree, applies the staged property
// changes, and runs the block layout against the request's canvas size.
// Backend implementations that keep the reference layout and substitute
// only the rasterization step (see the ebitenrender subpackage) call this
// and then paint from the returned tree's Bounds.
func PrepareTree(req *RenderRequest) (*ViewInfo, error) {
	if req.Root == nil {
		return nil, fmt.Errorf("blockrender: nil root")
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("blockrender: invalid canvas size %dx%d", req.Width, req.Height)
	}
	root := req.Root.Clone()
	applyStaged(root, req.Staged)
	if err := layoutBlock(root, image.Rect(0, 0, req.Width, req.Height)); err != nil {
		return nil, err
	}
	return root, nil
}

// Render lays out and paints the tree. See [RenderBackend].
func (b *BlockBackend) Render(req *RenderRequest) (*ViewInfo, *image.RGBA, error) {
	w, h := req.Width, req.Height

	root, err := PrepareTree(req)
	if err != nil {
		return nil, nil, err
	}

	img := req.Target
	if img == nil || img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		img = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	}
	if err := paintBlock(img, root, 1.0); err != nil {
		return nil, nil, err
	}
	return root, img, nil
}

// DefaultProperties implements the optional [PropertySource] capability.
func (b *BlockBackend) DefaultProperties(node *ViewInfo) map[string]string {
	return map[string]string{
		"width":      "fill",
		"height":     "wrap",
		"background": "",
		"alpha":      "1",
		"offset-x":   "0",
		"offset-y":   "0",
	}
}

// applyStaged writes the staged property changes into the cloned tree, in
// staging order. Changes whose node has left the tree are dropped.
func applyStaged(root *ViewInfo, staged []PropertyChange) {
	for _, pc := range staged {
		if node := findByID(root, pc.NodeID); node != nil {
			node.SetAttr(pc.Name, pc.Value)
		}
	}
}

// layoutBlock assigns v.Bounds within the available rectangle and stacks
// the children below one another inside it.
func layoutBlock(v *ViewInfo, avail image.Rectangle) error {
	w, err := sizeAttr(v, "width", "fill", avail.Dx())
	if err != nil {
		return err
	}

	// Children are laid out first against a provisional box so a "wrap"
	// height can sum them up.
	childTop := avail.Min.Y
	childAvail := image.Rect(avail.Min.X, childTop, avail.Min.X+w, avail.Max.Y)
	stacked := 0
	for _, c := range v.Children() {
		if err := layoutBlock(c, childAvail); err != nil {
			return err
		}
		ch := c.Bounds.Dy()
		stacked += ch
		childAvail.Min.Y += ch
	}

	h, err := sizeAttr(v, "height", "wrap", stacked)
	if err != nil {
		return err
	}

	dx, err := numAttr(v, "offset-x", 0)
	if err != nil {
		return err
	}
	dy, err := numAttr(v, "offset-y", 0)
	if err != nil {
		return err
	}

	v.Bounds = image.Rect(avail.Min.X, avail.Min.Y, avail.Min.X+w, avail.Min.Y+h).Add(image.Pt(dx, dy))
	if dx != 0 || dy != 0 {
		shiftChildren(v, dx, dy)
	}
	return nil
}

// shiftChildren moves an offset node's already-laid-out descendants with it.
func shiftChildren(v *ViewInfo, dx, dy int) {
	for _, c := range v.Children() {
		c.Bounds = c.Bounds.Add(image.Pt(dx, dy))
		shiftChildren(c, dx, dy)
	}
}

// paintBlock fills v's background rectangle and recurses in tree order,
// multiplying alpha down the tree.
func paintBlock(img *image.RGBA, v *ViewInfo, parentAlpha float64) error {
	alpha := parentAlpha
	if raw := v.Attr("alpha"); raw != "" {
		a, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("blockrender: node %d: parse alpha %q: %w", v.ID, raw, err)
		}
		alpha *= clamp01(a)
	}

	if bg := v.Attr("background"); bg != "" {
		c, err := ParseColor(bg)
		if err != nil {
			return fmt.Errorf("blockrender: node %d: %w", v.ID, err)
		}
		c.A = uint8(float64(c.A) * alpha)
		rect := v.Bounds.Intersect(img.Bounds())
		if !rect.Empty() && c.A > 0 {
			draw.Draw(img, rect, image.NewUniform(premultiply(c)), image.Point{}, draw.Over)
		}
	}

	for _, child := range v.Children() {
		if err := paintBlock(img, child, alpha); err != nil {
			return err
		}
	}
	return nil
}

// sizeAttr reads a dimension attribute: a pixel count, or the named
// keyword (and the empty string) meaning fallback.
func sizeAttr(v *ViewInfo, name, keyword string, fallback int) (int, error) {
	raw := v.Attr(name)
	if raw == "" || raw == keyword || raw == "fill" || raw == "wrap" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("blockrender: node %d: parse %s %q: %w", v.ID, name, raw, err)
	}
	if f < 0 {
		f = 0
	}
	return int(f + 0.5), nil
}

// numAttr reads a numeric attribute, rounding to whole pixels.
func numAttr(v *ViewInfo, name string, fallback int) (int, error) {
	raw := v.Attr(name)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("blockrender: node %d: parse %s %q: %w", v.ID, name, raw, err)
	}
	return int(f + 0.5), nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ParseColor parses #RRGGBB or #AARRGGBB into a straight-alpha color.
func ParseColor(s string) (color.NRGBA, error) {
	if len(s) == 0 || s[0] != '#' || (len(s) != 7 && len(s) != 9) {
		return color.NRGBA{}, fmt.Errorf("parse color %q: want #RRGGBB or #AARRGGBB", s)
	}
	u, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	c := color.NRGBA{A: 0xff}
	if len(s) == 9 {
		c.A = uint8(u >> 24)
	}
	c.R = uint8(u >> 16)
	c.G = uint8(u >> 8)
	c.B = uint8(u)
	return c, nil
}

// premultiply converts a straight-alpha color to the premultiplied form
// draw.Over expects.
func premultiply(c color.NRGBA) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(c.A) / 0xff),
		G: uint8(uint16(c.G) * uint16(c.A) / 0xff),
		B: uint8(uint16(c.B) * uint16(c.A) / 0xff),
		A: c.A,
	}
}
