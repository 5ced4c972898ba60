package limelight

import (
	"image"
	"sync/atomic"
)

// viewIDCounter issues node IDs. Atomic because scenes inflate subtrees from
// multiple goroutines (async operations run on their own goroutine).
var viewIDCounter atomic.Uint32

func nextViewID() uint32 {
	return viewIDCounter.Add(1)
}

// ViewInfo is a node of the view tree: a tag, its attributes, the bounds
// computed by the last render, and the child list.
//
// Values handed out by a [Scene] (from [Scene.RootView] or as an insert
// payload) are detached deep copies; mutating them never affects session
// state. Identity across the session boundary is carried by ID, which is
// assigned at inflation time and stable across renders.
type ViewInfo struct {
	// ID identifies the node within its session. Zero only on nodes that
	// never went through inflation.
	ID uint32

	// Tag is the element name from the source document.
	Tag string

	// Bounds is the node's rectangle in scene coordinates, filled in by the
	// rendering backend. Zero before the first successful render.
	Bounds image.Rectangle

	// Cookie is backend-private per-node data. Carried verbatim through
	// clones and renders; the session never interprets it.
	Cookie any

	attrs    map[string]string
	children []*ViewInfo
}

// NewView creates a detached node with the given tag and a fresh ID.
func NewView(tag string) *ViewInfo {
	return &ViewInfo{ID: nextViewID(), Tag: tag}
}

// Attr returns the value of the named attribute, or "" if unset.
func (v *ViewInfo) Attr(name string) string {
	return v.attrs[name]
}

// SetAttr sets an attribute on this node.
func (v *ViewInfo) SetAttr(name, value string) {
	if v.attrs == nil {
		v.attrs = make(map[string]string, 4)
	}
	v.attrs[name] = value
}

// Attrs returns a copy of the node's attribute map.
func (v *ViewInfo) Attrs() map[string]string {
	out := make(map[string]string, len(v.attrs))
	for k, val := range v.attrs {
		out[k] = val
	}
	return out
}

// Children returns the child list. The returned slice MUST NOT be mutated
// by the caller; use the Scene mutation operations instead.
func (v *ViewInfo) Children() []*ViewInfo {
	return v.children
}

// NumChildren returns the number of children.
func (v *ViewInfo) NumChildren() int {
	return len(v.children)
}

// ChildAt returns the child at the given index, or nil if out of range.
func (v *ViewInfo) ChildAt(index int) *ViewInfo {
	if index < 0 || index >= len(v.children) {
		return nil
	}
	return v.children[index]
}

// AddChild appends child to this node's children.
func (v *ViewInfo) AddChild(child *ViewInfo) {
	v.children = append(v.children, child)
}

// insertChildAt inserts child at index. index must be in [0, len(children)];
// callers validate against the -1-means-append convention first.
func (v *ViewInfo) insertChildAt(child *ViewInfo, index int) {
	v.children = append(v.children, nil)
	copy(v.children[index+1:], v.children[index:])
	v.children[index] = child
}

// removeChild removes child from this node's child list. Uses copy+nil so
// the backing array does not retain a dangling pointer. Reports whether the
// child was present.
func (v *ViewInfo) removeChild(child *ViewInfo) bool {
	for i, c := range v.children {
		if c == child {
			copy(v.children[i:], v.children[i+1:])
			v.children[len(v.children)-1] = nil
			v.children = v.children[:len(v.children)-1]
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the subtree rooted at v. IDs, tags, bounds,
// cookies, and attributes are all copied; the clone shares no mutable state
// with the original.
func (v *ViewInfo) Clone() *ViewInfo {
	if v == nil {
		return nil
	}
	out := &ViewInfo{
		ID:     v.ID,
		Tag:    v.Tag,
		Bounds: v.Bounds,
		Cookie: v.Cookie,
	}
	if len(v.attrs) > 0 {
		out.attrs = make(map[string]string, len(v.attrs))
		for k, val := range v.attrs {
			out.attrs[k] = val
		}
	}
	if len(v.children) > 0 {
		out.children = make([]*ViewInfo, len(v.children))
		for i, c := range v.children {
			out.children[i] = c.Clone()
		}
	}
	return out
}

// findByID returns the node with the given ID in the subtree rooted at v,
// or nil if absent.
func findByID(v *ViewInfo, id uint32) *ViewInfo {
	if v == nil || id == 0 {
		return nil
	}
	if v.ID == id {
		return v
	}
	for _, c := range v.children {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// findParentOf returns the parent of the node with the given ID, or nil if
// the node is absent or is the root itself.
func findParentOf(v *ViewInfo, id uint32) *ViewInfo {
	if v == nil {
		return nil
	}
	for _, c := range v.children {
		if c.ID == id {
			return v
		}
		if p := findParentOf(c, id); p != nil {
			return p
		}
	}
	return nil
}

// PropertyChange is one staged attribute edit, applied to its node at the
// next render.
type PropertyChange struct {
	NodeID uint32
	Name   string
	Value  string
}
