package limelight

import "image"

// RenderRequest carries one render's inputs to the backend.
type RenderRequest struct {
	// Root is the session's current tree. The backend reads it and must not
	// retain references into it past the Render call.
	Root *ViewInfo

	// Staged holds the property changes accumulated since the last render,
	// in staging order. The backend applies them to the tree it returns.
	Staged []PropertyChange

	// Width and Height are the scene's canvas size in pixels.
	Width, Height int

	// Target, when non-nil, is a reusable buffer supplied by an
	// [ImageFactory]; the backend draws into it and returns it. When nil
	// the backend allocates a fresh buffer.
	Target *image.RGBA
}

// RenderBackend is the contract for the shared rendering backend. Given the
// current tree and the property changes staged since the last render, it
// lays the tree out and rasterizes it.
//
// Render must return a fresh tree root: node IDs, tags, attributes (with
// staged changes applied), and cookies are preserved, and Bounds is filled
// for every node. The session replaces its root wholesale with the returned
// tree on success.
//
// The session holds the process-wide [RenderLock] around every Render call,
// so implementations never observe concurrent invocations.
type RenderBackend interface {
	Render(req *RenderRequest) (*ViewInfo, *image.RGBA, error)
}

// PropertySource is an optional RenderBackend capability reporting the
// default attribute values a backend assumes for a node's tag.
// [Scene.DefaultProperties] returns an empty map for backends that do not
// implement it.
type PropertySource interface {
	DefaultProperties(node *ViewInfo) map[string]string
}

// TreeProvider converts a serialized subtree description into a view tree.
// Inflate re-parses src on every call, so a provider value can be shared
// and a source document inflated any number of times.
type TreeProvider interface {
	Inflate(src []byte) (*ViewInfo, error)
}

// Frame is the property transform for one animation frame: the attribute
// values to stage on the target node before rendering that frame. NodeID is
// filled in by the session.
type Frame []PropertyChange

// AnimationProvider resolves an animation name to its frame sequence.
// framework selects the built-in animation set over user-registered ones.
// The returned slice is single-use: each Resolve call yields a fresh,
// finite, ordered sequence.
type AnimationProvider interface {
	Resolve(name string, framework bool) ([]Frame, error)
}

// ImageFactory supplies the raster buffer for a render. A factory may
// return the same buffer on every call; consumers of animation frames must
// then treat the image as valid only for the duration of the OnNewFrame
// callback (single-buffer borrow).
//
// A nil factory on the bridge means every render allocates a fresh buffer.
type ImageFactory interface {
	Image(width, height int) *image.RGBA
}

// AnimationListener receives the output of asynchronous operations.
//
// OnNewFrame is called synchronously on the delivering goroutine after each
// animation frame renders; query the scene for the image inside the
// callback. The render lock is held for the duration of the callback, so
// the image stays stable even with a reusing factory; do not start renders
// from inside it. Done delivers the final Result exactly once, however the
// operation ends. IsCanceled is polled once per frame boundary; returning
// true halts playback cooperatively.
//
// Async mutation variants (InsertChildAsync and friends) deliver Done only.
type AnimationListener interface {
	OnNewFrame(scene *Scene)
	Done(result Result)
	IsCanceled() bool
}
