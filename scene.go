package limelight

import (
	"image"
	"sync"
	"time"
)

// Scene is a rendering session: one view tree plus the raster output of its
// most recent render.
//
// Synchronous operations run on the caller's goroutine; Async variants and
// Animate run on a goroutine per call. Every operation, from every scene,
// serializes through the bridge's [RenderLock] before touching the backend
// or the tree.
type Scene struct {
	bridge  *Bridge
	width   int
	height  int
	timeout time.Duration

	// mu guards the disposed flag, the staged change list, structural tree
	// edits, and the root/image/last-result swap. Tree reads of any
	// duration (backend renders, clones) are additionally covered by the
	// render lock, which every structural mutation holds.
	mu       sync.Mutex
	disposed bool
	inflight sync.WaitGroup

	// root is the live tree the next render will draw; structural
	// mutations edit it in place. rendered is the snapshot of the last
	// render, replaced only inside renderLocked, so RootView and Image
	// always describe the same render even while edits are pending.
	root     *ViewInfo
	rendered *ViewInfo
	img      *image.RGBA
	last     Result
	staged   []PropertyChange
}

// --- Accessors ---

// Result returns the result of the last operation executed on the scene.
func (s *Scene) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RootView returns a deep copy of the view tree root, or nil if the last
// render failed. The copy is the caller's to mutate; it reflects the tree
// as of the last render (pending edits such as a RemoveChild are not
// visible until rendered) and is superseded by the next Render or Dispose.
func (s *Scene) RootView() *ViewInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rendered.Clone()
}

// Image returns the raster of the last render, or nil if it failed.
// RootView and Image always agree: both nil or both set.
//
// Without an [ImageFactory] the buffer is freshly allocated per render and
// the caller may keep it. With a reusing factory the buffer contents are
// overwritten by the next render.
func (s *Scene) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// DefaultProperties returns the backend's default attribute values for the
// given node's tag, or an empty map if the backend does not report them or
// the node is unknown. Never mutates session state.
func (s *Scene) DefaultProperties(node *ViewInfo) map[string]string {
	src, ok := s.bridge.backend.(PropertySource)
	if !ok || node == nil {
		return map[string]string{}
	}
	s.mu.Lock()
	target := findByID(s.root, node.ID)
	s.mu.Unlock()
	if target == nil {
		return map[string]string{}
	}
	props := src.DefaultProperties(target)
	if props == nil {
		props = map[string]string{}
	}
	return props
}

// --- Operation executor ---

// begin registers an in-flight operation. Reports false if the scene is
// disposed; the operation must not proceed.
func (s *Scene) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	s.inflight.Add(1)
	return true
}

func (s *Scene) end() {
	s.inflight.Done()
}

// disposing reports whether Dispose has been requested. Long-running tasks
// poll this at frame boundaries so the dispose drain barrier stays bounded.
func (s *Scene) disposing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// setResult records res as the scene's last operation result.
func (s *Scene) setResult(res Result) Result {
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res
}

// exec runs op synchronously under the render lock, bounded by timeout.
// Handles the disposed check, the timeout short-circuit, and last-result
// bookkeeping.
func (s *Scene) exec(name string, timeout time.Duration, op func() Result) Result {
	if !s.begin() {
		return s.setResult(failf(StatusDisposed, "%s on disposed scene", name))
	}
	defer s.end()
	if !s.bridge.lock.Acquire(timeout) {
		Logger().Debug("render lock timeout", "op", name, "timeout", timeout)
		return s.setResult(failf(StatusErrorTimeout, "%s: render lock not acquired within %v", name, timeout))
	}
	defer s.bridge.lock.Release()
	res := op()
	Logger().Debug("operation finished", "op", name, "status", res.Status.String())
	return s.setResult(res)
}

// execAsync runs op on its own goroutine and delivers the final result
// through listener.Done exactly once. The immediate return value only
// reports whether the task was spawned.
func (s *Scene) execAsync(name string, listener AnimationListener, op func() Result) Result {
	if listener == nil {
		return s.setResult(failf(StatusErrorUnknown, "%s: nil listener", name))
	}
	if !s.begin() {
		res := failf(StatusDisposed, "%s on disposed scene", name)
		s.setResult(res)
		listener.Done(res)
		return res
	}
	go func() {
		defer s.end()
		var res Result
		if !s.bridge.lock.Acquire(s.timeout) {
			res = failf(StatusErrorTimeout, "%s: render lock not acquired within %v", name, s.timeout)
		} else {
			res = op()
			s.bridge.lock.Release()
		}
		Logger().Debug("async operation finished", "op", name, "status", res.Status.String())
		s.setResult(res)
		listener.Done(res)
	}()
	return success
}

// --- Render ---

// Render re-renders the current tree with the scene's default timeout.
func (s *Scene) Render() Result {
	return s.RenderTimeout(s.timeout)
}

// RenderTimeout re-renders the current tree, waiting up to timeout for the
// shared render lock. On lock expiry it returns StatusErrorTimeout and
// leaves the previous root and image untouched. On backend failure the
// root and image are cleared together; on success both are replaced
// together with the new pair.
func (s *Scene) RenderTimeout(timeout time.Duration) Result {
	return s.exec("render", timeout, s.renderLocked)
}

// renderLocked performs one render. Caller holds the render lock.
func (s *Scene) renderLocked() Result {
	s.mu.Lock()
	req := &RenderRequest{
		Root:   s.root,
		Staged: s.staged,
		Width:  s.width,
		Height: s.height,
	}
	s.mu.Unlock()

	if s.bridge.images != nil {
		req.Target = s.bridge.images.Image(s.width, s.height)
	}

	root, img, err := s.bridge.backend.Render(req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Never expose a mismatched pair: clear both on failure.
		s.root = nil
		s.rendered = nil
		s.img = nil
		return failf(StatusErrorUnknown, "render: %v", err)
	}
	// The snapshot is a separate copy so later in-place edits of the live
	// tree stay invisible to the accessors until the next render.
	s.root = root
	s.rendered = root.Clone()
	s.img = img
	s.staged = s.staged[:0]
	return success
}

// --- Disposal ---

// Dispose discards the session. Terminal and idempotent: the first call
// waits for every in-flight operation on this scene to finish before
// returning, later calls are no-ops, and all operations after the first
// call report StatusDisposed. Running animations observe the dispose
// request at their next frame boundary and halt.
func (s *Scene) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()

	// Drain barrier: no operation may hold or wait on the render lock on
	// this scene's behalf once Dispose returns.
	s.inflight.Wait()

	s.mu.Lock()
	s.root = nil
	s.rendered = nil
	s.img = nil
	s.staged = nil
	s.mu.Unlock()
	Logger().Debug("scene disposed")
}
