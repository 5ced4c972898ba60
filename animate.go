package limelight

import "sync/atomic"

// Animation playback states. Transitions: idle -> running -> canceled|done.
// The terminal transition is a CAS, which is what guarantees the listener's
// Done callback fires exactly once.
const (
	animIdle int32 = iota
	animRunning
	animCanceled
	animDone
)

// animation is one playback task: target node, resolved frame sequence,
// listener, and progress.
type animation struct {
	scene    *Scene
	targetID uint32
	name     string
	frames   []Frame
	listener AnimationListener
	state    atomic.Int32
	frame    int // next frame index, for diagnostics
}

// Animate resolves animationName and plays it on target as an asynchronous
// task: one frame at a time, each rendered under the shared render lock and
// delivered synchronously through listener.OnNewFrame. framework selects
// the built-in animation set of the provider over user-registered ones.
//
// Cancellation is cooperative: listener.IsCanceled is polled once per frame
// boundary, never mid-frame. However playback ends (played out, canceled,
// failed frame, resolution failure), listener.Done receives the final
// Result exactly once. That result carries the last rendered frame's
// status, or StatusErrorUnknown if no frame was ever rendered.
//
// If the bridge has a reusing [ImageFactory], the image seen inside
// OnNewFrame is a borrow: its contents are undefined as soon as the
// callback returns.
func (s *Scene) Animate(target *ViewInfo, animationName string, framework bool, listener AnimationListener) Result {
	if listener == nil {
		return s.setResult(failf(StatusErrorUnknown, "animate: nil listener"))
	}
	if s.bridge.anims == nil {
		res := s.setResult(failf(StatusNotImplemented, "animate: no animation provider configured"))
		listener.Done(res)
		return res
	}
	if !s.begin() {
		res := failf(StatusDisposed, "animate on disposed scene")
		s.setResult(res)
		listener.Done(res)
		return res
	}

	a := &animation{scene: s, name: animationName, listener: listener}
	if target != nil {
		a.targetID = target.ID
	}

	s.mu.Lock()
	known := findByID(s.root, a.targetID) != nil
	s.mu.Unlock()
	if !known {
		s.end()
		return a.abort(failf(StatusNotFound, "animate: target not in tree"))
	}

	frames, err := s.bridge.anims.Resolve(animationName, framework)
	if err != nil {
		s.end()
		return a.abort(failf(StatusErrorUnknown, "animate %q: %v", animationName, err))
	}
	a.frames = frames

	a.state.Store(animRunning)
	go a.run()
	return success
}

// abort moves a not-yet-started animation straight to its terminal state
// and notifies the listener.
func (a *animation) abort(res Result) Result {
	a.state.Store(animDone)
	a.scene.setResult(res)
	a.listener.Done(res)
	return res
}

// run plays the frame sequence. Runs on its own goroutine; registered as an
// in-flight operation so Dispose drains it.
func (a *animation) run() {
	defer a.scene.end()

	last := failf(StatusErrorUnknown, "animate %q: no frames rendered", a.name)
	for _, frame := range a.frames {
		// Frame boundary: the only cancellation points. A dispose request
		// counts as cancellation so the drain barrier stays bounded.
		if a.listener.IsCanceled() || a.scene.disposing() {
			a.finish(animCanceled, last)
			return
		}
		res := a.renderFrame(frame)
		if !res.Ok() {
			// A failed frame halts playback; its status is what Done sees.
			a.finish(animDone, res)
			return
		}
		last = res
	}
	a.finish(animDone, last)
}

// renderFrame stages one frame's property transform on the target, renders,
// and delivers the frame, all under the render lock. Holding the lock
// through OnNewFrame keeps a pooled image buffer stable for the whole
// callback: no other scene can render into it until the callback returns.
func (a *animation) renderFrame(frame Frame) Result {
	s := a.scene
	if !s.bridge.lock.Acquire(s.timeout) {
		return failf(StatusErrorTimeout, "animate %q: render lock not acquired within %v", a.name, s.timeout)
	}
	defer s.bridge.lock.Release()

	s.mu.Lock()
	if findByID(s.root, a.targetID) == nil {
		s.mu.Unlock()
		return failf(StatusNotFound, "animate %q: target left the tree", a.name)
	}
	for _, pc := range frame {
		pc.NodeID = a.targetID
		s.staged = append(s.staged, pc)
	}
	s.mu.Unlock()

	res := s.renderLocked()
	if res.Ok() {
		a.frame++
		a.listener.OnNewFrame(s)
	}
	return res
}

// finish performs the terminal transition and delivers Done. The CAS on
// the running state makes a second finish a no-op, so Done is invoked at
// most once per playback.
func (a *animation) finish(terminal int32, res Result) {
	if !a.state.CompareAndSwap(animRunning, terminal) {
		return
	}
	Logger().Debug("animation finished",
		"name", a.name, "frames", a.frame, "canceled", terminal == animCanceled, "status", res.Status.String())
	a.scene.setResult(res)
	a.listener.Done(res)
}
