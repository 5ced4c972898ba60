package limelight

import (
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testListener records animation callbacks. cancelAfter >= 0 makes
// IsCanceled report true once that many frames have been delivered.
type testListener struct {
	mu          sync.Mutex
	frames      int
	dones       []Result
	cancelAfter int
	onFrame     func(*Scene) // optional per-frame hook

	done chan struct{}
}

func newTestListener() *testListener {
	return &testListener{cancelAfter: -1, done: make(chan struct{}, 1)}
}

func (l *testListener) OnNewFrame(scene *Scene) {
	l.mu.Lock()
	l.frames++
	hook := l.onFrame
	l.mu.Unlock()
	if hook != nil {
		hook(scene)
	}
}

func (l *testListener) Done(res Result) {
	l.mu.Lock()
	l.dones = append(l.dones, res)
	l.mu.Unlock()
	select {
	case l.done <- struct{}{}:
	default:
	}
}

func (l *testListener) IsCanceled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancelAfter >= 0 && l.frames >= l.cancelAfter
}

func (l *testListener) frameCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

func (l *testListener) doneCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.dones)
}

// wait blocks until Done fires, then settles briefly so a buggy second
// Done would be observed by doneCount.
func (l *testListener) wait(t *testing.T) Result {
	t.Helper()
	select {
	case <-l.done:
	case <-time.After(5 * time.Second):
		t.Fatal("listener.Done was never invoked")
	}
	time.Sleep(10 * time.Millisecond)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dones[0]
}

// growAnim is a 3-frame user animation raising the target's height
// attribute to 30.
const growAnim = `{"duration": 0.05, "ease": "linear",
	"tracks": [{"property": "height", "from": 10, "to": 30}]}`

func newAnimScene(t *testing.T, cfg BridgeConfig) (*TweenProvider, *Scene) {
	t.Helper()
	anims := NewTweenProvider()
	if err := anims.Register("grow", []byte(growAnim)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	cfg.Animations = anims
	_, scene := newTestScene(t, cfg)
	return anims, scene
}

func TestAnimatePlaysAllFrames(t *testing.T) {
	_, scene := newAnimScene(t, BridgeConfig{})
	listener := newTestListener()
	box := scene.RootView().ChildAt(0)

	res := scene.Animate(box, "grow", false, listener)
	if !res.Ok() {
		t.Fatalf("Animate = %v, want SUCCESS", res)
	}
	final := listener.wait(t)
	if !final.Ok() {
		t.Fatalf("final result = %v, want SUCCESS", final)
	}
	if got := listener.frameCount(); got != 3 {
		t.Errorf("OnNewFrame called %d times, want 3", got)
	}
	if got := listener.doneCount(); got != 1 {
		t.Errorf("Done called %d times, want 1", got)
	}

	// The last frame landed exactly on the track's end value.
	after := findByID(scene.RootView(), box.ID)
	if got := after.Attr("height"); got != "30" {
		t.Errorf("height after animation = %q, want %q", got, "30")
	}
	if got := after.Bounds.Dy(); got != 30 {
		t.Errorf("height bounds = %d, want 30", got)
	}
}

func TestAnimateCanceledOnFirstPoll(t *testing.T) {
	_, scene := newAnimScene(t, BridgeConfig{})
	listener := newTestListener()
	listener.cancelAfter = 0 // canceled before any frame renders
	box := scene.RootView().ChildAt(0)

	if res := scene.Animate(box, "grow", false, listener); !res.Ok() {
		t.Fatalf("Animate = %v", res)
	}
	final := listener.wait(t)
	if got := listener.frameCount(); got > 1 {
		t.Errorf("OnNewFrame called %d times after immediate cancel, want at most 1", got)
	}
	if got := listener.doneCount(); got != 1 {
		t.Errorf("Done called %d times, want 1", got)
	}
	// Nothing rendered, so the final result carries the no-frames error.
	if final.Status != StatusErrorUnknown {
		t.Errorf("final status = %v, want ERROR_UNKNOWN", final.Status)
	}
}

func TestAnimateCanceledMidway(t *testing.T) {
	_, scene := newAnimScene(t, BridgeConfig{})
	listener := newTestListener()
	listener.cancelAfter = 1
	box := scene.RootView().ChildAt(0)

	if res := scene.Animate(box, "grow", false, listener); !res.Ok() {
		t.Fatalf("Animate = %v", res)
	}
	final := listener.wait(t)
	if got := listener.frameCount(); got != 1 {
		t.Errorf("OnNewFrame called %d times, want 1", got)
	}
	// One frame rendered successfully before the cancel.
	if !final.Ok() {
		t.Errorf("final status = %v, want SUCCESS (last rendered frame)", final.Status)
	}
}

func TestAnimateUnknownAnimation(t *testing.T) {
	_, scene := newAnimScene(t, BridgeConfig{})
	listener := newTestListener()
	box := scene.RootView().ChildAt(0)

	res := scene.Animate(box, "vanish", false, listener)
	if res.Status != StatusErrorUnknown {
		t.Fatalf("Animate(unknown) = %v, want ERROR_UNKNOWN", res.Status)
	}
	final := listener.wait(t)
	if final.Status != StatusErrorUnknown {
		t.Errorf("Done result = %v, want ERROR_UNKNOWN", final.Status)
	}
	if got := listener.frameCount(); got != 0 {
		t.Errorf("OnNewFrame called %d times for failed resolution, want 0", got)
	}
}

func TestAnimateFrameworkSet(t *testing.T) {
	_, scene := newAnimScene(t, BridgeConfig{})
	listener := newTestListener()
	box := scene.RootView().ChildAt(0)

	// "grow" is a user animation; with the framework flag it is unknown.
	res := scene.Animate(box, "grow", true, listener)
	if res.Status != StatusErrorUnknown {
		t.Fatalf("Animate(framework grow) = %v, want ERROR_UNKNOWN", res.Status)
	}
	<-listener.done

	listener2 := newTestListener()
	if res := scene.Animate(box, "fade_in", true, listener2); !res.Ok() {
		t.Fatalf("Animate(fade_in) = %v, want SUCCESS", res)
	}
	if final := listener2.wait(t); !final.Ok() {
		t.Errorf("fade_in final = %v, want SUCCESS", final)
	}
	after := findByID(scene.RootView(), box.ID)
	if got := after.Attr("alpha"); got != "1" {
		t.Errorf("alpha after fade_in = %q, want %q", got, "1")
	}
}

func TestAnimateUnknownTarget(t *testing.T) {
	_, scene := newAnimScene(t, BridgeConfig{})
	listener := newTestListener()

	res := scene.Animate(NewView("box"), "grow", false, listener)
	if res.Status != StatusNotFound {
		t.Fatalf("Animate(unknown target) = %v, want NOT_FOUND", res.Status)
	}
	if final := listener.wait(t); final.Status != StatusNotFound {
		t.Errorf("Done result = %v, want NOT_FOUND", final.Status)
	}
}

func TestAnimateWithoutProvider(t *testing.T) {
	_, scene := newTestScene(t, BridgeConfig{})
	listener := newTestListener()

	res := scene.Animate(scene.RootView(), "grow", false, listener)
	if res.Status != StatusNotImplemented {
		t.Fatalf("Animate = %v, want NOT_IMPLEMENTED", res.Status)
	}
	if final := listener.wait(t); final.Status != StatusNotImplemented {
		t.Errorf("Done result = %v, want NOT_IMPLEMENTED", final.Status)
	}
}

func TestAnimateNilListener(t *testing.T) {
	_, scene := newAnimScene(t, BridgeConfig{})
	if res := scene.Animate(scene.RootView(), "grow", false, nil); res.Status != StatusErrorUnknown {
		t.Errorf("Animate(nil listener) = %v, want ERROR_UNKNOWN", res.Status)
	}
}

func TestAnimateReusedBufferIsABorrow(t *testing.T) {
	pool := NewBufferPool()
	_, scene := newAnimScene(t, BridgeConfig{Images: pool})
	listener := newTestListener()

	var mu sync.Mutex
	var seen []*image.RGBA
	listener.onFrame = func(s *Scene) {
		mu.Lock()
		seen = append(seen, s.Image())
		mu.Unlock()
	}

	box := scene.RootView().ChildAt(0)
	if res := scene.Animate(box, "grow", false, listener); !res.Ok() {
		t.Fatalf("Animate = %v", res)
	}
	listener.wait(t)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) < 2 {
		t.Fatalf("saw %d frames, want at least 2", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] != seen[0] {
			t.Fatalf("frame %d delivered a different buffer; pool should reuse one", i)
		}
	}
}

func TestAnimateFrameDeliveredUnderLock(t *testing.T) {
	lock := NewRenderLock()
	pool := NewBufferPool()
	_, scene := newAnimScene(t, BridgeConfig{Lock: lock, Images: pool})
	listener := newTestListener()

	// While OnNewFrame runs, the render lock must still be held: another
	// scene rendering into the shared pool would otherwise clobber the
	// buffer mid-callback.
	var free atomic.Int32
	listener.onFrame = func(*Scene) {
		if lock.Acquire(0) {
			free.Add(1)
			lock.Release()
		}
	}

	box := scene.RootView().ChildAt(0)
	if res := scene.Animate(box, "grow", false, listener); !res.Ok() {
		t.Fatalf("Animate = %v", res)
	}
	listener.wait(t)

	if got := free.Load(); got != 0 {
		t.Errorf("render lock was free during %d OnNewFrame call(s), want 0", got)
	}
	if got := listener.frameCount(); got != 3 {
		t.Errorf("OnNewFrame called %d times, want 3", got)
	}
}

func TestAnimateDuringDisposeHalts(t *testing.T) {
	anims := NewTweenProvider()
	// A long animation: 2 seconds of frames.
	if err := anims.Register("long", []byte(`{"duration": 2,
		"tracks": [{"property": "height", "from": 10, "to": 30}]}`)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, scene := newTestScene(t, BridgeConfig{Animations: anims})
	listener := newTestListener()
	box := scene.RootView().ChildAt(0)

	if res := scene.Animate(box, "long", false, listener); !res.Ok() {
		t.Fatalf("Animate = %v", res)
	}
	// Let a frame or two through, then dispose. The playback must notice
	// at a frame boundary and Dispose must not wait out the 2 seconds.
	start := time.Now()
	time.Sleep(20 * time.Millisecond)
	scene.Dispose()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Dispose blocked %v on a running animation", elapsed)
	}
	if got := listener.doneCount(); got != 1 {
		t.Errorf("Done called %d times, want 1", got)
	}
}
