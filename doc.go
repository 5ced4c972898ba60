// Package limelight is a rendering-session API for interactively mutating
// and re-rendering a UI layout tree against a single shared rendering
// backend.
//
// A [Bridge] owns the backend, the collaborating providers, and the one
// process-wide [RenderLock] that serializes every render. Scenes are
// created from the bridge and hold a view tree plus the raster output of
// the last render:
//
//	bridge, err := limelight.NewBridge(limelight.BridgeConfig{
//		Backend: limelight.NewBlockBackend(),
//		Trees:   limelight.NewXMLProvider(),
//	})
//	scene, res := bridge.CreateScene(limelight.SceneParams{
//		Width: 320, Height: 240,
//		Source: []byte(`<column background="#202020"><box height="40"/></column>`),
//	})
//	if res.Status == limelight.StatusSuccess {
//		img := scene.Image() // raster of the initial render
//	}
//
// # Operations and results
//
// Every operation returns a [Result]; no call panics or returns an error
// across the session boundary. Lock timeouts, unknown nodes, disposed
// sessions, and backend faults are all values of [Status].
//
// Mutations ([Scene.SetProperty], [Scene.InsertChild], [Scene.MoveChild],
// [Scene.RemoveChild]) address nodes through [ViewInfo] handles. Handles
// returned by the session are detached deep copies; identity is carried by
// [ViewInfo.ID], so a handle stays valid across renders until its node is
// removed from the tree.
//
// # Synchronous and asynchronous variants
//
// InsertChild, MoveChild, and RemoveChild come in a blocking form and an
// Async form that runs on its own goroutine and reports through an
// [AnimationListener]. [Scene.Animate] is always asynchronous: it plays a
// resolved animation frame by frame, rendering each frame under the shared
// lock and delivering it via AnimationListener.OnNewFrame. Cancellation is
// cooperative and polled once per frame boundary; the listener's Done
// method is invoked exactly once however playback ends.
//
// # Disposal
//
// [Scene.Dispose] is terminal and idempotent. It waits for in-flight
// operations on the scene to drain before returning; afterwards every
// operation reports [StatusDisposed].
package limelight
