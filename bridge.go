package limelight

import (
	"errors"
	"time"
)

// DefaultTimeout is the render-lock acquisition timeout used by operations
// that do not take an explicit one.
const DefaultTimeout = 250 * time.Millisecond

// BridgeConfig configures a [Bridge]. Backend is required; everything else
// is optional.
type BridgeConfig struct {
	// Backend is the shared rendering backend.
	Backend RenderBackend

	// Trees inflates serialized subtrees for CreateScene and InsertChild.
	// Without one, those operations report StatusNotImplemented.
	Trees TreeProvider

	// Animations resolves animation names for Animate. Without one, Animate
	// reports StatusNotImplemented.
	Animations AnimationProvider

	// Images, when set, supplies the raster buffer for each render. A
	// factory that reuses one buffer makes animation frames a single-buffer
	// borrow: the image is valid only during OnNewFrame.
	Images ImageFactory

	// Lock overrides the render lock. Leave nil for the default. Share one
	// lock across bridges when they front the same backend resource.
	Lock RenderLock
}

// Bridge is the entry point of the rendering session API. It owns the
// backend, the collaborating providers, and the exclusive [RenderLock] that
// serializes every render across all scenes created from it.
type Bridge struct {
	backend RenderBackend
	trees   TreeProvider
	anims   AnimationProvider
	images  ImageFactory
	lock    RenderLock
}

// NewBridge creates a bridge from cfg. Returns an error if no backend is
// configured.
func NewBridge(cfg BridgeConfig) (*Bridge, error) {
	if cfg.Backend == nil {
		return nil, errors.New("limelight: BridgeConfig.Backend is required")
	}
	lock := cfg.Lock
	if lock == nil {
		lock = NewRenderLock()
	}
	return &Bridge{
		backend: cfg.Backend,
		trees:   cfg.Trees,
		anims:   cfg.Animations,
		images:  cfg.Images,
		lock:    lock,
	}, nil
}

// SceneParams describes a scene to create.
type SceneParams struct {
	// Width and Height are the canvas size in pixels.
	Width, Height int

	// Timeout is the scene's default render-lock timeout. Zero means
	// [DefaultTimeout].
	Timeout time.Duration

	// Source is the serialized root layout document, inflated through the
	// bridge's TreeProvider.
	Source []byte
}

// CreateScene inflates params.Source, creates a session bound to the
// resulting tree, and performs the initial render. The scene is returned
// together with the initial render's result; on inflation failure the
// scene is nil.
func (b *Bridge) CreateScene(params SceneParams) (*Scene, Result) {
	if b.trees == nil {
		return nil, failf(StatusNotImplemented, "no tree provider configured")
	}
	root, err := b.trees.Inflate(params.Source)
	if err != nil {
		return nil, failf(StatusErrorUnknown, "inflate scene: %v", err)
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Scene{
		bridge:  b,
		width:   params.Width,
		height:  params.Height,
		timeout: timeout,
		root:    root,
		last:    success,
	}
	res := s.RenderTimeout(timeout)
	Logger().Debug("scene created",
		"width", params.Width, "height", params.Height, "result", res.String())
	return s, res
}
