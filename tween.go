package limelight

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// trackSpec animates one numeric property between two values.
type trackSpec struct {
	Property string  `json:"property"`
	From     float32 `json:"from"`
	To       float32 `json:"to"`
}

// animSpec is the JSON description of an animation resource.
type animSpec struct {
	Duration float32     `json:"duration"` // seconds
	Ease     string      `json:"ease,omitempty"`
	Tracks   []trackSpec `json:"tracks"`
}

// easeFuncs maps resource easing names to gween easing functions.
var easeFuncs = map[string]ease.TweenFunc{
	"":           ease.Linear,
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inExpo":     ease.InExpo,
	"outExpo":    ease.OutExpo,
	"inBack":     ease.InBack,
	"outBack":    ease.OutBack,
	"outBounce":  ease.OutBounce,
	"outElastic": ease.OutElastic,
}

// frameworkAnims is the built-in animation set, resolved when the
// framework flag is passed to Animate.
var frameworkAnims = map[string]animSpec{
	"fade_in": {Duration: 0.3, Ease: "outQuad",
		Tracks: []trackSpec{{Property: "alpha", From: 0, To: 1}}},
	"fade_out": {Duration: 0.3, Ease: "inQuad",
		Tracks: []trackSpec{{Property: "alpha", From: 1, To: 0}}},
	"slide_in_left": {Duration: 0.25, Ease: "outCubic",
		Tracks: []trackSpec{{Property: "offset-x", From: -64, To: 0}}},
	"slide_out_right": {Duration: 0.25, Ease: "inCubic",
		Tracks: []trackSpec{{Property: "offset-x", From: 0, To: 64}}},
	"drop_in": {Duration: 0.4, Ease: "outBounce",
		Tracks: []trackSpec{{Property: "offset-y", From: -48, To: 0}}},
	"zoom_in": {Duration: 0.3, Ease: "outBack", Tracks: []trackSpec{
		{Property: "alpha", From: 0, To: 1},
		{Property: "offset-y", From: 16, To: 0}}},
}

// defaultFrameRate is the sampling rate for tween curves, in frames per
// second of animation time.
const defaultFrameRate = 60

// TweenProvider is an [AnimationProvider] that samples gween easing curves
// into per-frame property transforms. It ships the built-in framework set
// (fade_in, fade_out, slide_in_left, slide_out_right, drop_in, zoom_in)
// and accepts user animations registered from JSON:
//
//	{"duration": 0.5, "ease": "outQuad",
//	 "tracks": [{"property": "alpha", "from": 0, "to": 1}]}
//
// Safe for concurrent use.
type TweenProvider struct {
	fps float32

	mu   sync.Mutex
	user map[string]animSpec
}

// NewTweenProvider creates a provider sampling at 60 frames per second.
func NewTweenProvider() *TweenProvider {
	return &TweenProvider{fps: defaultFrameRate, user: make(map[string]animSpec)}
}

// Register parses a JSON animation resource and stores it under name,
// replacing any previous registration.
func (p *TweenProvider) Register(name string, jsonData []byte) error {
	var spec animSpec
	if err := json.Unmarshal(jsonData, &spec); err != nil {
		return fmt.Errorf("parse animation %q: %w", name, err)
	}
	if err := validateSpec(spec); err != nil {
		return fmt.Errorf("parse animation %q: %w", name, err)
	}
	p.mu.Lock()
	p.user[name] = spec
	p.mu.Unlock()
	return nil
}

func validateSpec(spec animSpec) error {
	if spec.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", spec.Duration)
	}
	if len(spec.Tracks) == 0 {
		return fmt.Errorf("no tracks")
	}
	if _, ok := easeFuncs[spec.Ease]; !ok {
		return fmt.Errorf("unknown easing %q", spec.Ease)
	}
	for _, tr := range spec.Tracks {
		if tr.Property == "" {
			return fmt.Errorf("track with empty property")
		}
	}
	return nil
}

// Resolve samples the named animation into a fresh frame sequence.
// framework selects the built-in set; otherwise the user registry is
// consulted.
func (p *TweenProvider) Resolve(name string, framework bool) ([]Frame, error) {
	var spec animSpec
	var ok bool
	if framework {
		spec, ok = frameworkAnims[name]
	} else {
		p.mu.Lock()
		spec, ok = p.user[name]
		p.mu.Unlock()
	}
	if !ok {
		return nil, fmt.Errorf("unknown animation %q", name)
	}
	return sampleSpec(spec, p.fps), nil
}

// sampleSpec walks every track's tween in lockstep at the provider frame
// rate. The last frame always lands exactly on each track's end value
// (gween clamps once the tween finishes).
func sampleSpec(spec animSpec, fps float32) []Frame {
	fn := easeFuncs[spec.Ease]
	count := int(spec.Duration*fps + 0.5)
	if count < 1 {
		count = 1
	}
	tweens := make([]*gween.Tween, len(spec.Tracks))
	for i, tr := range spec.Tracks {
		tweens[i] = gween.New(tr.From, tr.To, spec.Duration, fn)
	}

	dt := 1 / fps
	frames := make([]Frame, count)
	for f := range frames {
		frame := make(Frame, len(spec.Tracks))
		for i, tr := range spec.Tracks {
			val, _ := tweens[i].Update(dt)
			frame[i] = PropertyChange{
				Name:  tr.Property,
				Value: strconv.FormatFloat(float64(val), 'f', -1, 32),
			}
		}
		frames[f] = frame
	}
	return frames
}
