// Package gesture turns device-orientation samples into a "flip to generate"
// trigger. Holding the device face-down for long enough fires a callback,
// with a refractory window so a single flip cannot double-fire.
package gesture

import (
	"math"
	"time"
)

const (
	// face-down region
	betaThreshold  = 150.0
	gammaThreshold = 45.0

	// HoldDuration is how long the face-down orientation must be sustained.
	HoldDuration = 700 * time.Millisecond
	// Cooldown is the minimum spacing between two triggers.
	Cooldown = 2000 * time.Millisecond
)

// Sample is one orientation reading in degrees.
type Sample struct {
	Beta  float64
	Gamma float64
}

// FaceDown reports whether the sample lies in the face-down region.
func (s Sample) FaceDown() bool {
	return math.Abs(s.Beta) > betaThreshold && math.Abs(s.Gamma) < gammaThreshold
}

// Subscription delivers orientation samples while active. The host injects
// the platform event source behind this interface.
type Subscription interface {
	// Subscribe starts delivery to fn and returns an unsubscribe function.
	Subscribe(fn func(Sample)) (cancel func())
}

// Detector debounces a sustained face-down hold into a single trigger.
// It is not safe for concurrent use; samples are expected to arrive on one
// event loop, matching the platform orientation APIs.
type Detector struct {
	now     func() time.Time
	trigger func()

	holdStart time.Time
	holding   bool
	lastFire  time.Time
	fired     bool

	cancel func()
}

// New creates a detector that calls trigger when the gesture completes.
// now is injectable for tests; pass time.Now in production.
func New(now func() time.Time, trigger func()) *Detector {
	return &Detector{now: now, trigger: trigger}
}

// Enable attaches the detector to the sample source. Calling Enable twice
// replaces the previous subscription.
func (d *Detector) Enable(src Subscription) {
	d.Disable()
	d.cancel = src.Subscribe(d.Observe)
}

// Disable detaches from the sample source and clears hold state.
func (d *Detector) Disable() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.holding = false
}

// Observe consumes one orientation sample.
func (d *Detector) Observe(s Sample) {
	now := d.now()

	if !s.FaceDown() {
		d.holding = false
		return
	}

	if !d.holding {
		d.holding = true
		d.holdStart = now
		return
	}

	if now.Sub(d.holdStart) <= HoldDuration {
		return
	}
	if d.fired && now.Sub(d.lastFire) < Cooldown {
		return
	}

	d.lastFire = now
	d.fired = true
	d.holding = false
	d.trigger()
}

// ResetVisibility clears hold and cooldown state. Call it when the hosting
// surface is hidden or shown so a stale hold cannot fire on return.
func (d *Detector) ResetVisibility() {
	d.holding = false
	d.fired = false
}
