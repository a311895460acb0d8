package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var (
	faceDown = Sample{Beta: 170, Gamma: 10}
	faceUp   = Sample{Beta: 0, Gamma: 0}
)

func newTestDetector() (*Detector, *fakeClock, *int) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	fires := 0
	d := New(clock.now, func() { fires++ })
	return d, clock, &fires
}

func TestSample_FaceDown(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		want   bool
	}{
		{"flat on back", Sample{Beta: 170, Gamma: 0}, true},
		{"negative beta", Sample{Beta: -160, Gamma: -30}, true},
		{"upright", Sample{Beta: 0, Gamma: 0}, false},
		{"beta at threshold", Sample{Beta: 150, Gamma: 0}, false},
		{"tilted sideways", Sample{Beta: 170, Gamma: 60}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sample.FaceDown())
		})
	}
}

func TestDetector_ShortHoldDoesNotFire(t *testing.T) {
	d, clock, fires := newTestDetector()

	d.Observe(faceDown)
	clock.advance(500 * time.Millisecond)
	d.Observe(faceDown)
	clock.advance(100 * time.Millisecond)
	d.Observe(faceUp)

	assert.Equal(t, 0, *fires)
}

func TestDetector_SustainedHoldFiresOnce(t *testing.T) {
	d, clock, fires := newTestDetector()

	d.Observe(faceDown)
	clock.advance(800 * time.Millisecond)
	d.Observe(faceDown)

	assert.Equal(t, 1, *fires)

	// Hold state resets on fire; the very next sample starts a new hold and
	// must not fire inside the cooldown window.
	clock.advance(100 * time.Millisecond)
	d.Observe(faceDown)
	clock.advance(800 * time.Millisecond)
	d.Observe(faceDown)
	assert.Equal(t, 1, *fires)
}

func TestDetector_FiresAgainAfterCooldown(t *testing.T) {
	d, clock, fires := newTestDetector()

	d.Observe(faceDown)
	clock.advance(800 * time.Millisecond)
	d.Observe(faceDown)
	require.Equal(t, 1, *fires)

	clock.advance(2500 * time.Millisecond)
	d.Observe(faceDown)
	clock.advance(800 * time.Millisecond)
	d.Observe(faceDown)

	assert.Equal(t, 2, *fires)
}

func TestDetector_LeavingRegionResetsHold(t *testing.T) {
	d, clock, fires := newTestDetector()

	d.Observe(faceDown)
	clock.advance(600 * time.Millisecond)
	d.Observe(faceUp)
	clock.advance(600 * time.Millisecond)
	d.Observe(faceDown)
	clock.advance(600 * time.Millisecond)
	d.Observe(faceDown)

	// Neither stretch exceeded the hold duration on its own.
	assert.Equal(t, 0, *fires)
}

func TestDetector_VisibilityChangeResetsState(t *testing.T) {
	d, clock, fires := newTestDetector()

	d.Observe(faceDown)
	clock.advance(600 * time.Millisecond)
	d.ResetVisibility()
	clock.advance(600 * time.Millisecond)
	d.Observe(faceDown)

	// The pre-hide hold must not count toward the post-show hold.
	assert.Equal(t, 0, *fires)

	clock.advance(800 * time.Millisecond)
	d.Observe(faceDown)
	assert.Equal(t, 1, *fires)
}

type fakeSource struct {
	fn       func(Sample)
	attached int
}

func (s *fakeSource) Subscribe(fn func(Sample)) func() {
	s.fn = fn
	s.attached++
	return func() { s.fn = nil }
}

func (s *fakeSource) emit(sample Sample) {
	if s.fn != nil {
		s.fn(sample)
	}
}

func TestDetector_EnableDisableLifecycle(t *testing.T) {
	d, clock, fires := newTestDetector()
	src := &fakeSource{}

	d.Enable(src)
	require.Equal(t, 1, src.attached)

	src.emit(faceDown)
	clock.advance(800 * time.Millisecond)
	src.emit(faceDown)
	assert.Equal(t, 1, *fires)

	d.Disable()
	assert.Nil(t, src.fn)

	// Samples after detach go nowhere.
	src.emit(faceDown)
	clock.advance(800 * time.Millisecond)
	src.emit(faceDown)
	assert.Equal(t, 1, *fires)
}
