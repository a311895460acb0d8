// Package bubble animates a pool of labeled tokens bouncing inside a
// rectangular container. The engine is pure simulation: the host drives it
// one frame at a time and renders the token positions however it likes.
package bubble

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	minPool = 30
	maxPool = 100
	// tokens per unique label before clamping
	poolFactor = 7

	minSpeed = 0.8
	maxSpeed = 3.2
	minScale = 0.9
	maxScale = 1.7

	friction = 0.998

	placeholderCount = 8

	// approximate footprint of an unscaled token, used to keep spawns and
	// bounces inside the container
	baseTokenWidth  = 90.0
	baseTokenHeight = 36.0
)

// Bounds is the container rectangle tokens move in.
type Bounds struct {
	Width  float64
	Height float64
}

// Token is one floating label. Position is the top-left corner.
type Token struct {
	Label string
	X, Y  float64
	VX    float64
	VY    float64
	W, H  float64
}

// State is the engine lifecycle state.
type State int

const (
	Idle State = iota
	Running
)

// Engine owns the token pool and advances it frame by frame.
type Engine struct {
	state  State
	bounds Bounds
	tokens []Token
	rng    *rand.Rand
}

// New creates an idle engine using the given random source. Pass a seeded
// source for reproducible trajectories.
func New(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// State reports whether the engine is idle or running.
func (e *Engine) State() State { return e.state }

// Tokens returns the live pool. The slice is owned by the engine and only
// valid until the next Step or Stop.
func (e *Engine) Tokens() []Token { return e.tokens }

// PoolSize computes the token count for n unique labels.
func PoolSize(n int) int {
	size := n * poolFactor
	if size < minPool {
		size = minPool
	}
	if size > maxPool {
		size = maxPool
	}
	return size
}

// dedupe trims labels and drops empties and duplicates, keeping first-seen
// order.
func dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func placeholders() []string {
	out := make([]string, placeholderCount)
	for i := range out {
		out[i] = fmt.Sprintf("Ingredient %d", i+1)
	}
	return out
}

// Start activates the engine: it builds the pool from the labels and the
// container bounds and transitions to Running. Calling Start while running
// rebuilds the pool.
func (e *Engine) Start(labels []string, bounds Bounds) {
	unique := dedupe(labels)
	if len(unique) == 0 {
		unique = placeholders()
	}

	size := PoolSize(len(unique))
	e.bounds = bounds
	e.tokens = make([]Token, size)
	for i := range e.tokens {
		e.tokens[i] = e.spawn(unique[i%len(unique)])
	}
	e.state = Running
}

func (e *Engine) signedSpeed() float64 {
	v := minSpeed + e.rng.Float64()*(maxSpeed-minSpeed)
	if e.rng.Intn(2) == 0 {
		return -v
	}
	return v
}

func (e *Engine) spawn(label string) Token {
	scale := minScale + e.rng.Float64()*(maxScale-minScale)
	w := baseTokenWidth * scale
	h := baseTokenHeight * scale

	maxX := e.bounds.Width - w
	maxY := e.bounds.Height - h
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}

	return Token{
		Label: label,
		X:     e.rng.Float64() * maxX,
		Y:     e.rng.Float64() * maxY,
		VX:    e.signedSpeed(),
		VY:    e.signedSpeed(),
		W:     w,
		H:     h,
	}
}

// Step advances every token one frame: integrate position, reflect off the
// walls with the position clamped in-bounds, then apply friction. A no-op
// when idle.
func (e *Engine) Step() {
	if e.state != Running {
		return
	}
	for i := range e.tokens {
		t := &e.tokens[i]
		t.X += t.VX
		t.Y += t.VY

		maxX := e.bounds.Width - t.W
		maxY := e.bounds.Height - t.H
		if maxX < 0 {
			maxX = 0
		}
		if maxY < 0 {
			maxY = 0
		}

		if t.X <= 0 {
			t.X = 0
			t.VX = -t.VX
		} else if t.X >= maxX {
			t.X = maxX
			t.VX = -t.VX
		}
		if t.Y <= 0 {
			t.Y = 0
			t.VY = -t.VY
		} else if t.Y >= maxY {
			t.Y = maxY
			t.VY = -t.VY
		}

		t.VX *= friction
		t.VY *= friction
	}
}

// Resize updates the container bounds while running and clamps any token
// that the shrink left out-of-bounds.
func (e *Engine) Resize(bounds Bounds) {
	e.bounds = bounds
	if e.state != Running {
		return
	}
	for i := range e.tokens {
		t := &e.tokens[i]
		maxX := bounds.Width - t.W
		maxY := bounds.Height - t.H
		if maxX < 0 {
			maxX = 0
		}
		if maxY < 0 {
			maxY = 0
		}
		if t.X > maxX {
			t.X = maxX
		}
		if t.Y > maxY {
			t.Y = maxY
		}
	}
}

// Stop tears the pool down and returns to Idle.
func (e *Engine) Stop() {
	e.tokens = nil
	e.state = Idle
}
