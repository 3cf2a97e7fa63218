// Package frame paces the cooperative render loop.
package frame

import (
	"context"
	"time"

	"github.com/atomicstack/node-browser/internal/logging/events"
)

// DefaultFPS is the target frame rate.
const DefaultFPS = 60

// Pacer keeps frames at a fixed interval. When a frame runs long the next one
// starts immediately; missed frames are never replayed.
type Pacer struct {
	interval time.Duration
	now      func() time.Time

	start    time.Time
	frames   uint64
	overruns uint64
}

// NewPacer returns a pacer for fps frames per second. Non-positive values
// fall back to DefaultFPS.
func NewPacer(fps int) *Pacer {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Pacer{interval: time.Second / time.Duration(fps), now: time.Now}
}

func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Begin marks the start of a frame.
func (p *Pacer) Begin() {
	p.start = p.now()
	p.frames++
}

// Remaining returns how long to wait before the next frame should begin.
func (p *Pacer) Remaining() time.Duration {
	elapsed := p.now().Sub(p.start)
	wait := p.interval - elapsed
	if wait <= 0 {
		p.overruns++
		events.Frame.Overrun(p.frames, elapsed.Milliseconds())
		return 0
	}
	return wait
}

// Frames returns how many frames have begun.
func (p *Pacer) Frames() uint64 {
	return p.frames
}

// Overruns returns how many frames exceeded the interval.
func (p *Pacer) Overruns() uint64 {
	return p.overruns
}

// Run calls fn once per frame until ctx is done or fn returns false.
func Run(ctx context.Context, p *Pacer, fn func() bool) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		p.Begin()
		if !fn() {
			return nil
		}
		timer.Reset(p.Remaining())
	}
}
