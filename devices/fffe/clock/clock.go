// Package clock implements the software clock which paces CPU execution.
package clock

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/hexaflex/ls8/devices"
)

// ErrRunning is returned by Run when the clock is already ticking.
var ErrRunning = errors.New("clock is already running")

// Stepper performs a single execution step. Step returns io.EOF once
// execution has halted.
type Stepper interface {
	Step() error
}

// StepFunc adapts an ordinary function to the Stepper interface.
type StepFunc func() error

// Step calls f.
func (f StepFunc) Step() error { return f() }

// Clock invokes one step per tick. Steps never overlap: they are all
// issued from the goroutine calling Run.
type Clock struct {
	interval time.Duration // Time between ticks; zero runs unpaced.
	running  atomic.Bool   // Is Run issuing steps?
	cycles   atomic.Uint64 // Steps issued since Startup.
	start    atomic.Int64  // Unix nano timestamp at which Run started.
}

var _ devices.Device = &Clock{}

// New creates a clock ticking at the given interval.
// An interval of zero issues steps as fast as the host allows.
func New(interval time.Duration) *Clock {
	return &Clock{interval: interval}
}

// ID returns the clock's device ID.
func (c *Clock) ID() devices.ID {
	return devices.NewID(0xfffe, 0x0005)
}

// Startup resets the cycle counter.
func (c *Clock) Startup() error {
	c.cycles.Store(0)
	return nil
}

// Shutdown stops the clock.
func (c *Clock) Shutdown() error {
	c.Stop()
	return nil
}

// Running returns true while Run is issuing steps.
func (c *Clock) Running() bool {
	return c.running.Load()
}

// Stop requests the clock to stop ticking. The step in flight, if any,
// completes first. Stopping a stopped clock is a no-op.
func (c *Clock) Stop() {
	c.running.Store(false)
}

// Cycles returns the number of steps issued since Startup.
func (c *Clock) Cycles() uint64 {
	return c.cycles.Load()
}

// Frequency returns the effective step rate of the current or last run in herz.
func (c *Clock) Frequency() float64 {
	start := c.start.Load()
	if start == 0 {
		return 0
	}

	elapsed := time.Since(time.Unix(0, start)).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(c.cycles.Load()) / elapsed
}

// Run issues steps to s until s halts, Stop is called or ctx is done.
//
// A halt (io.EOF from s) stops the clock and Run returns nil. Any other
// step error stops the clock and is returned. Cancellation of ctx returns
// ctx.Err().
func (c *Clock) Run(ctx context.Context, s Stepper) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer c.Stop()

	c.start.Store(time.Now().UnixNano())

	var tick <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for c.running.Load() {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if !c.running.Load() {
			break
		}

		err := s.Step()
		c.cycles.Add(1)

		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}

	return nil
}
