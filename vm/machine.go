// Package vm assembles a complete LS-8 machine: CPU, console and clock.
package vm

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/hexaflex/ls8/devices"
	"github.com/hexaflex/ls8/devices/fffe/clock"
	"github.com/hexaflex/ls8/devices/fffe/cpu"
	"github.com/hexaflex/ls8/devices/fffe/tty"
)

// Config defines machine construction parameters.
type Config struct {
	Output              io.Writer       // Console output; defaults to io.Discard.
	Interval            time.Duration   // Clock tick interval; zero runs unpaced.
	MemoryCapacity      int             // Memory size; defaults to cpu.DefaultMemoryCapacity.
	ClearFlagsOnCompare bool            // Reset FL before every CMP.
	Trace               cpu.TraceFunc   // Optional instruction trace handler.
	Logger              log.FieldLogger // Defaults to the standard logrus logger.
}

// Machine owns a single CPU along with its memory, register file, console
// and clock. Machines share no state with each other.
type Machine struct {
	cpu     *cpu.CPU
	console *tty.Device
	clock   *clock.Clock
	log     log.FieldLogger
}

// New creates a new machine.
func New(cfg Config) *Machine {
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}

	m := &Machine{
		console: tty.New(cfg.Output),
		clock:   clock.New(cfg.Interval),
		log:     cfg.Logger,
	}

	m.cpu = cpu.New(cpu.Config{
		MemoryCapacity:      cfg.MemoryCapacity,
		ClearFlagsOnCompare: cfg.ClearFlagsOnCompare,
		Trace:               cfg.Trace,
		Logger:              cfg.Logger,
	})
	m.cpu.Connect(m.console)
	m.cpu.Connect(m.clock)

	return m
}

// Startup resets the machine and initializes its peripherals.
func (m *Machine) Startup() error {
	return m.cpu.Startup()
}

// Shutdown stops the clock and disposes of peripheral resources.
func (m *Machine) Shutdown() error {
	m.clock.Stop()
	return m.cpu.Shutdown()
}

// Load writes program into memory starting at address 0.
// It must be called after Startup, which clears memory.
func (m *Machine) Load(program []byte) error {
	if len(program) > m.cpu.Memory().Len() {
		return errors.Errorf("program of %d bytes does not fit in %d bytes of memory",
			len(program), m.cpu.Memory().Len())
	}
	devices.Load(m.cpu.Memory(), 0, program)
	return nil
}

// Run drives the clock until the program halts or ctx is done.
//
// A clean HLT returns nil. A fault halts the machine, is logged and returned
// as a *cpu.Error.
func (m *Machine) Run(ctx context.Context) error {
	err := m.clock.Run(ctx, m.cpu)

	var fault *cpu.Error
	if errors.As(err, &fault) {
		m.log.WithFields(log.Fields{
			"address": fault.IP,
			"opcode":  fault.Opcode,
		}).Error(fault.Err)
	}

	return err
}

// Step performs a single execution step outside of the clock.
// Returns io.EOF once the machine has halted.
func (m *Machine) Step() error {
	return m.cpu.Step()
}

// Stop stops the clock. The machine keeps its state and can be resumed with Run.
func (m *Machine) Stop() {
	m.clock.Stop()
}

// Running returns true while the clock is ticking.
func (m *Machine) Running() bool {
	return m.clock.Running()
}

// Halted returns true once HLT or a fault has stopped the CPU.
func (m *Machine) Halted() bool {
	return m.cpu.Halted()
}

// Cycles returns the number of steps issued by the clock.
func (m *Machine) Cycles() uint64 {
	return m.clock.Cycles()
}

// Frequency returns the effective clock rate in herz.
func (m *Machine) Frequency() float64 {
	return m.clock.Frequency()
}

// Registers returns a snapshot of the register file.
// It is only meaningful while the clock is not running.
func (m *Machine) Registers() cpu.Registers {
	return m.cpu.Registers()
}

// Memory returns the machine's memory bank.
func (m *Machine) Memory() devices.Memory {
	return m.cpu.Memory()
}
