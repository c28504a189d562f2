// Package cpu implements the LS-8 CPU.
package cpu

import (
	"io"
	"sync/atomic"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/hexaflex/ls8/arch"
	"github.com/hexaflex/ls8/devices"
)

// TraceFunc represents a callback handler for debug trace output.
// It is called with each instruction before it executes.
type TraceFunc func(*Instruction)

// Config defines CPU construction parameters.
type Config struct {
	MemoryCapacity      int             // Memory size in bytes; a power of two. Defaults to DefaultMemoryCapacity.
	ClearFlagsOnCompare bool            // Reset FL before every CMP.
	Trace               TraceFunc       // Optional trace handler.
	Logger              log.FieldLogger // Defaults to the standard logrus logger.
}

// CPU implements the runtime.
type CPU struct {
	devices     devices.Map     // Connected peripherals.
	console     devices.Console // Receives PRN and PRA output.
	trace       TraceFunc       // Handler for debug trace output.
	log         log.FieldLogger // Diagnostics.
	memory      Memory          // System memory.
	reg         Registers       // Register file.
	alu         ALU             // Arithmetic and logic unit.
	instr       Instruction     // Fetched instruction data.
	initialized uint32          // Is the CPU started?
	halted      bool            // Has HLT or a fault stopped execution?
}

// New creates a new CPU with the given configuration.
func New(cfg Config) *CPU {
	if cfg.MemoryCapacity == 0 {
		cfg.MemoryCapacity = DefaultMemoryCapacity
	}
	if cfg.Trace == nil {
		cfg.Trace = func(*Instruction) { /* nop */ }
	}
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}

	c := &CPU{
		trace:  cfg.Trace,
		log:    cfg.Logger,
		memory: NewMemory(cfg.MemoryCapacity),
		alu:    ALU{ClearFlagsOnCompare: cfg.ClearFlagsOnCompare},
	}
	c.reg.Reset()
	return c
}

// ID returns the cpu's device ID.
func (c *CPU) ID() devices.ID {
	return devices.NewID(0xfffe, 0x0001)
}

// Memory returns the cpu's internal memory bank.
func (c *CPU) Memory() Memory {
	return c.memory
}

// Registers returns a copy of the register file.
func (c *CPU) Registers() Registers {
	return c.reg
}

// Halted returns true once HLT or a fault has stopped execution.
func (c *CPU) Halted() bool {
	return c.halted
}

// Connect connects the given hardware peripheral to the system.
// The first connected console receives PRN and PRA output.
// Returns false if the given device type is already connected.
func (c *CPU) Connect(dev devices.Device) bool {
	if !c.devices.Connect(dev) {
		return false
	}
	if c.console == nil {
		c.console, _ = c.devices.Console()
	}
	return true
}

// Startup resets memory and registers and initializes connected peripherals.
// Returns an error if the cpu is already started. Use Shutdown() first.
// If a peripheral fails to start, all peripherals are shut down again and
// the cpu is left stopped.
func (c *CPU) Startup() error {
	if !atomic.CompareAndSwapUint32(&c.initialized, 0, 1) {
		return errors.New(c.ID().String() + " cpu is already started")
	}

	c.log.Debugln(c.ID(), "startup")
	c.memory.Reset()
	c.reg.Reset()
	c.halted = false

	if err := c.devices.Startup(c.log); err != nil {
		c.devices.Shutdown(c.log)
		atomic.StoreUint32(&c.initialized, 0)
		return err
	}
	return nil
}

// Shutdown cleans up internal resources.
func (c *CPU) Shutdown() error {
	if !atomic.CompareAndSwapUint32(&c.initialized, 1, 0) {
		return nil
	}
	c.log.Debugln(c.ID(), "shutdown")
	return c.devices.Shutdown(c.log)
}

// Step performs a single fetch-decode-execute cycle.
//
// Returns io.EOF if the program has halted or the cpu is not started.
// Any other error is a *Error describing the fault which halted the cpu.
func (c *CPU) Step() error {
	if atomic.LoadUint32(&c.initialized) == 0 || c.halted {
		return io.EOF
	}

	instr := &c.instr
	instr.Fetch(c.memory, c.reg.PC)
	c.reg.IR = instr.Opcode

	c.trace(instr)

	h := handlers[instr.Opcode]
	if h == nil {
		c.halted = true
		c.log.WithFields(log.Fields{
			"opcode":  instr.Opcode,
			"address": instr.IP,
		}).Warn("illegal instruction")
		return NewError(instr, ErrIllegalOpcode)
	}

	next, jump, err := h(c, instr.Args[0], instr.Args[1])
	if err != nil {
		c.halted = true
		if err == io.EOF {
			return err
		}
		return NewError(instr, err)
	}

	if jump {
		c.reg.PC = c.memory.mask(next)
	} else {
		c.reg.PC = c.memory.mask(c.reg.PC + instr.Size())
	}

	return nil
}

// push decrements SP and stores v at the new top of the stack.
func (c *CPU) push(v byte) {
	sp := c.reg.GP[arch.SP] - 1
	c.reg.GP[arch.SP] = sp
	c.memory.Write(int(sp), v)
}

// pop returns the value at the top of the stack and increments SP.
func (c *CPU) pop() byte {
	sp := c.reg.GP[arch.SP]
	v := c.memory.Read(int(sp))
	c.reg.GP[arch.SP] = sp + 1
	return v
}
