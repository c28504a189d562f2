// Package devices defines the peripherals an LS-8 machine can be wired to.
package devices

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Device represents a peripheral device.
type Device interface {
	// ID yields the manufacturer and serial number for the device.
	ID() ID

	// Startup initializes internal resources.
	Startup() error

	// Shutdown cleans up internal resources.
	Shutdown() error
}

// Console is a device which receives the output of the PRN and PRA
// instructions.
type Console interface {
	Device

	// PrintValue prints v as a decimal number on its own line.
	PrintValue(v byte) error

	// PrintChar prints the single character with code point v.
	PrintChar(v byte) error
}

// Map contains a list of registered peripherals.
type Map []Device

// Connect adds the given device to the device map.
// Returns false if the device type is already present in the set.
func (dm *Map) Connect(dev Device) bool {
	if (*dm).Find(dev.ID()) > -1 {
		return false
	}

	*dm = append(*dm, dev)
	return true
}

// Console returns the first connected console device, if any.
func (dm Map) Console() (Console, bool) {
	for _, dev := range dm {
		if c, ok := dev.(Console); ok {
			return c, true
		}
	}
	return nil, false
}

// Startup initializes internal resources. Progress is logged to l, or to
// the standard logger if l is nil.
func (dm Map) Startup(l log.FieldLogger) error {
	var errorset ErrorSet

	if l == nil {
		l = log.StandardLogger()
	}

	for _, dev := range dm {
		l.Debugln(dev.ID(), "startup")
		if err := dev.Startup(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", dev.ID()))
		}
	}

	if errorset.Len() == 0 {
		return nil
	}

	return errorset
}

// Shutdown cleans up internal resources.
func (dm Map) Shutdown(l log.FieldLogger) error {
	var errorset ErrorSet

	if l == nil {
		l = log.StandardLogger()
	}

	for _, dev := range dm {
		l.Debugln(dev.ID(), "shutdown")
		if err := dev.Shutdown(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", dev.ID()))
		}
	}

	if errorset.Len() == 0 {
		return nil
	}

	return errorset
}

// Find returns the index for the device with the given id.
// Returns -1 if it can't be found.
func (dm Map) Find(id ID) int {
	for i, dev := range dm {
		if dev.ID() == id {
			return i
		}
	}
	return -1
}
