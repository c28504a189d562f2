// Package tty implements the console which receives PRN and PRA output.
package tty

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/hexaflex/ls8/devices"
)

// Device writes console output to an io.Writer.
//
// Output is buffered. When the writer is an interactive terminal, or
// Unbuffered is set, every print is flushed immediately. Otherwise the
// buffer is flushed when full and on Shutdown.
type Device struct {
	Unbuffered bool

	w   *bufio.Writer
	out io.Writer
}

var _ devices.Console = &Device{}

// New creates a console writing to w.
func New(w io.Writer) *Device {
	d := &Device{
		out: w,
		w:   bufio.NewWriter(w),
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		d.Unbuffered = true
	}

	return d
}

// ID returns the console's device ID.
func (d *Device) ID() devices.ID {
	return devices.NewID(0xfffe, 0x0002)
}

// Startup discards any output left over from an earlier run.
func (d *Device) Startup() error {
	d.w.Reset(d.out)
	return nil
}

// Shutdown flushes pending output.
func (d *Device) Shutdown() error {
	return errors.Wrap(d.w.Flush(), "tty")
}

// PrintValue prints v as a decimal number followed by a newline.
func (d *Device) PrintValue(v byte) error {
	d.w.WriteString(strconv.Itoa(int(v)))
	d.w.WriteByte('\n')
	return d.flush()
}

// PrintChar prints the character with code point v.
func (d *Device) PrintChar(v byte) error {
	d.w.WriteRune(rune(v))
	return d.flush()
}

func (d *Device) flush() error {
	if !d.Unbuffered {
		return nil
	}
	return errors.Wrap(d.w.Flush(), "tty")
}
