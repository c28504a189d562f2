package vm

import (
	"context"

	"github.com/hexaflex/ls8/devices"
)

// Execute starts a machine, loads program, runs it to completion and shuts
// the machine down again. Errors from every stage are collected.
func Execute(ctx context.Context, cfg Config, program []byte) (*Machine, error) {
	var errorset devices.ErrorSet

	m := New(cfg)
	if err := m.Startup(); err != nil {
		return m, err
	}

	if err := m.Load(program); err != nil {
		errorset.Append(err)
	} else {
		errorset.Append(m.Run(ctx))
	}

	errorset.Append(m.Shutdown())

	if errorset.Len() == 1 {
		return m, errorset[0]
	}
	return m, errorset.Err()
}
