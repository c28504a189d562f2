package asm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ReadProgram loads a program from disk. Files with a .bin extension hold
// the raw byte stream; anything else is treated as source and assembled.
func ReadProgram(path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		data, err := os.ReadFile(path)
		return data, errors.Wrap(err, "read program")
	}

	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "read program")
	}
	defer fd.Close()

	return Parse(fd, path)
}
