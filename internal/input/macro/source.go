package macro

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultSourcePath is the macro source used when none is configured.
const DefaultSourcePath = "actions.txt"

// Load compiles the macro source at path.
func Load(path string, opts ...CompileOption) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read macro source: %w", err)
	}
	opts = append([]CompileOption{WithSourceName(path)}, opts...)
	return Compile(bytes.NewReader(data), opts...)
}

// LoadOrCreate compiles the macro source at path. If the file does not
// exist an empty one is created, an empty registry is returned and
// created is true.
func LoadOrCreate(path string, opts ...CompileOption) (reg *Registry, created bool, err error) {
	reg, err = Load(path, opts...)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return reg, false, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Created by someone else in the meantime.
			reg, err = Load(path, opts...)
			return reg, false, err
		}
		return nil, false, fmt.Errorf("failed to create macro source: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, false, fmt.Errorf("failed to create macro source: %w", err)
	}
	return NewRegistry(), true, nil
}
