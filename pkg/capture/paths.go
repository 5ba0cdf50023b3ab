package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtension is the extension of the intermediate trace file.
const DefaultExtension = ".etl"

// Paths are the files a capture run touches.
type Paths struct {
	Output       string
	Intermediate string
	Converter    string
}

// PathConfig controls how Paths are derived. Zero values fall back to the
// package defaults.
type PathConfig struct {
	Extension     string
	ConverterName string

	// ConverterDir replaces the directory of the running executable.
	ConverterDir string

	// Executable defaults to os.Executable.
	Executable func() (string, error)
}

// DerivePaths computes the intermediate and converter paths for output.
func DerivePaths(output string, cfg PathConfig) (Paths, error) {
	ext := cfg.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	intermediate, err := IntermediatePath(output, ext)
	if err != nil {
		return Paths{}, err
	}

	name := cfg.ConverterName
	if name == "" {
		name = ConverterName
	}
	var converter string
	if cfg.ConverterDir != "" {
		converter, err = joinConverter(cfg.ConverterDir, name)
	} else {
		executable := cfg.Executable
		if executable == nil {
			executable = os.Executable
		}
		converter, err = ConverterPath(executable, name)
	}
	if err != nil {
		return Paths{}, err
	}

	return Paths{
		Output:       output,
		Intermediate: intermediate,
		Converter:    converter,
	}, nil
}

// IntermediatePath replaces the extension of output with ext, or appends ext
// when output has none. Both / and \ are treated as separators so Windows
// paths derive the same way on every platform.
func IntermediatePath(output, ext string) (string, error) {
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		return "", fmt.Errorf("%w: invalid extension %q", ErrIntermediatePath, ext)
	}

	sep := strings.LastIndexAny(output, `/\`)
	name := output[sep+1:]
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q has no file name", ErrIntermediatePath, output)
	}

	stem := output
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		stem = output[:sep+1+dot]
	}
	intermediate := stem + ext

	// netsh and the converter would share a single file, and cleanup would
	// remove the capture.
	if strings.EqualFold(intermediate, output) {
		return "", fmt.Errorf("%w: %q already has the %s extension", ErrIntermediatePath, output, ext)
	}
	return intermediate, nil
}

// ConverterPath places the converter named name in the directory holding the
// running executable.
func ConverterPath(executable func() (string, error), name string) (string, error) {
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExecutablePath, err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return joinConverter(filepath.Dir(exe), name)
}

func joinConverter(dir, name string) (string, error) {
	if dir == "" || dir == "." {
		return "", fmt.Errorf("%w: no directory", ErrConverterPath)
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: invalid converter name %q", ErrConverterPath, name)
	}
	return filepath.Join(dir, name), nil
}
