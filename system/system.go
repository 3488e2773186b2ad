// Package system provides the operating-system collaborators used by
// the build: environment access, file timestamps, the working directory
// and the command shell. OS implements all of them for the real process.
package system

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// Env reads and updates environment variables.
type Env interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
}

// FileSystem reports file modification times.
type FileSystem interface {
	ModTime(path string) (time.Time, error)
}

// WorkDir gets and changes the process working directory.
type WorkDir interface {
	Getwd() (string, error)
	Chdir(dir string) error
}

// Shell runs a command line and reports its exit code. A non-nil error
// means the command could not be started at all.
type Shell interface {
	Run(ctx context.Context, command string) (int, error)
}

// OS is the process environment, filesystem, working directory and
// shell. The zero value writes command output to os.Stdout and
// os.Stderr.
type OS struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (OS) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (OS) Set(key, value string) error {
	return os.Setenv(key, value)
}

func (OS) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (OS) Getwd() (string, error) {
	return os.Getwd()
}

func (OS) Chdir(dir string) error {
	return os.Chdir(dir)
}

// Run executes command with the platform shell, sh -c on Unix and
// cmd /c on Windows.
func (o OS) Run(ctx context.Context, command string) (int, error) {
	var c *exec.Cmd
	if runtime.GOOS == "windows" {
		c = exec.CommandContext(ctx, "cmd", "/c", command)
	} else {
		c = exec.CommandContext(ctx, shellPath(), "-c", command)
	}
	c.Stdin = os.Stdin
	c.Stdout = o.Stdout
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	c.Stderr = o.Stderr
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	err := c.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func shellPath() string {
	if p, err := exec.LookPath("sh"); err == nil {
		return p
	}
	return "/bin/sh"
}

// MapEnv is an in-memory Env.
type MapEnv map[string]string

func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapEnv) Set(key, value string) error {
	m[key] = value
	return nil
}
