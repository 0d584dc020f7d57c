// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mine discovers pacifastin homologs by profile HMM search and
// structural similarity search, and merges the two hit sets into a
// detection table.
package mine

import (
	"fmt"
	"io"
	"os/exec"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args []string, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args []string, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// tool wraps one external search binary. hmmsearch and foldseek share the
// same invocation logic; they differ only in binary name and arguments.
type tool struct {
	bin  string
	exec executor
}

// Available reports whether the tool binary exists on PATH.
func (t *tool) Available() bool {
	_, err := t.exec.LookPath(t.bin)
	return err == nil
}

func (t *tool) run(args []string, stderr io.Writer) error {
	if !t.Available() {
		return fmt.Errorf("%s not found on PATH", t.bin)
	}
	if err := t.exec.Run(t.bin, args, stderr); err != nil {
		return fmt.Errorf("running %s: %w", t.bin, err)
	}
	return nil
}
