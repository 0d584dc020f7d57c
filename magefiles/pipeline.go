//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// run invokes the built CLI binary with the given arguments.
func run(args ...string) error {
	bin := filepath.Join(binDir, binName)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", bin, args, err)
	}
	return nil
}

// Fetch downloads the GenBank records listed in the configured accession set.
func Fetch() error {
	mg.Deps(Build)
	return run("fetch")
}

// Extract parses downloaded GenBank files into the protein FASTA and metadata table.
func Extract() error {
	mg.Deps(Build)
	return run("extract")
}

// Mine runs HMM and structural homolog detection over the extracted proteins.
func Mine() error {
	mg.Deps(Build, Extract)
	return run("mine", "data/sequences/proteins.fasta")
}

// Classify assigns loop-topology lineages to the extracted proteins.
func Classify() error {
	mg.Deps(Build, Extract)
	return run("classify", "data/sequences/proteins.fasta")
}

// Atlas rebuilds the homolog atlas index from the pipeline outputs.
func Atlas() error {
	mg.Deps(Build)
	return run("atlas", "store")
}

// Report compiles the stage outputs into the study report.
func Report() error {
	mg.Deps(Build)
	return run("report")
}