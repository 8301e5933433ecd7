//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	sampleInput = "testdata/suwatte-sample.json"
	sampleOut   = "out"
)

// Sample converts the bundled Suwatte sample into out/ and inspects the result.
func Sample() error {
	mg.Deps(Build)

	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "convert", "--out-dir", sampleOut, "--force", "--report", "--no-ledger", sampleInput); err != nil {
		return fmt.Errorf("converting sample: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(sampleOut, "Aidoku-*.aib"))
	if err != nil || len(matches) == 0 {
		return fmt.Errorf("no .aib written to %s", sampleOut)
	}
	return sh.RunV(bin, "inspect", matches[len(matches)-1])
}

// Clean removes build and sample output.
func Clean() error {
	for _, dir := range []string{binDir, sampleOut} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}
