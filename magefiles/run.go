//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the viewer on assets/scene.toml.
func (Run) Viewer() error {
	fmt.Println("Run viewer...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "assets/scene.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
