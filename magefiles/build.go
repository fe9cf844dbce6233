//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles every package and the testbed binary.
func (Build) Engine() error {
	// The OpenGL and GLFW bindings are cgo packages.
	_, err := executeCmd("go", withArgs("build", "-o", "bin/solo", "."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Runs the unit tests. Every test runs headless on the null and stub backends.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./engine/...", "./testbed/..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Runs go vet over the module.
func Lint() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Runs go mod tidy.
func Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	return err
}
