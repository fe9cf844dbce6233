//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

// invocation describes one external command run by a target.
type invocation struct {
	name   string
	args   []string
	env    []string
	stream bool
}

type cmdOption func(*invocation)

func withArgs(args ...string) cmdOption {
	return func(inv *invocation) {
		inv.args = append(inv.args, args...)
	}
}

// withEnv appends KEY=VALUE pairs to the inherited environment.
func withEnv(pairs ...string) cmdOption {
	return func(inv *invocation) {
		inv.env = append(inv.env, pairs...)
	}
}

// withStream mirrors the output on the terminal while it is captured.
func withStream() cmdOption {
	return func(inv *invocation) {
		inv.stream = true
	}
}

func (inv *invocation) String() string {
	parts := append(append([]string(nil), inv.env...), inv.name)
	return strings.Join(append(parts, inv.args...), " ")
}

func (inv *invocation) run() (string, error) {
	fmt.Println("Executing:", inv)
	cmd := exec.Command(inv.name, inv.args...)
	if len(inv.env) > 0 {
		cmd.Env = append(os.Environ(), inv.env...)
	}

	var out bytes.Buffer
	echo := inv.stream || mg.Verbose()
	if echo {
		cmd.Stdout = io.MultiWriter(&out, os.Stdout)
		cmd.Stderr = io.MultiWriter(&out, os.Stderr)
	} else {
		cmd.Stdout = &out
		cmd.Stderr = &out
	}

	if err := cmd.Run(); err != nil {
		if !echo {
			fmt.Fprintf(os.Stderr, "%s failed:\n%s\n", inv.name, out.String())
		}
		return "", fmt.Errorf("error executing %s: %w", inv.name, err)
	}
	return out.String(), nil
}

func executeCmd(name string, options ...cmdOption) (string, error) {
	inv := &invocation{name: name}
	for _, o := range options {
		o(inv)
	}
	return inv.run()
}
