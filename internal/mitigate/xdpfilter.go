// Package mitigate owns the block/unblock control loop against the
// packet-filtering data plane (xdp-filter) and its lifecycle state.
package mitigate

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// ErrAlreadyLoaded marks the data plane's "is already loaded on"
// response. It is a recognized idempotent-success case, not a failure.
var ErrAlreadyLoaded = errors.New("filter already loaded on interface")

// Filter abstracts the packet-filter control plane so the controller
// is testable with doubles.
type Filter interface {
	Load(iface, mode string) error
	AddBlock(ip string) error
	RemoveBlock(ip string) error
	Unload(iface string) error
	Status(iface string) (string, error)
}

// CommandRunner runs one control-plane command and returns its
// combined stdout plus any stderr diagnostic.
type CommandRunner interface {
	Run(name string, args ...string) (stdout string, stderr string, err error)
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)
	var out, errb strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.String(), strings.TrimSpace(errb.String()), err
}

// XDPFilter drives the xdp-filter CLI. Blocking is always by source
// address (`ip --mode src`), matching how the pipeline mitigates.
type XDPFilter struct {
	command string
	runner  CommandRunner
}

// NewXDPFilter creates a runner-backed filter. command is the CLI name
// ("xdp-filter" unless overridden in config).
func NewXDPFilter(command string) *XDPFilter {
	return &XDPFilter{command: command, runner: execRunner{}}
}

// NewXDPFilterWithRunner injects a CommandRunner, used by tests.
func NewXDPFilterWithRunner(command string, runner CommandRunner) *XDPFilter {
	return &XDPFilter{command: command, runner: runner}
}

func (f *XDPFilter) run(args ...string) (string, error) {
	log.Printf("Executing: %s %s", f.command, strings.Join(args, " "))
	stdout, stderr, err := f.runner.Run(f.command, args...)
	if err != nil {
		if strings.Contains(stderr, "is already loaded on") {
			return stdout, ErrAlreadyLoaded
		}
		if stderr != "" {
			return stdout, fmt.Errorf("%s %s failed: %s: %w", f.command, args[0], stderr, err)
		}
		return stdout, fmt.Errorf("%s %s failed: %w", f.command, args[0], err)
	}
	return stdout, nil
}

// Load attaches the filter program to the interface.
func (f *XDPFilter) Load(iface, mode string) error {
	_, err := f.run("load", iface, "-m", mode)
	return err
}

// AddBlock puts a source address on the drop list.
func (f *XDPFilter) AddBlock(ip string) error {
	_, err := f.run("ip", "--mode", "src", ip)
	return err
}

// RemoveBlock takes a source address off the drop list.
func (f *XDPFilter) RemoveBlock(ip string) error {
	_, err := f.run("ip", "--mode", "src", "--remove", ip)
	return err
}

// Unload detaches the filter program from the interface.
func (f *XDPFilter) Unload(iface string) error {
	_, err := f.run("unload", iface)
	return err
}

// Status returns the filter's textual status output.
func (f *XDPFilter) Status(iface string) (string, error) {
	return f.run("status", iface)
}
