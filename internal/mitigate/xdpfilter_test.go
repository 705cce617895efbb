package mitigate

import (
	"errors"
	"strings"
	"testing"
)

type fakeRunner struct {
	calls  [][]string
	stderr string
	err    error
}

func (r *fakeRunner) Run(name string, args ...string) (string, string, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return "", r.stderr, r.err
}

func TestXDPFilterCommandLines(t *testing.T) {
	runner := &fakeRunner{}
	f := NewXDPFilterWithRunner("xdp-filter", runner)

	if err := f.Load("eth0", "skb"); err != nil {
		t.Fatal(err)
	}
	if err := f.AddBlock("1.2.3.4"); err != nil {
		t.Fatal(err)
	}
	if err := f.RemoveBlock("1.2.3.4"); err != nil {
		t.Fatal(err)
	}
	if err := f.Unload("eth0"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"xdp-filter load eth0 -m skb",
		"xdp-filter ip --mode src 1.2.3.4",
		"xdp-filter ip --mode src --remove 1.2.3.4",
		"xdp-filter unload eth0",
	}
	if len(runner.calls) != len(want) {
		t.Fatalf("ran %d commands, want %d", len(runner.calls), len(want))
	}
	for i, call := range runner.calls {
		if got := strings.Join(call, " "); got != want[i] {
			t.Errorf("command %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestXDPFilterRecognizesAlreadyLoaded(t *testing.T) {
	runner := &fakeRunner{
		stderr: "Unable to load program: XDP program is already loaded on eth0",
		err:    errors.New("exit status 1"),
	}
	f := NewXDPFilterWithRunner("xdp-filter", runner)

	err := f.Load("eth0", "skb")
	if !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("Load error = %v, want ErrAlreadyLoaded", err)
	}
}

func TestXDPFilterSurfacesDiagnostics(t *testing.T) {
	runner := &fakeRunner{stderr: "Couldn't find network interface eth9", err: errors.New("exit status 1")}
	f := NewXDPFilterWithRunner("xdp-filter", runner)

	err := f.Load("eth9", "skb")
	if err == nil || !strings.Contains(err.Error(), "eth9") {
		t.Errorf("error %v should carry the stderr diagnostic", err)
	}
}
