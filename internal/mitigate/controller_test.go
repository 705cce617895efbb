package mitigate

import (
	"errors"
	"testing"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// fakeFilter records control-plane calls and plays scripted errors.
type fakeFilter struct {
	loadCalls   int
	addCalls    []string
	removeCalls []string
	unloadCalls int

	loadErr   error
	addErr    error
	unloadErr error
}

func (f *fakeFilter) Load(iface, mode string) error {
	f.loadCalls++
	return f.loadErr
}
func (f *fakeFilter) AddBlock(ip string) error {
	f.addCalls = append(f.addCalls, ip)
	return f.addErr
}
func (f *fakeFilter) RemoveBlock(ip string) error {
	f.removeCalls = append(f.removeCalls, ip)
	return nil
}
func (f *fakeFilter) Unload(iface string) error {
	f.unloadCalls++
	return f.unloadErr
}
func (f *fakeFilter) Status(iface string) (string, error) { return "", nil }

func TestInitializeIdempotent(t *testing.T) {
	filter := &fakeFilter{}
	c := NewController(filter, "eth0", "skb")

	if err := c.Initialize(); err != nil {
		t.Fatalf("first Initialize: %v", err)
	}
	if err := c.Initialize(); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if filter.loadCalls != 1 {
		t.Errorf("load ran %d times, want 1", filter.loadCalls)
	}
	if c.State() != StateLoaded {
		t.Errorf("state = %s, want Loaded", c.State())
	}
}

func TestInitializeAlreadyLoadedIsSuccess(t *testing.T) {
	filter := &fakeFilter{loadErr: ErrAlreadyLoaded}
	c := NewController(filter, "eth0", "skb")

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize with already-loaded response: %v", err)
	}
	if c.State() != StateLoaded {
		t.Errorf("state = %s, want Loaded", c.State())
	}
}

func TestInitializeFailureDegrades(t *testing.T) {
	filter := &fakeFilter{loadErr: errors.New("no such interface")}
	c := NewController(filter, "eth0", "skb")

	if err := c.Initialize(); err == nil {
		t.Fatal("expected transport-level load failure to surface")
	}
	if c.State() != StateFailed {
		t.Errorf("state = %s, want Failed", c.State())
	}

	// Blocking in Failed is a warning no-op, never an external call.
	acted, err := c.Block("1.2.3.4")
	if acted || err != nil {
		t.Errorf("Block in Failed = (%v, %v), want no-op", acted, err)
	}
	if len(filter.addCalls) != 0 {
		t.Errorf("AddBlock ran %d times from Failed state", len(filter.addCalls))
	}
}

func TestBlockIdempotent(t *testing.T) {
	filter := &fakeFilter{}
	c := NewController(filter, "eth0", "skb")
	if err := c.Initialize(); err != nil {
		t.Fatal(err)
	}

	acted, err := c.Block("1.2.3.4")
	if !acted || err != nil {
		t.Fatalf("first Block = (%v, %v), want action", acted, err)
	}
	acted, err = c.Block("1.2.3.4")
	if acted || err != nil {
		t.Fatalf("second Block = (%v, %v), want no-op", acted, err)
	}
	if len(filter.addCalls) != 1 {
		t.Errorf("AddBlock ran %d times, want 1", len(filter.addCalls))
	}
	if got := c.BlockedIPs(); len(got) != 1 || got[0] != "1.2.3.4" {
		t.Errorf("blocked set = %v, want [1.2.3.4]", got)
	}
}

func TestBlockFailureLeavesSetUnchanged(t *testing.T) {
	filter := &fakeFilter{addErr: errors.New("map full")}
	c := NewController(filter, "eth0", "skb")
	if err := c.Initialize(); err != nil {
		t.Fatal(err)
	}

	acted, err := c.Block("1.2.3.4")
	if acted || err == nil {
		t.Fatalf("Block with failing data plane = (%v, %v)", acted, err)
	}
	if len(c.BlockedIPs()) != 0 {
		t.Error("failed block must not enter the blocked set")
	}
}

func TestBlockFromUnloadedWarnsOnly(t *testing.T) {
	filter := &fakeFilter{}
	c := NewController(filter, "eth0", "skb")

	acted, err := c.Block("1.2.3.4")
	if acted || err != nil {
		t.Errorf("Block before Initialize = (%v, %v), want no-op", acted, err)
	}
	if len(filter.addCalls) != 0 {
		t.Error("AddBlock must not run from Unloaded")
	}
}

func TestUnblock(t *testing.T) {
	filter := &fakeFilter{}
	c := NewController(filter, "eth0", "skb")
	if err := c.Initialize(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Block("1.2.3.4"); err != nil {
		t.Fatal(err)
	}

	acted, err := c.Unblock("1.2.3.4")
	if !acted || err != nil {
		t.Fatalf("Unblock = (%v, %v), want action", acted, err)
	}
	if acted, _ = c.Unblock("1.2.3.4"); acted {
		t.Error("second Unblock acted, want no-op")
	}
	if len(c.BlockedIPs()) != 0 {
		t.Errorf("blocked set = %v after unblock", c.BlockedIPs())
	}
}

func TestUnloadTransitions(t *testing.T) {
	filter := &fakeFilter{}
	c := NewController(filter, "eth0", "skb")

	// Unload before any load is a cheap nil.
	if err := c.Unload(); err != nil {
		t.Fatalf("Unload from Unloaded: %v", err)
	}
	if filter.unloadCalls != 0 {
		t.Error("Unload ran externally from Unloaded state")
	}

	if err := c.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := c.Unload(); err != nil {
		t.Fatalf("Unload from Loaded: %v", err)
	}
	if c.State() != StateUnloaded {
		t.Errorf("state after unload = %s, want Unloaded", c.State())
	}
}

func TestUnloadFailureSurfacesButKeepsProcessAlive(t *testing.T) {
	filter := &fakeFilter{unloadErr: errors.New("device busy")}
	c := NewController(filter, "eth0", "skb")
	if err := c.Initialize(); err != nil {
		t.Fatal(err)
	}
	// The orchestrator logs and swallows this; the controller just reports it.
	if err := c.Unload(); err == nil {
		t.Error("expected unload failure to be reported")
	}
}

func TestDecideORPolicy(t *testing.T) {
	c := NewController(&fakeFilter{}, "eth0", "skb")

	cases := []struct {
		name    string
		results []model.ClassificationResult
		want    bool
	}{
		{"all benign", []model.ClassificationResult{{Label: 0}, {Label: 0}}, false},
		{"one positive", []model.ClassificationResult{{Label: 0}, {Label: 1}, {Label: 0}}, true},
		{"all positive", []model.ClassificationResult{{Label: 1}, {Label: 1}}, true},
		{"no results", nil, false},
	}
	for _, tc := range cases {
		if got := c.Decide(tc.results); got != tc.want {
			t.Errorf("%s: Decide = %v, want %v", tc.name, got, tc.want)
		}
	}
}
