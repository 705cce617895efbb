package mitigate

import (
	"errors"
	"log"
	"sync"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// State is the mitigation lifecycle state. Failed is terminal for
// mitigation but never fatal for the process: the pipeline keeps
// detecting without blocking.
type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "Unloaded"
	case StateLoaded:
		return "Loaded"
	case StateFailed:
		return "Failed"
	}
	return "Unknown"
}

// Controller wraps the packet-filter control plane with lifecycle and
// idempotency guarantees. Exactly one controller may own the data
// plane per process. The internal blocked set, not the external plane,
// is the source of truth for block idempotency.
type Controller struct {
	mu      sync.Mutex
	state   State
	filter  Filter
	iface   string
	mode    string
	blocked map[string]struct{}
}

// NewController creates a controller in the Unloaded state.
func NewController(filter Filter, iface, mode string) *Controller {
	return &Controller{
		filter:  filter,
		iface:   iface,
		mode:    mode,
		blocked: make(map[string]struct{}),
	}
}

// Initialize activates the external filter. An "already loaded"
// response is an idempotent transition into Loaded; any other failure
// moves to Failed and is returned so the caller can log the degraded
// mode once. Initialize on an already-Loaded controller is a no-op
// success and never re-invokes the external action.
func (c *Controller) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLoaded {
		return nil
	}

	err := c.filter.Load(c.iface, c.mode)
	if err == nil {
		c.state = StateLoaded
		log.Printf("Packet filter loaded on %s (mode %s)", c.iface, c.mode)
		return nil
	}
	if errors.Is(err, ErrAlreadyLoaded) {
		c.state = StateLoaded
		log.Printf("Packet filter already loaded on %s, skipping initialization.", c.iface)
		return nil
	}

	c.state = StateFailed
	return err
}

// Decide reports malicious iff any model labeled the flow positive (OR
// policy across all models).
func Decide(results []model.ClassificationResult) bool {
	for _, r := range results {
		if r.Label == 1 {
			return true
		}
	}
	return false
}

// Decide applies the package-level OR policy.
func (c *Controller) Decide(results []model.ClassificationResult) bool {
	return Decide(results)
}

// Block adds a source address to the drop set. It reports whether a
// new external block action ran: already-blocked addresses and calls
// outside the Loaded state are no-ops.
func (c *Controller) Block(ip string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLoaded {
		log.Printf("WARNING: packet filter is %s, cannot block %s", c.state, ip)
		return false, nil
	}
	if _, done := c.blocked[ip]; done {
		return false, nil
	}

	log.Printf("Blocking malicious source %s", ip)
	if err := c.filter.AddBlock(ip); err != nil {
		return false, err
	}
	c.blocked[ip] = struct{}{}
	return true, nil
}

// Unblock removes a source address from the drop set.
func (c *Controller) Unblock(ip string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLoaded {
		log.Printf("WARNING: packet filter is %s, cannot unblock %s", c.state, ip)
		return false, nil
	}
	if _, done := c.blocked[ip]; !done {
		return false, nil
	}

	if err := c.filter.RemoveBlock(ip); err != nil {
		return false, err
	}
	delete(c.blocked, ip)
	return true, nil
}

// Unload detaches the filter. It is attempted unconditionally at
// shutdown; a non-Loaded controller returns nil immediately. Callers
// log and swallow any error so cleanup never blocks process exit.
func (c *Controller) Unload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLoaded {
		return nil
	}
	if err := c.filter.Unload(c.iface); err != nil {
		return err
	}
	c.state = StateUnloaded
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BlockedIPs returns a copy of the active block set.
func (c *Controller) BlockedIPs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.blocked))
	for ip := range c.blocked {
		out = append(out, ip)
	}
	return out
}
