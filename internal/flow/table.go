package flow

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

const defaultShardCount = 256

// Entry pairs a flow's identity with a summary snapshot.
type Entry struct {
	Key     model.FlowKey
	Summary model.FlowSummary
}

type flowEntry struct {
	key   model.FlowKey
	state *State
}

// shard is a part of the sharded flow map, with its own mutex so
// unrelated flows never serialize on a single global lock.
type shard struct {
	flows map[string]*flowEntry
	mu    sync.RWMutex
}

// Table owns every live flow State. Ingestion, polling and eviction
// may run on separate goroutines; consistency is per-shard.
type Table struct {
	shards     []*shard
	shardCount uint32
}

// NewTable creates an empty flow table.
func NewTable() *Table {
	t := &Table{
		shards:     make([]*shard, defaultShardCount),
		shardCount: defaultShardCount,
	}
	for i := range t.shards {
		t.shards[i] = &shard{flows: make(map[string]*flowEntry)}
	}
	return t
}

// getShard returns the appropriate shard for a given key.
func (t *Table) getShard(key string) *shard {
	hasher := fnv.New32a()
	hasher.Write([]byte(key))
	return t.shards[hasher.Sum32()%t.shardCount]
}

// Add folds one packet into its flow, creating the flow on first
// sight, and returns the normalized key of the touched flow.
func (t *Table) Add(rec *model.PacketRecord) model.FlowKey {
	key := NormalizeKey(rec.SrcIP, rec.DstIP, rec.SrcPort, rec.DstPort, rec.Proto)
	ks := key.String()

	s := t.getShard(ks)
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.flows[ks]; ok {
		entry.state.Update(rec)
	} else {
		s.flows[ks] = &flowEntry{key: key, state: NewState(rec)}
	}
	return key
}

// Summarize returns a snapshot of a single flow, if it is live.
func (t *Table) Summarize(key model.FlowKey) (model.FlowSummary, bool) {
	ks := key.String()
	s := t.getShard(ks)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, ok := s.flows[ks]; ok {
		return entry.state.Summarize(), true
	}
	return model.FlowSummary{}, false
}

// PollActive summarizes every live flow without removing anything. It
// is safe to call at an arbitrary rate.
func (t *Table) PollActive() []Entry {
	var out []Entry
	for _, s := range t.shards {
		s.mu.RLock()
		for _, entry := range s.flows {
			out = append(out, Entry{Key: entry.key, Summary: entry.state.Summarize()})
		}
		s.mu.RUnlock()
	}
	return out
}

// EvictInactive removes and returns every flow whose last packet is
// older than timeout relative to now. Each flow is evicted exactly
// once.
func (t *Table) EvictInactive(now time.Time, timeout time.Duration) []Entry {
	var out []Entry
	for _, s := range t.shards {
		s.mu.Lock()
		for ks, entry := range s.flows {
			if now.Sub(entry.state.LastSeen()) > timeout {
				out = append(out, Entry{Key: entry.key, Summary: entry.state.Summarize()})
				delete(s.flows, ks)
			}
		}
		s.mu.Unlock()
	}
	return out
}

// FlushAll drains every remaining flow; used at shutdown.
func (t *Table) FlushAll() []Entry {
	var out []Entry
	for _, s := range t.shards {
		s.mu.Lock()
		for _, entry := range s.flows {
			out = append(out, Entry{Key: entry.key, Summary: entry.state.Summarize()})
		}
		s.flows = make(map[string]*flowEntry)
		s.mu.Unlock()
	}
	return out
}

// Len returns the number of live flows.
func (t *Table) Len() int {
	count := 0
	for _, s := range t.shards {
		s.mu.RLock()
		count += len(s.flows)
		s.mu.RUnlock()
	}
	return count
}
