// Package pipeline wires packet ingestion, flow accounting, feature
// extraction, classification, persistence and mitigation into one
// processing loop.
package pipeline

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/feature"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/flow"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/mitigate"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

const recentBufferSize = 128

// Recorder receives every emitted detection event; the alerter
// implements it to batch malicious flows between email checks.
type Recorder interface {
	Record(ev *model.DetectionEvent)
}

// Options configures an Orchestrator.
type Options struct {
	Threshold        float64
	FlowTimeout      time.Duration
	EvictionInterval time.Duration
	UndirectedCompat bool
}

// Orchestrator drives the detection loop: every packet updates its
// flow, the touched flow is re-evaluated against all models, and
// malicious origins are handed to the mitigation controller. A nil
// controller disables mitigation without changing the rest of the
// path.
type Orchestrator struct {
	table      *flow.Table
	mapper     *feature.Mapper
	classifier model.Classifier
	controller *mitigate.Controller
	sinks      []model.Sink
	recorders  []Recorder
	opts       Options

	in        chan *model.PacketRecord
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup

	mu     sync.Mutex
	recent []*model.DetectionEvent
}

// NewOrchestrator assembles a stopped pipeline. Start must be called
// before writing to Input.
func NewOrchestrator(classifier model.Classifier, controller *mitigate.Controller, sinks []model.Sink, opts Options) *Orchestrator {
	if opts.EvictionInterval <= 0 {
		opts.EvictionInterval = 10 * time.Second
	}
	if opts.FlowTimeout <= 0 {
		opts.FlowTimeout = 30 * time.Second
	}
	return &Orchestrator{
		table:      flow.NewTable(),
		mapper:     feature.NewMapper(opts.UndirectedCompat),
		classifier: classifier,
		controller: controller,
		sinks:      sinks,
		opts:       opts,
		in:         make(chan *model.PacketRecord, 1024),
		done:       make(chan struct{}),
	}
}

// AddRecorder registers an additional consumer of detection events.
func (o *Orchestrator) AddRecorder(r Recorder) {
	o.recorders = append(o.recorders, r)
}

// Input returns the packet feed. The feed must be closed when capture
// ends, either by the producer or via CloseInput; Stop may only be
// called after that.
func (o *Orchestrator) Input() chan<- *model.PacketRecord {
	return o.in
}

// CloseInput closes the packet feed on behalf of producers that push
// records one at a time, such as a NATS subscription callback. Safe to
// call more than once.
func (o *Orchestrator) CloseInput() {
	o.closeOnce.Do(func() { close(o.in) })
}

// Start launches the ingestion and eviction goroutines.
func (o *Orchestrator) Start() {
	o.wg.Add(2)
	go o.ingestLoop()
	go o.evictionLoop()
	log.Println("Detection pipeline started.")
}

// Stop waits for the drained input feed, flushes every remaining flow
// through the evaluation path, and detaches the packet filter. Unload
// failures are logged and swallowed so cleanup never blocks exit.
func (o *Orchestrator) Stop() {
	close(o.done)
	o.wg.Wait()

	for _, entry := range o.table.FlushAll() {
		o.evaluate(entry.Key, entry.Summary)
	}

	if o.controller != nil {
		if err := o.controller.Unload(); err != nil {
			log.Printf("WARNING: failed to unload packet filter: %v", err)
		}
	}
	log.Println("Detection pipeline stopped.")
}

func (o *Orchestrator) ingestLoop() {
	defer o.wg.Done()
	for rec := range o.in {
		o.handlePacket(rec)
	}
}

func (o *Orchestrator) evictionLoop() {
	defer o.wg.Done()
	ticker := time.NewTicker(o.opts.EvictionInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			for _, entry := range o.table.EvictInactive(now, o.opts.FlowTimeout) {
				o.evaluate(entry.Key, entry.Summary)
			}
		case <-o.done:
			return
		}
	}
}

func (o *Orchestrator) handlePacket(rec *model.PacketRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Length < 0 {
		rec.Length = 0
	}

	key := o.table.Add(rec)
	summary, ok := o.table.Summarize(key)
	if !ok {
		return
	}
	o.evaluate(key, summary)
}

// evaluate runs one flow snapshot through feature extraction, all
// models, the block decision and every sink.
func (o *Orchestrator) evaluate(key model.FlowKey, summary model.FlowSummary) {
	fv := o.mapper.Map(key, summary)

	results, err := o.classifier.Predict(fv, o.opts.Threshold)
	if err != nil {
		log.Printf("WARNING: classification failed for flow %s: %v", key, err)
		return
	}

	ev := &model.DetectionEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Key:       key,
		Summary:   summary,
		Features:  fv,
		Results:   results,
		Malicious: mitigate.Decide(results),
	}

	if ev.Malicious && o.controller != nil {
		if _, err := o.controller.Block(summary.OriginAddr); err != nil {
			log.Printf("WARNING: failed to block %s: %v", summary.OriginAddr, err)
		}
	}

	for _, s := range o.sinks {
		if err := s.Write(ev); err != nil {
			log.Printf("WARNING: sink write failed: %v", err)
		}
	}
	for _, r := range o.recorders {
		r.Record(ev)
	}

	o.mu.Lock()
	o.recent = append(o.recent, ev)
	if len(o.recent) > recentBufferSize {
		o.recent = o.recent[len(o.recent)-recentBufferSize:]
	}
	o.mu.Unlock()
}

// ActiveFlows snapshots every live flow for the status API.
func (o *Orchestrator) ActiveFlows() []flow.Entry {
	return o.table.PollActive()
}

// RecentDetections returns the most recent detection events, newest
// last.
func (o *Orchestrator) RecentDetections() []*model.DetectionEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*model.DetectionEvent, len(o.recent))
	copy(out, o.recent)
	return out
}
