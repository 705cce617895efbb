// Package alerter batches malicious detections and emails consolidated
// summaries on a fixed interval.
package alerter

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gomarkdown/markdown"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// Alerter collects malicious detection events between checks and sends
// one consolidated notification per interval in which anything fired.
type Alerter struct {
	notifier      model.Notifier
	analyzer      model.Analyzer
	checkInterval time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup

	mu      sync.Mutex
	pending []*model.DetectionEvent
}

// NewAlerter creates a new Alerter instance. analyzer may be nil to
// skip AI analysis.
func NewAlerter(cfg *config.AlerterConfig, notifier model.Notifier, analyzer model.Analyzer) (*Alerter, error) {
	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid check_interval for alerter: %w", err)
	}

	return &Alerter{
		notifier:      notifier,
		analyzer:      analyzer,
		checkInterval: interval,
		stopChan:      make(chan struct{}),
	}, nil
}

// Record buffers a detection event for the next check. Benign events
// are ignored.
func (a *Alerter) Record(ev *model.DetectionEvent) {
	if !ev.Malicious {
		return
	}
	a.mu.Lock()
	a.pending = append(a.pending, ev)
	a.mu.Unlock()
}

// Start begins the periodic notification loop.
func (a *Alerter) Start() {
	log.Println("Alerter started")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ticker := time.NewTicker(a.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				a.flush()
			case <-a.stopChan:
				return
			}
		}
	}()
}

// Stop gracefully stops the loop and sends any remaining events.
func (a *Alerter) Stop() {
	log.Println("Stopping Alerter...")
	close(a.stopChan)
	a.wg.Wait()
	a.flush()
}

// flush drains the pending buffer and sends one consolidated email.
func (a *Alerter) flush() {
	a.mu.Lock()
	events := a.pending
	a.pending = nil
	a.mu.Unlock()

	if len(events) == 0 {
		return
	}

	log.Printf("Alerter check completed. %d malicious detection(s) pending.", len(events))

	var lines []string
	for _, ev := range events {
		lines = append(lines, fmt.Sprintf(
			"<p><b>%s</b> flow %s: %d packets, %d bytes, duration %.6fs, verdicts %s</p>",
			ev.Timestamp.Format(time.RFC3339), ev.Key, ev.Summary.PacketCount,
			ev.Summary.ByteCount, ev.Summary.Duration, formatResults(ev.Results)))
	}

	body := "<h1>DDoS Detection Summary</h1>" +
		"<p>The following malicious flows were detected during the last check:</p><hr>" +
		strings.Join(lines, "\n")

	aiAnalysis, err := a.getAIAnalysis(strings.Join(lines, "\n"))
	if err != nil {
		log.Printf("Failed to get AI analysis: %v", err)
	} else if aiAnalysis != "" {
		html := markdown.ToHTML([]byte(aiAnalysis), nil, nil)
		body += "<hr><h2>AI-Powered Analysis</h2>" + string(html)
	}

	if a.notifier != nil {
		subject := fmt.Sprintf("DDoS Detection Summary (%d Malicious Flows)", len(events))
		if err := a.notifier.Send(subject, body); err != nil {
			log.Printf("ERROR: Failed to send consolidated alert notification: %v", err)
		} else {
			log.Printf("INFO: Consolidated alert notification sent successfully.")
		}
	}
}

func formatResults(results []model.ClassificationResult) string {
	var parts []string
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s=%.3f/%d", r.ModelID, r.Probability, r.Label))
	}
	return strings.Join(parts, ", ")
}

// getAIAnalysis asks the configured analyzer for an assessment of the
// pending detections.
func (a *Alerter) getAIAnalysis(content string) (string, error) {
	if a.analyzer == nil {
		return "", nil
	}

	log.Println("Requesting AI analysis for detection summary...")
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	out, err := a.analyzer.AnalyzeTraffic(ctx, content)
	if err != nil {
		return "", fmt.Errorf("AI analysis failed: %w", err)
	}
	return out, nil
}
