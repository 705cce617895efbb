package alerter

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

type fakeNotifier struct {
	mu       sync.Mutex
	subjects []string
	bodies   []string
}

func (n *fakeNotifier) Send(subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return nil
}

func event(malicious bool) *model.DetectionEvent {
	return &model.DetectionEvent{
		ID:        "ev",
		Timestamp: time.Now(),
		Key:       model.FlowKey{AddrA: "1.2.3.4", AddrB: "9.9.9.9", PortA: 5000, PortB: 80, Proto: 6},
		Summary:   model.FlowSummary{PacketCount: 3, ByteCount: 448, Duration: 0.02},
		Results:   []model.ClassificationResult{{ModelID: "LR", Probability: 0.9, Label: 1}},
		Malicious: malicious,
	}
}

func newTestAlerter(t *testing.T, n model.Notifier) *Alerter {
	t.Helper()
	a, err := NewAlerter(&config.AlerterConfig{CheckInterval: "1h"}, n, nil)
	if err != nil {
		t.Fatalf("NewAlerter: %v", err)
	}
	return a
}

func TestAlerterFlushesPendingOnStop(t *testing.T) {
	n := &fakeNotifier{}
	a := newTestAlerter(t, n)

	a.Start()
	a.Record(event(true))
	a.Record(event(true))
	a.Stop()

	if len(n.subjects) != 1 {
		t.Fatalf("got %d notifications, want 1 consolidated email", len(n.subjects))
	}
	if !strings.Contains(n.subjects[0], "2 Malicious Flows") {
		t.Fatalf("subject = %q", n.subjects[0])
	}
	if !strings.Contains(n.bodies[0], "1.2.3.4") || !strings.Contains(n.bodies[0], "LR=0.900/1") {
		t.Fatalf("body missing detection details: %q", n.bodies[0])
	}
}

func TestAlerterIgnoresBenignEvents(t *testing.T) {
	n := &fakeNotifier{}
	a := newTestAlerter(t, n)

	a.Start()
	a.Record(event(false))
	a.Stop()

	if len(n.subjects) != 0 {
		t.Fatalf("benign events produced %d notifications", len(n.subjects))
	}
}

func TestAlerterRejectsBadInterval(t *testing.T) {
	_, err := NewAlerter(&config.AlerterConfig{CheckInterval: "soon"}, &fakeNotifier{}, nil)
	if err == nil {
		t.Fatal("expected error for unparseable check_interval")
	}
}
