package probe

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// RecordHandler is a function that processes a received PacketRecord.
type RecordHandler func(rec *model.PacketRecord)

// Subscriber receives packet records from a NATS subject. Messages are
// decoded and handled on a single dispatch goroutine that Close joins,
// so once Close returns the handler is guaranteed not to run again.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	msgs    chan *nats.Msg
	quit    chan struct{}
	wg      sync.WaitGroup
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.ProbeConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Subscriber{
		nc:      nc,
		subject: cfg.Subject,
		msgs:    make(chan *nats.Msg, 1024),
		quit:    make(chan struct{}),
	}, nil
}

// Start subscribes to the configured subject and processes messages
// with the provided handler. Undecodable messages are logged and
// dropped; they never abort the subscription.
func (s *Subscriber) Start(handler RecordHandler) error {
	sub, err := s.nc.ChanSubscribe(s.subject, s.msgs)
	if err != nil {
		return err
	}
	s.sub = sub
	s.startDispatch(handler)
	log.Printf("Subscribed to '%s'. Waiting for packet records...", s.subject)
	return nil
}

func (s *Subscriber) startDispatch(handler RecordHandler) {
	s.wg.Add(1)
	go s.dispatch(handler)
}

func (s *Subscriber) dispatch(handler RecordHandler) {
	defer s.wg.Done()
	for {
		select {
		case msg := <-s.msgs:
			var rec model.PacketRecord
			if err := json.Unmarshal(msg.Data, &rec); err != nil {
				log.Printf("Error unmarshalling packet record: %v", err)
				continue
			}
			handler(&rec)
		case <-s.quit:
			return
		}
	}
}

// Close unsubscribes, waits for any in-flight handler invocation to
// finish, and closes the NATS connection. Callers may tear down the
// handler's targets as soon as Close returns.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	close(s.quit)
	s.wg.Wait()
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
