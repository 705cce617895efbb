package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/ai"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/alerter"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/api"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/capture"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/classify"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/mitigate"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/notification"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/pipeline"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/probe"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/sink"
)

func main() {
	log.Println("Starting nd-engine...")

	// 1. Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	flowTimeout := parseDurationOr(cfg.Pipeline.FlowTimeout, 30*time.Second)
	evictionInterval := parseDurationOr(cfg.Pipeline.EvictionInterval, 10*time.Second)

	// 2. Load classifier artifacts. Missing or malformed artifacts are
	// fatal: an engine that cannot classify must not start.
	gateway, err := classify.LoadGateway(cfg.Models)
	if err != nil {
		log.Fatalf("Failed to load classification models: %v", err)
	}
	log.Printf("Loaded %d classification model(s).", len(cfg.Models.Models))

	// 3. Set up mitigation, if enabled and privileged.
	var ctrl *mitigate.Controller
	if cfg.Filter.Enabled {
		if os.Geteuid() != 0 {
			log.Println("WARNING: not running as root, packet filtering disabled; continuing in detection-only mode.")
		} else {
			filter := mitigate.NewXDPFilter(cfg.Filter.Command)
			ctrl = mitigate.NewController(filter, cfg.Pipeline.Interface, cfg.Filter.Mode)
			if err := ctrl.Initialize(); err != nil {
				log.Printf("WARNING: failed to load packet filter, continuing in detection-only mode: %v", err)
			}
		}
	}

	// 4. Set up sinks.
	var sinks []model.Sink
	if cfg.Sinks.CSVPath != "" {
		ids := make([]string, 0, len(cfg.Models.Models))
		for _, m := range cfg.Models.Models {
			ids = append(ids, m.ID)
		}
		csvSink, err := sink.NewCSVSink(cfg.Sinks.CSVPath, ids)
		if err != nil {
			log.Fatalf("Failed to open prediction log: %v", err)
		}
		sinks = append(sinks, csvSink)
	}
	if cfg.Sinks.ClickHouse.Enabled {
		chSink, err := sink.NewClickHouseSink(cfg.Sinks.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to set up ClickHouse sink: %v", err)
		}
		sinks = append(sinks, chSink)
	}

	// 5. Assemble the pipeline.
	orch := pipeline.NewOrchestrator(gateway, ctrl, sinks, pipeline.Options{
		Threshold:        cfg.Pipeline.Threshold,
		FlowTimeout:      flowTimeout,
		EvictionInterval: evictionInterval,
		UndirectedCompat: cfg.Pipeline.UndirectedCompat,
	})

	var al *alerter.Alerter
	if cfg.Alerter.Enabled {
		notifier := notification.NewEmailNotifier(cfg.Alerter.SMTP)
		var analyzer model.Analyzer
		if cfg.Alerter.AI.Enabled {
			a, err := ai.NewDetectionAnalyzer(&cfg.Alerter.AI)
			if err != nil {
				log.Printf("WARNING: AI analysis unavailable: %v", err)
			} else {
				analyzer = a
			}
		}
		al, err = alerter.NewAlerter(&cfg.Alerter, notifier, analyzer)
		if err != nil {
			log.Fatalf("Failed to create alerter: %v", err)
		}
		orch.AddRecorder(al)
	}

	orch.Start()
	if al != nil {
		al.Start()
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API.ListenAddr, orch, ctrl)
		apiServer.Start()
	}

	// 6. Run capture. A configured duration bounds the run; a signal
	// always ends it.
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if cfg.Pipeline.Duration != "" {
		d, err := time.ParseDuration(cfg.Pipeline.Duration)
		if err != nil {
			log.Fatalf("Invalid pipeline duration %q: %v", cfg.Pipeline.Duration, err)
		}
		ctx, cancel = context.WithTimeout(context.Background(), d)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	switch cfg.Capture.Source {
	case "nats":
		sub, err := probe.NewSubscriber(cfg.Probe)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		input := orch.Input()
		if err := sub.Start(func(rec *model.PacketRecord) {
			input <- rec
		}); err != nil {
			log.Fatalf("Failed to subscribe to packet feed: %v", err)
		}
		log.Printf("Consuming packets from NATS subject %q.", cfg.Probe.Subject)

		select {
		case <-sigChan:
			log.Println("Shutdown signal received.")
		case <-ctx.Done():
			log.Println("Configured capture duration elapsed.")
		}
		sub.Close()
		orch.CloseInput()

	default: // live capture
		src, err := capture.OpenLive(cfg.Pipeline.Interface, cfg.Capture.SnapshotLen, cfg.Capture.BPF)
		if err != nil {
			log.Fatalf("Failed to open interface %s: %v", cfg.Pipeline.Interface, err)
		}
		go src.Records(ctx, orch.Input())
		log.Printf("Capturing on %s.", cfg.Pipeline.Interface)

		select {
		case <-sigChan:
			log.Println("Shutdown signal received.")
		case <-ctx.Done():
			log.Println("Configured capture duration elapsed.")
		}
		cancel()
		src.Close()
	}

	// 7. Ordered shutdown: API first, then pipeline (flushes remaining
	// flows and unloads the filter), then alerter and sinks.
	if apiServer != nil {
		apiServer.Stop()
	}
	orch.Stop()
	if al != nil {
		al.Stop()
	}
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Printf("WARNING: failed to close sink: %v", err)
		}
	}
	log.Println("Shutdown complete.")
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("WARNING: invalid duration %q, using default %s", s, def)
		return def
	}
	return d
}
