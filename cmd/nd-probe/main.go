package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/capture"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/probe"
)

func main() {
	mode := flag.String("mode", "sub", "Operating mode: 'pub' to capture and publish, 'sub' to subscribe and print.")
	iface := flag.String("iface", "", "Interface to capture packets from (required for pub mode).")
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch *mode {
	case "pub":
		runProbe(cfg, *iface)
	case "sub":
		runSubscriber(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runProbe captures packets on the given interface and publishes them
// to NATS for a remote detection engine.
func runProbe(cfg *config.Config, interfaceName string) {
	if interfaceName == "" {
		log.Println("Error: -iface flag is required for pub mode.")
		flag.Usage()
		os.Exit(1)
	}
	log.Printf("Starting nd-probe in PUBLISH mode on interface: %s", interfaceName)

	pub, err := probe.NewPublisher(cfg.Probe)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	src, err := capture.OpenLive(interfaceName, cfg.Capture.SnapshotLen, cfg.Capture.BPF)
	if err != nil {
		log.Fatalf("Error opening device %s: %v", interfaceName, err)
	}
	defer src.Close()

	log.Println("Capture started successfully. Publishing packets to NATS...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records := make(chan *model.PacketRecord, 1024)
	go src.Records(ctx, records)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	published := 0
	for {
		select {
		case rec, ok := <-records:
			if !ok {
				log.Println("Capture feed ended.")
				return
			}
			if err := pub.Publish(rec); err != nil {
				log.Printf("Failed to publish packet: %v", err)
				continue
			}
			published++
			if published%1000 == 0 {
				log.Printf("%d packets published...", published)
			}
		case <-sigChan:
			log.Println("Shutdown signal received, cleaning up...")
			return
		}
	}
}

// runSubscriber subscribes to the packet subject and prints every
// record, which is useful for verifying the transport end to end.
func runSubscriber(cfg *config.Config) {
	log.Println("Starting nd-probe in SUBSCRIBER mode...")

	sub, err := probe.NewSubscriber(cfg.Probe)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	handler := func(rec *model.PacketRecord) {
		log.Printf("Received Packet: %+v", rec)
	}

	if err := sub.Start(handler); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
