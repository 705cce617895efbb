package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/classify"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/pipeline"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/sink"
	"github.com/Tayebwa-ian/DDoS-Detection/pkg/pcap"
)

// pcap-analyzer replays a capture file through the detection pipeline
// with mitigation disabled and writes every prediction to the CSV log.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: pcap-analyzer <path_to_pcap_file>")
		os.Exit(1)
	}
	pcapFilePath := os.Args[1]

	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	gateway, err := classify.LoadGateway(cfg.Models)
	if err != nil {
		log.Fatalf("Failed to load classification models: %v", err)
	}

	ids := make([]string, 0, len(cfg.Models.Models))
	for _, m := range cfg.Models.Models {
		ids = append(ids, m.ID)
	}
	csvSink, err := sink.NewCSVSink(cfg.Sinks.CSVPath, ids)
	if err != nil {
		log.Fatalf("Failed to open prediction log: %v", err)
	}

	orch := pipeline.NewOrchestrator(gateway, nil, []model.Sink{csvSink}, pipeline.Options{
		Threshold:        cfg.Pipeline.Threshold,
		FlowTimeout:      time.Hour, // offline runs only flush at the end
		EvictionInterval: time.Hour,
		UndirectedCompat: cfg.Pipeline.UndirectedCompat,
	})

	reader, err := pcap.NewReader(pcapFilePath)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer reader.Close()
	log.Printf("Reading packets from '%s'...", pcapFilePath)

	orch.Start()
	reader.ReadPackets(orch.Input())
	log.Println("Finished reading all packets from pcap file.")

	orch.Stop()
	if err := csvSink.Close(); err != nil {
		log.Printf("WARNING: failed to close prediction log: %v", err)
	}
	log.Println("Analysis complete.")
}
