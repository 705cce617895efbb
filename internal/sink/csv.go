// Package sink persists evaluated flows: an append-only CSV prediction
// log and an optional ClickHouse detections table.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/feature"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// CSVSink appends one tabular row per evaluated flow. The header is
// written exactly once, when the target file is new or empty.
type CSVSink struct {
	mu       sync.Mutex
	file     *os.File
	writer   *csv.Writer
	modelIDs []string
}

// NewCSVSink opens (or creates) the prediction log. modelIDs fixes the
// per-model column order; it must match the gateway's result order.
func NewCSVSink(path string, modelIDs []string) (*CSVSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open prediction log: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	s := &CSVSink{
		file:     file,
		writer:   csv.NewWriter(file),
		modelIDs: modelIDs,
	}

	if info.Size() == 0 {
		if err := s.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *CSVSink) writeHeader() error {
	header := []string{"timestamp", "src_ip", "dst_ip", "src_port", "dst_port", "proto"}
	header = append(header, feature.Names...)
	for _, id := range s.modelIDs {
		header = append(header, id+"_proba")
	}
	for _, id := range s.modelIDs {
		header = append(header, id+"_label")
	}
	header = append(header, "final_label")

	if err := s.writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Write appends one row and flushes it so the log survives a crash.
func (s *CSVSink) Write(ev *model.DetectionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := []string{
		ev.Timestamp.Format("2006-01-02 15:04:05"),
		ev.Key.AddrA,
		ev.Key.AddrB,
		strconv.Itoa(int(ev.Key.PortA)),
		strconv.Itoa(int(ev.Key.PortB)),
		strconv.Itoa(int(ev.Key.Proto)),
	}
	for _, v := range ev.Features {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	for _, r := range ev.Results {
		row = append(row, strconv.FormatFloat(r.Probability, 'g', -1, 64))
	}
	for _, r := range ev.Results {
		row = append(row, strconv.Itoa(r.Label))
	}
	if ev.Malicious {
		row = append(row, "MALICIOUS")
	} else {
		row = append(row, "BENIGN")
	}

	if err := s.writer.Write(row); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes and closes the log file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
