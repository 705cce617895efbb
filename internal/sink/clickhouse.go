package sink

import (
	"context"
	"fmt"
	"log"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

const createDetectionsTable = `
CREATE TABLE IF NOT EXISTS detections (
    ID           String,
    Timestamp    DateTime,
    SrcIP        String,
    DstIP        String,
    SrcPort      UInt16,
    DstPort      UInt16,
    Protocol     UInt8,
    Duration     Float64,
    PacketCount  UInt64,
    ByteCount    UInt64,
    Features     Array(Float64),
    ModelIDs     Array(String),
    Probas       Array(Float64),
    Labels       Array(UInt8),
    Malicious    UInt8
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Timestamp, SrcIP);
`

// ClickHouseSink stores every evaluated flow in the detections table.
type ClickHouseSink struct {
	conn driver.Conn
}

// NewClickHouseSink connects to ClickHouse and ensures the detections
// table exists.
func NewClickHouseSink(cfg config.ClickHouseConfig) (*ClickHouseSink, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createDetectionsTable); err != nil {
		return nil, fmt.Errorf("failed to create detections table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured detections table exists.")

	return &ClickHouseSink{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write inserts one detection event.
func (s *ClickHouseSink) Write(ev *model.DetectionEvent) error {
	batch, err := s.conn.PrepareBatch(context.Background(), "INSERT INTO detections")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	ids := make([]string, 0, len(ev.Results))
	probas := make([]float64, 0, len(ev.Results))
	labels := make([]uint8, 0, len(ev.Results))
	for _, r := range ev.Results {
		ids = append(ids, r.ModelID)
		probas = append(probas, r.Probability)
		labels = append(labels, uint8(r.Label))
	}

	malicious := uint8(0)
	if ev.Malicious {
		malicious = 1
	}

	err = batch.Append(
		ev.ID,
		ev.Timestamp,
		ev.Key.AddrA,
		ev.Key.AddrB,
		ev.Key.PortA,
		ev.Key.PortB,
		ev.Key.Proto,
		ev.Summary.Duration,
		ev.Summary.PacketCount,
		ev.Summary.ByteCount,
		[]float64(ev.Features),
		ids,
		probas,
		labels,
		malicious,
	)
	if err != nil {
		return fmt.Errorf("failed to append detection to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// Close releases the connection.
func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}
