package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PipelineConfig holds the knobs of the detection loop itself.
type PipelineConfig struct {
	Interface        string  `yaml:"interface"`
	Duration         string  `yaml:"duration"`
	FlowTimeout      string  `yaml:"flow_timeout"`
	EvictionInterval string  `yaml:"eviction_interval"`
	Threshold        float64 `yaml:"threshold"`
	// UndirectedCompat zeroes the directional features so vectors match
	// models trained against the legacy undirected aggregation.
	UndirectedCompat bool `yaml:"undirected_compat"`
}

// CaptureConfig selects where the engine reads packets from.
type CaptureConfig struct {
	Source      string `yaml:"source"` // "live" or "nats"
	BPF         string `yaml:"bpf"`
	SnapshotLen int32  `yaml:"snapshot_len"`
}

// ProbeConfig holds the NATS transport settings for the capture probe.
type ProbeConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// ModelDef names a single classifier artifact inside the model directory.
type ModelDef struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"` // "logistic" or "tree"
	File string `yaml:"file"`
}

// ModelsConfig describes the inference artifacts loaded at startup.
type ModelsConfig struct {
	Dir    string     `yaml:"dir"`
	Scaler string     `yaml:"scaler"`
	Models []ModelDef `yaml:"models"`
}

// FilterConfig controls the packet-filter data plane.
type FilterConfig struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"`
	Mode    string `yaml:"mode"`
}

// ClickHouseConfig holds the connection details for the detections table.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SinksConfig lists the log sinks detection rows are fanned out to.
type SinksConfig struct {
	CSVPath    string           `yaml:"csv_path"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// APIConfig controls the HTTP status API.
type APIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// SMTPConfig holds the email notification settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// AIConfig holds the settings for AI-assisted alert analysis.
type AIConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// AlerterConfig controls periodic consolidated detection alerts.
type AlerterConfig struct {
	Enabled       bool       `yaml:"enabled"`
	CheckInterval string     `yaml:"check_interval"`
	SMTP          SMTPConfig `yaml:"smtp"`
	AI            AIConfig   `yaml:"ai"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Capture  CaptureConfig  `yaml:"capture"`
	Probe    ProbeConfig    `yaml:"probe"`
	Models   ModelsConfig   `yaml:"models"`
	Filter   FilterConfig   `yaml:"filter"`
	Sinks    SinksConfig    `yaml:"sinks"`
	API      APIConfig      `yaml:"api"`
	Alerter  AlerterConfig  `yaml:"alerter"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return &cfg, nil
}
