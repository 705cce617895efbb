package model

import (
	"fmt"
	"time"
)

// TCP flag bit masks as they appear in the raw flags field of a
// captured frame.
const (
	FlagFIN uint16 = 0x001
	FlagSYN uint16 = 0x002
	FlagRST uint16 = 0x004
	FlagPSH uint16 = 0x008
	FlagACK uint16 = 0x010
	FlagURG uint16 = 0x020
)

// PacketRecord holds the metadata extracted from a single captured
// packet. Any field may be zero when the capture feed could not fill
// it; timestamps are not guaranteed monotonic.
type PacketRecord struct {
	Timestamp time.Time `json:"timestamp"`
	SrcIP     string    `json:"src_ip"`
	DstIP     string    `json:"dst_ip"`
	SrcPort   uint16    `json:"src_port"`
	DstPort   uint16    `json:"dst_port"`
	Proto     uint8     `json:"proto"`
	Length    int       `json:"length"`
	TCPFlags  uint16    `json:"tcp_flags"`
	HasFlags  bool      `json:"has_flags"`
}

// FlowKey is the direction-invariant identity of a bidirectional flow.
// It is produced by flow.NormalizeKey and never mutated afterwards.
type FlowKey struct {
	AddrA string `json:"addr_a"`
	AddrB string `json:"addr_b"`
	PortA uint16 `json:"port_a"`
	PortB uint16 `json:"port_b"`
	Proto uint8  `json:"proto"`
}

// String renders the key in the canonical form used for sharding and
// map lookups.
func (k FlowKey) String() string {
	return fmt.Sprintf("%s:%d-%s:%d-%d", k.AddrA, k.PortA, k.AddrB, k.PortB, k.Proto)
}

// FlowSummary is an immutable statistical snapshot of a flow. Forward
// is the direction of the flow's first packet; Origin* endpoints are
// that packet's source and destination.
type FlowSummary struct {
	Duration    float64 `json:"duration"`
	PacketCount uint64  `json:"packet_count"`
	ByteCount   uint64  `json:"byte_count"`

	OriginAddr string `json:"origin_addr"`
	OriginPort uint16 `json:"origin_port"`
	ReplyAddr  string `json:"reply_addr"`
	ReplyPort  uint16 `json:"reply_port"`

	PktMean         float64 `json:"pkt_mean"`
	PktStd          float64 `json:"pkt_std"`
	PktVar          float64 `json:"pkt_var"`
	PktMin          float64 `json:"pkt_min"`
	PktMax          float64 `json:"pkt_max"`
	AvgPktSize      float64 `json:"avg_pkt_size"`
	AvgInterArrival float64 `json:"avg_inter_arrival"`

	FwdPktMax  float64 `json:"fwd_pkt_max"`
	FwdPktMin  float64 `json:"fwd_pkt_min"`
	FwdPktMean float64 `json:"fwd_pkt_mean"`
	FwdPktStd  float64 `json:"fwd_pkt_std"`
	BwdPktMax  float64 `json:"bwd_pkt_max"`
	BwdPktMin  float64 `json:"bwd_pkt_min"`
	BwdPktMean float64 `json:"bwd_pkt_mean"`
	BwdPktStd  float64 `json:"bwd_pkt_std"`

	FwdIATTotal float64 `json:"fwd_iat_total"`
	FwdIATMean  float64 `json:"fwd_iat_mean"`
	FwdIATStd   float64 `json:"fwd_iat_std"`
	FwdIATMax   float64 `json:"fwd_iat_max"`
	BwdIATTotal float64 `json:"bwd_iat_total"`
	BwdIATMean  float64 `json:"bwd_iat_mean"`
	BwdIATStd   float64 `json:"bwd_iat_std"`
	BwdIATMax   float64 `json:"bwd_iat_max"`

	SYNCount uint64 `json:"syn_count"`
	PSHCount uint64 `json:"psh_count"`
	URGCount uint64 `json:"urg_count"`
	FINCount uint64 `json:"fin_count"`
	RSTCount uint64 `json:"rst_count"`
	ACKCount uint64 `json:"ack_count"`
}

// FeatureVector is the fixed-order numeric vector fed to the
// classifier. Its length and order are pinned by the training schema
// (see the feature package).
type FeatureVector []float64

// ClassificationResult is a single model's verdict for one flow.
type ClassificationResult struct {
	ModelID     string  `json:"model_id"`
	Probability float64 `json:"probability"`
	Label       int     `json:"label"`
}

// DetectionEvent is one evaluated flow: its identity, summary,
// feature vector and per-model verdicts. One event is emitted per
// polled or evicted flow.
type DetectionEvent struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Key       FlowKey                `json:"key"`
	Summary   FlowSummary            `json:"summary"`
	Features  FeatureVector          `json:"features"`
	Results   []ClassificationResult `json:"results"`
	Malicious bool                   `json:"malicious"`
}
