package flow

import (
	"time"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// durationEpsilon is the floor for flow duration, so rate features
// never divide by zero on single-packet flows.
const durationEpsilon = 1e-6

// State is the mutable per-flow statistics accumulator. Updates are
// append-only; Summarize is a pure projection. A State is owned
// exclusively by the table shard that created it.
type State struct {
	firstTS time.Time
	lastTS  time.Time

	packets uint64
	bytes   uint64

	// The flow origin is the first observed packet's source; forward
	// means origin -> reply.
	originAddr string
	originPort uint16
	replyAddr  string
	replyPort  uint16

	size    runningStats
	fwdSize runningStats
	bwdSize runningStats

	inter  runningStats
	fwdIAT runningStats
	bwdIAT runningStats

	lastFwdTS time.Time
	lastBwdTS time.Time

	syn, psh, urg, fin, rst, ack uint64
}

// NewState creates the accumulator for a flow whose first packet is rec.
func NewState(rec *model.PacketRecord) *State {
	s := &State{
		firstTS:    rec.Timestamp,
		lastTS:     rec.Timestamp,
		originAddr: rec.SrcIP,
		originPort: rec.SrcPort,
		replyAddr:  rec.DstIP,
		replyPort:  rec.DstPort,
	}
	s.Update(rec)
	return s
}

// Update folds one packet into the flow statistics. Inter-arrival
// deltas are clamped at zero: out-of-order delivery from the capture
// feed must not produce negative samples.
func (s *State) Update(rec *model.PacketRecord) {
	forward := rec.SrcIP == s.originAddr && rec.SrcPort == s.originPort
	length := float64(rec.Length)

	if s.packets > 0 {
		s.inter.add(clampIAT(rec.Timestamp.Sub(s.lastTS)))
	}
	s.packets++
	s.bytes += uint64(rec.Length)
	s.lastTS = rec.Timestamp

	s.size.add(length)
	if forward {
		if !s.lastFwdTS.IsZero() {
			s.fwdIAT.add(clampIAT(rec.Timestamp.Sub(s.lastFwdTS)))
		}
		s.fwdSize.add(length)
		s.lastFwdTS = rec.Timestamp
	} else {
		if !s.lastBwdTS.IsZero() {
			s.bwdIAT.add(clampIAT(rec.Timestamp.Sub(s.lastBwdTS)))
		}
		s.bwdSize.add(length)
		s.lastBwdTS = rec.Timestamp
	}

	if rec.HasFlags {
		if rec.TCPFlags&model.FlagSYN != 0 {
			s.syn++
		}
		if rec.TCPFlags&model.FlagPSH != 0 {
			s.psh++
		}
		if rec.TCPFlags&model.FlagURG != 0 {
			s.urg++
		}
		if rec.TCPFlags&model.FlagFIN != 0 {
			s.fin++
		}
		if rec.TCPFlags&model.FlagRST != 0 {
			s.rst++
		}
		if rec.TCPFlags&model.FlagACK != 0 {
			s.ack++
		}
	}
}

func clampIAT(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

// LastSeen returns the timestamp of the most recent packet.
func (s *State) LastSeen() time.Time {
	return s.lastTS
}

// Summarize projects the accumulated statistics into an immutable
// snapshot. It does not mutate the state; calling it twice with no
// intervening Update returns identical results.
func (s *State) Summarize() model.FlowSummary {
	duration := s.lastTS.Sub(s.firstTS).Seconds()
	if duration < durationEpsilon {
		duration = durationEpsilon
	}

	return model.FlowSummary{
		Duration:    duration,
		PacketCount: s.packets,
		ByteCount:   s.bytes,

		OriginAddr: s.originAddr,
		OriginPort: s.originPort,
		ReplyAddr:  s.replyAddr,
		ReplyPort:  s.replyPort,

		PktMean:         s.size.Mean(),
		PktStd:          s.size.Std(),
		PktVar:          s.size.Variance(),
		PktMin:          s.size.Min(),
		PktMax:          s.size.Max(),
		AvgPktSize:      s.size.Mean(),
		AvgInterArrival: s.inter.Mean(),

		FwdPktMax:  s.fwdSize.Max(),
		FwdPktMin:  s.fwdSize.Min(),
		FwdPktMean: s.fwdSize.Mean(),
		FwdPktStd:  s.fwdSize.Std(),
		BwdPktMax:  s.bwdSize.Max(),
		BwdPktMin:  s.bwdSize.Min(),
		BwdPktMean: s.bwdSize.Mean(),
		BwdPktStd:  s.bwdSize.Std(),

		FwdIATTotal: s.fwdIAT.Sum(),
		FwdIATMean:  s.fwdIAT.Mean(),
		FwdIATStd:   s.fwdIAT.Std(),
		FwdIATMax:   s.fwdIAT.Max(),
		BwdIATTotal: s.bwdIAT.Sum(),
		BwdIATMean:  s.bwdIAT.Mean(),
		BwdIATStd:   s.bwdIAT.Std(),
		BwdIATMax:   s.bwdIAT.Max(),

		SYNCount: s.syn,
		PSHCount: s.psh,
		URGCount: s.urg,
		FINCount: s.fin,
		RSTCount: s.rst,
		ACKCount: s.ack,
	}
}
