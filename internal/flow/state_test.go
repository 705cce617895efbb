package flow

import (
	"math"
	"testing"
	"time"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

func packetAt(ts time.Time, length int, flags uint16) *model.PacketRecord {
	rec := &model.PacketRecord{
		Timestamp: ts,
		SrcIP:     "1.2.3.4",
		DstIP:     "9.9.9.9",
		SrcPort:   5000,
		DstPort:   80,
		Proto:     6,
		Length:    length,
	}
	if flags != 0 {
		rec.TCPFlags = flags
		rec.HasFlags = true
	}
	return rec
}

func almostEqual(a, b, tol float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= tol*scale
}

func TestStateSizeStatistics(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewState(packetAt(base, 100, 0))
	s.Update(packetAt(base.Add(time.Second), 200, 0))
	s.Update(packetAt(base.Add(2*time.Second), 300, 0))

	sum := s.Summarize()
	if sum.PktMean != 200 {
		t.Errorf("mean = %v, want 200", sum.PktMean)
	}
	if !almostEqual(sum.PktVar, 6666.666666666667, 1e-6) {
		t.Errorf("population variance = %v, want ~6666.67", sum.PktVar)
	}
	if !almostEqual(sum.PktStd, 81.64965809277261, 1e-6) {
		t.Errorf("population std = %v, want ~81.65", sum.PktStd)
	}
	if sum.PktMin != 100 || sum.PktMax != 300 {
		t.Errorf("min/max = %v/%v, want 100/300", sum.PktMin, sum.PktMax)
	}
	if sum.PacketCount != 3 || sum.ByteCount != 600 {
		t.Errorf("count/bytes = %d/%d, want 3/600", sum.PacketCount, sum.ByteCount)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	base := time.Now()
	s := NewState(packetAt(base, 64, model.FlagSYN))
	s.Update(packetAt(base.Add(time.Millisecond), 128, model.FlagACK|model.FlagPSH))

	first := s.Summarize()
	second := s.Summarize()
	if first != second {
		t.Errorf("summarize not idempotent: %+v vs %+v", first, second)
	}
}

// Welford accumulation must agree with the buffered computation within
// 1e-6 relative tolerance.
func TestStateMatchesBufferedComputation(t *testing.T) {
	sizes := []int{40, 1500, 52, 977, 60, 1500, 41, 638, 120, 1337}
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s := NewState(packetAt(base, sizes[0], 0))
	for i, length := range sizes[1:] {
		s.Update(packetAt(base.Add(time.Duration(i+1)*17*time.Millisecond), length, 0))
	}
	sum := s.Summarize()

	var total float64
	for _, v := range sizes {
		total += float64(v)
	}
	mean := total / float64(len(sizes))
	var m2 float64
	for _, v := range sizes {
		d := float64(v) - mean
		m2 += d * d
	}
	variance := m2 / float64(len(sizes))

	if !almostEqual(sum.PktMean, mean, 1e-6) {
		t.Errorf("mean = %v, buffered = %v", sum.PktMean, mean)
	}
	if !almostEqual(sum.PktVar, variance, 1e-6) {
		t.Errorf("variance = %v, buffered = %v", sum.PktVar, variance)
	}
	if !almostEqual(sum.PktStd, math.Sqrt(variance), 1e-6) {
		t.Errorf("std = %v, buffered = %v", sum.PktStd, math.Sqrt(variance))
	}
}

func TestNegativeInterArrivalClamped(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewState(packetAt(base, 100, 0))
	// Out-of-order delivery: second packet is stamped before the first.
	s.Update(packetAt(base.Add(-time.Second), 100, 0))
	s.Update(packetAt(base.Add(time.Second), 100, 0))

	sum := s.Summarize()
	if sum.AvgInterArrival < 0 {
		t.Errorf("inter-arrival mean %v went negative", sum.AvgInterArrival)
	}
	if sum.FwdIATTotal < 0 {
		t.Errorf("forward IAT total %v went negative", sum.FwdIATTotal)
	}
}

func TestFlagCounters(t *testing.T) {
	base := time.Now()
	s := NewState(packetAt(base, 64, model.FlagSYN))
	s.Update(packetAt(base.Add(time.Millisecond), 128, model.FlagACK|model.FlagPSH))
	s.Update(packetAt(base.Add(2*time.Millisecond), 256, model.FlagACK|model.FlagURG))
	s.Update(packetAt(base.Add(3*time.Millisecond), 60, model.FlagFIN|model.FlagACK))

	sum := s.Summarize()
	if sum.SYNCount != 1 || sum.PSHCount != 1 || sum.URGCount != 1 || sum.FINCount != 1 {
		t.Errorf("flag counts SYN/PSH/URG/FIN = %d/%d/%d/%d, want 1/1/1/1",
			sum.SYNCount, sum.PSHCount, sum.URGCount, sum.FINCount)
	}
	if sum.ACKCount != 3 {
		t.Errorf("ACK count = %d, want 3", sum.ACKCount)
	}
}

func TestSinglePacketDurationEpsilon(t *testing.T) {
	s := NewState(packetAt(time.Now(), 100, 0))
	sum := s.Summarize()
	if sum.Duration != durationEpsilon {
		t.Errorf("single-packet duration = %v, want epsilon %v", sum.Duration, durationEpsilon)
	}
}

func TestDirectionalSplit(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewState(packetAt(base, 100, 0)) // forward: 1.2.3.4 -> 9.9.9.9

	reply := &model.PacketRecord{
		Timestamp: base.Add(time.Second),
		SrcIP:     "9.9.9.9",
		DstIP:     "1.2.3.4",
		SrcPort:   80,
		DstPort:   5000,
		Proto:     6,
		Length:    1500,
	}
	s.Update(reply)
	s.Update(packetAt(base.Add(2*time.Second), 200, 0))

	sum := s.Summarize()
	if sum.FwdPktMax != 200 || sum.FwdPktMin != 100 {
		t.Errorf("fwd max/min = %v/%v, want 200/100", sum.FwdPktMax, sum.FwdPktMin)
	}
	if sum.BwdPktMax != 1500 || sum.BwdPktMean != 1500 {
		t.Errorf("bwd max/mean = %v/%v, want 1500/1500", sum.BwdPktMax, sum.BwdPktMean)
	}
	if sum.OriginAddr != "1.2.3.4" || sum.ReplyPort != 80 {
		t.Errorf("origin endpoints = %s reply port %d, want 1.2.3.4 / 80", sum.OriginAddr, sum.ReplyPort)
	}
	// Forward IAT spans the two forward packets, 2s apart.
	if !almostEqual(sum.FwdIATTotal, 2.0, 1e-6) {
		t.Errorf("fwd IAT total = %v, want 2.0", sum.FwdIATTotal)
	}
}
