// Package capture turns raw packets from the capture collaborator into
// PacketRecord values the pipeline understands.
package capture

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// ParsePacket uses gopacket to decode a packet and extract the fields
// the flow table consumes. Non-IPv4 and non-TCP/UDP packets are
// rejected with an error the caller logs and skips.
func ParsePacket(packet gopacket.Packet) (*model.PacketRecord, error) {
	rec := &model.PacketRecord{
		Timestamp: time.Now(), // overwritten by capture metadata when available
		Length:    len(packet.Data()),
	}

	if meta := packet.Metadata(); meta != nil && !meta.Timestamp.IsZero() {
		rec.Timestamp = meta.Timestamp
	}

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return nil, fmt.Errorf("not an IPv4 packet")
	}
	ip := l.(*layers.IPv4)
	rec.SrcIP = ip.SrcIP.String()
	rec.DstIP = ip.DstIP.String()
	rec.Proto = uint8(ip.Protocol)

	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		rec.SrcPort = uint16(tcp.SrcPort)
		rec.DstPort = uint16(tcp.DstPort)
		rec.TCPFlags = tcpFlagBits(tcp)
		rec.HasFlags = true
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		rec.SrcPort = uint16(udp.SrcPort)
		rec.DstPort = uint16(udp.DstPort)
	} else {
		return nil, fmt.Errorf("not a TCP or UDP packet")
	}

	return rec, nil
}

// tcpFlagBits packs the decoded flags back into the raw bit layout the
// flow statistics inspect.
func tcpFlagBits(tcp *layers.TCP) uint16 {
	var bits uint16
	if tcp.FIN {
		bits |= model.FlagFIN
	}
	if tcp.SYN {
		bits |= model.FlagSYN
	}
	if tcp.RST {
		bits |= model.FlagRST
	}
	if tcp.PSH {
		bits |= model.FlagPSH
	}
	if tcp.ACK {
		bits |= model.FlagACK
	}
	if tcp.URG {
		bits |= model.FlagURG
	}
	return bits
}
