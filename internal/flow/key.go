package flow

import (
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// NormalizeKey canonicalizes an endpoint 5-tuple so that packets from
// either direction of the same conversation collide to the same key.
// The order is lexicographic on address, then numeric on port; it is
// fixed for the lifetime of the process.
func NormalizeKey(srcIP, dstIP string, srcPort, dstPort uint16, proto uint8) model.FlowKey {
	if srcIP < dstIP || (srcIP == dstIP && srcPort <= dstPort) {
		return model.FlowKey{AddrA: srcIP, AddrB: dstIP, PortA: srcPort, PortB: dstPort, Proto: proto}
	}
	return model.FlowKey{AddrA: dstIP, AddrB: srcIP, PortA: dstPort, PortB: srcPort, Proto: proto}
}
