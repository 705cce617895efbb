package capture

import (
	"context"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

const defaultSnapshotLen int32 = 1600

// LiveSource captures packets from a network interface.
type LiveSource struct {
	handle *pcap.Handle
}

// OpenLive opens the interface in promiscuous mode. An optional BPF
// filter narrows the feed before parsing.
func OpenLive(iface string, snaplen int32, bpf string) (*LiveSource, error) {
	if snaplen <= 0 {
		snaplen = defaultSnapshotLen
	}
	handle, err := pcap.OpenLive(iface, snaplen, true, pcap.BlockForever)
	if err != nil {
		return nil, err
	}
	if bpf != "" {
		if err := handle.SetBPFFilter(bpf); err != nil {
			handle.Close()
			return nil, err
		}
	}
	return &LiveSource{handle: handle}, nil
}

// Records parses captured packets onto out until the context is done
// or the capture handle is exhausted, then closes out. The context
// deadline is how a time-bounded run stops the feed; it is checked
// cooperatively once per packet.
func (s *LiveSource) Records(ctx context.Context, out chan<- *model.PacketRecord) {
	defer close(out)

	packetSource := gopacket.NewPacketSource(s.handle, s.handle.LinkType())
	for packet := range packetSource.Packets() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rec, err := ParsePacket(packet)
		if err != nil {
			// Unsupported packet types are expected on a live interface.
			continue
		}
		select {
		case out <- rec:
		case <-ctx.Done():
			return
		}
	}
	log.Println("Live capture source exhausted.")
}

// Close releases the capture handle.
func (s *LiveSource) Close() {
	s.handle.Close()
}
