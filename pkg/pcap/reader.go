package pcap

import (
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/capture"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// Reader reads packets from a pcap file.
type Reader struct {
	handle *pcap.Handle
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadPackets reads all packets from the pcap file, sends the parsed
// PacketRecord values to the provided channel and closes it when done.
func (r *Reader) ReadPackets(out chan<- *model.PacketRecord) {
	defer close(out)

	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	skipped := 0
	for packet := range packetSource.Packets() {
		rec, err := capture.ParsePacket(packet)
		if err != nil {
			skipped++
			continue
		}
		out <- rec
	}
	if skipped > 0 {
		log.Printf("Skipped %d unsupported packets while reading the capture file.", skipped)
	}
}
