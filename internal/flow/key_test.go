package flow

import "testing"

func TestNormalizeKeySymmetry(t *testing.T) {
	cases := []struct {
		srcIP, dstIP     string
		srcPort, dstPort uint16
		proto            uint8
	}{
		{"1.2.3.4", "9.9.9.9", 5000, 80, 6},
		{"10.0.0.1", "10.0.0.2", 443, 50000, 6},
		{"192.168.0.1", "8.8.8.8", 12345, 53, 17},
		{"10.0.0.1", "10.0.0.1", 1000, 2000, 6},
		{"2001:db8::1", "2001:db8::2", 0, 0, 17},
	}

	for _, c := range cases {
		forward := NormalizeKey(c.srcIP, c.dstIP, c.srcPort, c.dstPort, c.proto)
		reverse := NormalizeKey(c.dstIP, c.srcIP, c.dstPort, c.srcPort, c.proto)
		if forward != reverse {
			t.Errorf("normalize(%s:%d, %s:%d) not symmetric: %v vs %v",
				c.srcIP, c.srcPort, c.dstIP, c.dstPort, forward, reverse)
		}
	}
}

func TestNormalizeKeyString(t *testing.T) {
	key := NormalizeKey("1.2.3.4", "9.9.9.9", 5000, 80, 6)
	if key.String() != NormalizeKey("9.9.9.9", "1.2.3.4", 80, 5000, 6).String() {
		t.Error("String() differs for the two directions of one conversation")
	}
}
