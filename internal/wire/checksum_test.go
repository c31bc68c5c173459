package wire_test

import (
	"testing"

	"github.com/seregonwar/rtnetstack/internal/wire"
)

func TestChecksumEmptyBufferIsAllOnes(t *testing.T) {
	if got := wire.Checksum(nil); got != 0xFFFF {
		t.Errorf("Checksum(nil) = 0x%04X, want 0xFFFF", got)
	}
}

func TestChecksumRoundTrip(t *testing.T) {
	buf := []byte{0x45, 0x00, 0x00, 0x28, 0x12, 0x34, 0x00, 0x00, 0x40, 0x11, 0x00, 0x00}

	sum := wire.Checksum(buf)
	buf[10] = byte(sum >> 8)
	buf[11] = byte(sum)

	if got := wire.Checksum(buf); got != 0 {
		t.Errorf("Checksum after inserting computed value = 0x%04X, want 0", got)
	}
}

func TestChecksumOddTrailingByte(t *testing.T) {
	// A single odd byte is zero-padded in the low position before summing.
	a := wire.Checksum([]byte{0x01})
	b := wire.Checksum([]byte{0x01, 0x00})
	if a != b {
		t.Errorf("odd-length checksum 0x%04X != even-padded checksum 0x%04X", a, b)
	}
}

func TestUpperLayerChecksumDeterministic(t *testing.T) {
	var src, dst [wire.IPv6AddrSize]byte
	src[15] = 1
	dst[15] = 2

	header := []byte{0x30, 0x39, 0x00, 0x35, 0x00, 0x0C, 0x00, 0x00}
	payload := []byte("hello")

	first := wire.UpperLayerChecksum(src, dst, wire.NextHeaderUDP, header, payload)
	second := wire.UpperLayerChecksum(src, dst, wire.NextHeaderUDP, header, payload)

	if first != second {
		t.Errorf("checksum not deterministic: 0x%04X != 0x%04X", first, second)
	}
}

func TestUpperLayerChecksumVerifies(t *testing.T) {
	var src, dst [wire.IPv6AddrSize]byte
	src[15] = 1
	dst[15] = 2

	payload := []byte("ping")
	header := wire.UDPHeader{SrcPort: 1234, DstPort: 53, Length: wire.UDPHeaderSize + uint16(len(payload))}

	buf := make([]byte, wire.UDPHeaderSize)
	if err := wire.PutUDP(buf, header); err != nil {
		t.Fatalf("PutUDP: %v", err)
	}

	sum := wire.UpperLayerChecksum(src, dst, wire.NextHeaderUDP, buf, payload)
	buf[6] = byte(sum >> 8)
	buf[7] = byte(sum)

	verify := wire.UpperLayerChecksum(src, dst, wire.NextHeaderUDP, buf, payload)
	if verify != 0 {
		t.Errorf("verification checksum = 0x%04X, want 0", verify)
	}
}
