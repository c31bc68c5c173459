package wire

import "encoding/binary"

// Checksum computes the RFC 1071 Internet checksum over buf: a one's
// complement 16-bit accumulation, folded back into 16 bits (with the
// low-order byte of an odd trailing byte zero-padded), then complemented —
// the value as it is carried on the wire.
//
// Checksum is pure and deterministic: for any buf of length 0..MTU the
// result is in 0..0xFFFF, and Checksum(nil) == 0xFFFF (empty buffer, zero
// initial sum, folds to zero, complements to all-ones).
//
// Round-trip property: if the result of Checksum is written into the
// buffer's checksum field and Checksum is computed again over the whole
// buffer, the result is 0 — the field's own value cancels the sum it was
// computed from.
func Checksum(buf []byte) uint16 {
	return ^foldSum(partialSum(0, buf))
}

// partialSum accumulates buf into the running one's-complement sum seed,
// without folding. Used to chain the pseudo-header, the protocol header,
// and the payload into a single accumulator before a final fold.
func partialSum(seed uint32, buf []byte) uint32 {
	sum := seed

	n := len(buf)
	i := 0
	for ; i+1 < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(buf[i : i+2]))
	}
	if i < n {
		// Odd trailing byte: zero-padded in the low position.
		sum += uint32(buf[i]) << 8
	}

	return sum
}

// foldSum folds a 32-bit accumulator down to 16 bits by repeatedly adding
// the carry back in, until it fits.
func foldSum(sum uint32) uint16 {
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return uint16(sum)
}

// pseudoHeaderSum accumulates the IPv6 pseudo-header (RFC 8200 Section 8.1):
// source address, destination address, upper-layer payload length as a
// 32-bit field, and next header as a 32-bit field (zero-padded in the high
// three bytes), all folded into the same accumulator the payload is added
// to.
func pseudoHeaderSum(src, dst [IPv6AddrSize]byte, payloadLen uint32, nextHeader uint8) uint32 {
	var lenBuf, nhBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], payloadLen)
	nhBuf[3] = nextHeader

	sum := partialSum(0, src[:])
	sum = partialSum(sum, dst[:])
	sum = partialSum(sum, lenBuf[:])
	sum = partialSum(sum, nhBuf[:])

	return sum
}

// UpperLayerChecksum computes the on-wire checksum for a UDP or TCP segment:
// the ones'-complement of the pseudo-header sum folded together with the
// protocol header and payload (RFC 8200 Section 8.1, RFC 768, RFC 793).
//
// header and payload are logically contiguous on the wire (header first)
// but are passed separately so callers can compute the checksum before or
// after the payload has been copied into the final frame buffer.
func UpperLayerChecksum(src, dst [IPv6AddrSize]byte, nextHeader uint8, header, payload []byte) uint16 {
	payloadLen := uint32(len(header) + len(payload))

	sum := pseudoHeaderSum(src, dst, payloadLen, nextHeader)
	sum = partialSum(sum, header)
	sum = partialSum(sum, payload)

	folded := foldSum(sum)

	return ^folded
}
