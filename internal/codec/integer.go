package codec

import "golang.org/x/exp/constraints"

// minimalTwosComplement returns the minimum-length big-endian two's
// complement encoding of v, whose native width is width bytes. It is
// generic over the signed integer type so the same trimming logic serves
// both INTEGER (int64) and ENUMERATED (int32, logically 32-bit but encoded
// the same way).
func minimalTwosComplement[S constraints.Signed](v S, width int) []byte {
	if v == 0 {
		return []byte{0x00}
	}
	raw := make([]byte, width)
	for i := 0; i < width; i++ {
		shift := uint((width - 1 - i) * 8)
		raw[i] = byte(v >> shift)
	}
	start := 0
	for start < width-1 {
		b, next := raw[start], raw[start+1]
		if b == 0x00 && next&0x80 == 0 {
			start++
			continue
		}
		if b == 0xFF && next&0x80 != 0 {
			start++
			continue
		}
		break
	}
	return raw[start:]
}

// appendMinimalSigned appends the minimal two's complement encoding of a
// 64-bit INTEGER value.
func appendMinimalSigned(buf []byte, v int64) []byte {
	return append(buf, minimalTwosComplement(v, 8)...)
}

// decodeSigned decodes a two's complement payload of up to 8 octets. The
// caller is responsible for rejecting payloads wider than 64 bits.
func decodeSigned(payload []byte) int64 {
	if len(payload) == 0 {
		return 0
	}
	var v int64
	if payload[0]&0x80 != 0 {
		v = -1
	}
	for _, b := range payload {
		v = (v << 8) | int64(b)
	}
	return v
}
