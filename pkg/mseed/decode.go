package mseed

import (
	"encoding/binary"
	"fmt"
	"math"
)

func decodeInt16(order binary.ByteOrder, payload []byte, count int) ([]float64, error) {
	if len(payload) < count*2 {
		return nil, fmt.Errorf("int16 payload too short for %d samples", count)
	}
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = float64(int16(order.Uint16(payload[i*2:])))
	}
	return out, nil
}

func decodeInt32(order binary.ByteOrder, payload []byte, count int) ([]float64, error) {
	if len(payload) < count*4 {
		return nil, fmt.Errorf("int32 payload too short for %d samples", count)
	}
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = float64(int32(order.Uint32(payload[i*4:])))
	}
	return out, nil
}

func decodeFloat32(order binary.ByteOrder, payload []byte, count int) ([]float64, error) {
	if len(payload) < count*4 {
		return nil, fmt.Errorf("float32 payload too short for %d samples", count)
	}
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = float64(math.Float32frombits(order.Uint32(payload[i*4:])))
	}
	return out, nil
}

func decodeFloat64(order binary.ByteOrder, payload []byte, count int) ([]float64, error) {
	if len(payload) < count*8 {
		return nil, fmt.Errorf("float64 payload too short for %d samples", count)
	}
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = math.Float64frombits(order.Uint64(payload[i*8:]))
	}
	return out, nil
}

// decodeSteim decompresses STEIM1 or STEIM2 frames. Frames are 64 bytes of
// big-endian words; the first word of each frame holds sixteen 2-bit
// nibbles describing the other words. The first frame additionally carries
// the forward (X0) and reverse (Xn) integration constants in words 1 and 2.
func decodeSteim(version int, payload []byte, count int) ([]float64, error) {
	if len(payload) < 64 {
		return nil, fmt.Errorf("steim%d payload shorter than one frame", version)
	}

	diffs := make([]int32, 0, count+8)
	var x0, xn int32
	for frameStart := 0; frameStart+64 <= len(payload) && len(diffs) <= count; frameStart += 64 {
		frame := payload[frameStart : frameStart+64]
		nibbles := binary.BigEndian.Uint32(frame[0:4])
		for w := 1; w < 16; w++ {
			word := binary.BigEndian.Uint32(frame[w*4 : w*4+4])
			nibble := (nibbles >> uint(30-2*w)) & 0x3
			if frameStart == 0 && w == 1 {
				x0 = int32(word)
				continue
			}
			if frameStart == 0 && w == 2 {
				xn = int32(word)
				continue
			}
			switch nibble {
			case 0:
				// non-data word
			case 1:
				for b := 0; b < 4; b++ {
					diffs = append(diffs, int32(int8(word>>uint(24-8*b))))
				}
			case 2:
				if version == 1 {
					diffs = append(diffs, int32(int16(word>>16)), int32(int16(word)))
				} else {
					diffs = appendSteim2Dnib2(diffs, word)
				}
			case 3:
				if version == 1 {
					diffs = append(diffs, int32(word))
				} else {
					diffs = appendSteim2Dnib3(diffs, word)
				}
			}
		}
	}

	if len(diffs) < count {
		return nil, fmt.Errorf("steim%d: %d diffs for %d samples", version, len(diffs), count)
	}

	out := make([]float64, count)
	cur := x0
	out[0] = float64(cur)
	// The first diff reproduces x0 from the previous record and is skipped.
	for i := 1; i < count; i++ {
		cur += diffs[i]
		out[i] = float64(cur)
	}
	if count > 0 && int32(out[count-1]) != xn {
		return nil, fmt.Errorf("steim%d reverse integration mismatch: got %d want %d", version, int32(out[count-1]), xn)
	}
	return out, nil
}

// appendSteim2Dnib2 unpacks a nibble-2 word: the top two bits select one
// 30-bit, two 15-bit or three 10-bit differences.
func appendSteim2Dnib2(diffs []int32, word uint32) []int32 {
	switch word >> 30 {
	case 1:
		return append(diffs, signExtend(word, 30))
	case 2:
		return append(diffs, signExtend(word>>15, 15), signExtend(word, 15))
	case 3:
		return append(diffs, signExtend(word>>20, 10), signExtend(word>>10, 10), signExtend(word, 10))
	}
	return diffs
}

// appendSteim2Dnib3 unpacks a nibble-3 word: five 6-bit, six 5-bit or seven
// 4-bit differences.
func appendSteim2Dnib3(diffs []int32, word uint32) []int32 {
	switch word >> 30 {
	case 0:
		for i := 4; i >= 0; i-- {
			diffs = append(diffs, signExtend(word>>uint(6*i), 6))
		}
	case 1:
		for i := 5; i >= 0; i-- {
			diffs = append(diffs, signExtend(word>>uint(5*i), 5))
		}
	case 2:
		for i := 6; i >= 0; i-- {
			diffs = append(diffs, signExtend(word>>uint(4*i), 4))
		}
	}
	return diffs
}

func signExtend(v uint32, bits uint) int32 {
	mask := uint32(1)<<bits - 1
	v &= mask
	if v&(1<<(bits-1)) != 0 {
		v |= ^mask
	}
	return int32(v)
}
