package mseed

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	encodeRecordLen  = 512
	encodeDataOffset = 64
	samplesPerRecord = (encodeRecordLen - encodeDataOffset) / 4
)

// EncodeFloat32 serializes a record as one or more 512-byte miniSEED data
// records with float32 samples and a blockette 1000. The identifier codes
// are truncated to their SEED field widths when longer.
func EncodeFloat32(rec Record) ([]byte, error) {
	if len(rec.Samples) == 0 {
		return nil, fmt.Errorf("no samples to encode")
	}
	if rec.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %v", rec.SampleRate)
	}

	factor, multiplier, err := rateFields(rec.SampleRate)
	if err != nil {
		return nil, err
	}

	recordCount := (len(rec.Samples) + samplesPerRecord - 1) / samplesPerRecord
	out := make([]byte, 0, recordCount*encodeRecordLen)
	seq := 1
	for start := 0; start < len(rec.Samples); start += samplesPerRecord {
		end := start + samplesPerRecord
		if end > len(rec.Samples) {
			end = len(rec.Samples)
		}
		chunkStart := rec.Start.Add(time.Duration(float64(start) / rec.SampleRate * float64(time.Second)))
		out = append(out, encodeOne(rec, seq, chunkStart, rec.Samples[start:end], factor, multiplier)...)
		seq++
	}
	return out, nil
}

func encodeOne(rec Record, seq int, start time.Time, samples []float64, factor, multiplier int16) []byte {
	buf := make([]byte, encodeRecordLen)

	copy(buf[0:6], fmt.Sprintf("%06d", seq%1000000))
	buf[6] = 'D'
	buf[7] = ' '
	copyPadded(buf[8:13], rec.Station)
	copyPadded(buf[13:15], rec.Location)
	copyPadded(buf[15:18], rec.Channel)
	copyPadded(buf[18:20], rec.Network)

	utc := start.UTC()
	binary.BigEndian.PutUint16(buf[20:22], uint16(utc.Year()))
	binary.BigEndian.PutUint16(buf[22:24], uint16(utc.YearDay()))
	buf[24] = byte(utc.Hour())
	buf[25] = byte(utc.Minute())
	buf[26] = byte(utc.Second())
	binary.BigEndian.PutUint16(buf[28:30], uint16(utc.Nanosecond()/100000))

	binary.BigEndian.PutUint16(buf[30:32], uint16(len(samples)))
	binary.BigEndian.PutUint16(buf[32:34], uint16(factor))
	binary.BigEndian.PutUint16(buf[34:36], uint16(multiplier))
	buf[39] = 1 // one blockette
	binary.BigEndian.PutUint16(buf[44:46], encodeDataOffset)
	binary.BigEndian.PutUint16(buf[46:48], fixedHeaderLen)

	// Blockette 1000 right after the fixed header.
	binary.BigEndian.PutUint16(buf[48:50], 1000)
	binary.BigEndian.PutUint16(buf[50:52], 0)
	buf[52] = encFloat32
	buf[53] = 1 // big-endian payload
	buf[54] = 9 // 2^9 = 512

	for i, s := range samples {
		binary.BigEndian.PutUint32(buf[encodeDataOffset+i*4:], math.Float32bits(float32(s)))
	}
	return buf
}

// rateFields maps a sample rate to the SEED factor/multiplier pair. Integer
// rates and integer periods cover the channels this tool downloads.
func rateFields(rate float64) (int16, int16, error) {
	if rate >= 1 {
		if rate != math.Trunc(rate) || rate > math.MaxInt16 {
			return 0, 0, fmt.Errorf("unrepresentable sample rate %v", rate)
		}
		return int16(rate), 1, nil
	}
	period := 1 / rate
	if period != math.Trunc(period) || period > math.MaxInt16 {
		return 0, 0, fmt.Errorf("unrepresentable sample rate %v", rate)
	}
	return int16(-period), 1, nil
}

func copyPadded(dst []byte, s string) {
	for i := range dst {
		if i < len(s) {
			dst[i] = s[i]
		} else {
			dst[i] = ' '
		}
	}
}
