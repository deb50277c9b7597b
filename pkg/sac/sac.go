// Package sac writes evenly-sampled time series in SAC binary format.
//
// The writer emits the classic 632-byte header (70 float words, 40 integer
// words, 24 character fields) followed by float32 samples, little-endian,
// header version 6. Unset fields carry the SAC undefined sentinels.
package sac

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

const (
	undefFloat  = -12345.0
	undefInt    = -12345
	headerBytes = 632
	iTime       = 1 // evenly spaced time series
)

// Trace is one channel of samples plus the metadata worth carrying into the
// header. Pointer fields are written only when set.
type Trace struct {
	Network  string
	Station  string
	Location string
	Channel  string

	Start      time.Time
	SampleRate float64
	Samples    []float64

	StationLat  *float64
	StationLon  *float64
	StationElev *float64
	EventLat    *float64
	EventLon    *float64
	EventDepthM *float64
	Magnitude   *float64

	DistanceDeg *float64
	DistanceKm  *float64
	Azimuth     *float64
	BackAzimuth *float64
}

// Write serializes the trace.
func Write(w io.Writer, tr Trace) error {
	if len(tr.Samples) == 0 {
		return fmt.Errorf("no samples to write")
	}
	if tr.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %v", tr.SampleRate)
	}

	header := make([]byte, headerBytes)
	floats := make([]float32, 70)
	ints := make([]int32, 40)
	for i := range floats {
		floats[i] = undefFloat
	}
	for i := range ints {
		ints[i] = undefInt
	}

	delta := 1.0 / tr.SampleRate
	depMin, depMax := tr.Samples[0], tr.Samples[0]
	for _, s := range tr.Samples {
		if s < depMin {
			depMin = s
		}
		if s > depMax {
			depMax = s
		}
	}

	floats[0] = float32(delta)
	floats[1] = float32(depMin)
	floats[2] = float32(depMax)
	floats[5] = 0 // begin time relative to reference
	floats[6] = float32(float64(len(tr.Samples)-1) * delta)
	setOpt(floats, 31, tr.StationLat)
	setOpt(floats, 32, tr.StationLon)
	setOpt(floats, 33, tr.StationElev)
	setOpt(floats, 35, tr.EventLat)
	setOpt(floats, 36, tr.EventLon)
	setOpt(floats, 38, tr.EventDepthM)
	setOpt(floats, 39, tr.Magnitude)
	setOpt(floats, 50, tr.DistanceKm)
	setOpt(floats, 51, tr.Azimuth)
	setOpt(floats, 52, tr.BackAzimuth)
	setOpt(floats, 53, tr.DistanceDeg)

	utc := tr.Start.UTC()
	ints[0] = int32(utc.Year())
	ints[1] = int32(utc.YearDay())
	ints[2] = int32(utc.Hour())
	ints[3] = int32(utc.Minute())
	ints[4] = int32(utc.Second())
	ints[5] = int32(utc.Nanosecond() / int(time.Millisecond))
	ints[6] = 6 // header version
	ints[9] = int32(len(tr.Samples))
	ints[15] = iTime
	ints[35] = 1 // evenly spaced

	for i, f := range floats {
		binary.LittleEndian.PutUint32(header[i*4:], math.Float32bits(f))
	}
	for i, v := range ints {
		binary.LittleEndian.PutUint32(header[280+i*4:], uint32(v))
	}

	chars := header[440:]
	for i := 0; i < len(chars); i += 8 {
		copy(chars[i:i+8], "-12345  ")
	}
	putChars(chars[0:8], tr.Station)    // kstnm
	putChars(chars[8:24], "")           // kevnm
	putChars(chars[24:32], tr.Location) // khole
	putChars(chars[160:168], tr.Channel)
	putChars(chars[168:176], tr.Network)

	if _, err := w.Write(header); err != nil {
		return err
	}
	data := make([]byte, len(tr.Samples)*4)
	for i, s := range tr.Samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(float32(s)))
	}
	_, err := w.Write(data)
	return err
}

func setOpt(dst []float32, idx int, v *float64) {
	if v != nil {
		dst[idx] = float32(*v)
	}
}

func putChars(dst []byte, s string) {
	for i := range dst {
		if i < len(s) {
			dst[i] = s[i]
		} else {
			dst[i] = ' '
		}
	}
}
