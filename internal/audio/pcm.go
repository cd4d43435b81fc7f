package audio

import (
	"encoding/binary"
	"io"
)

// bytesToSamples converts little-endian s16 bytes to samples, dropping a
// trailing odd byte.
func bytesToSamples(raw []byte) []int16 {
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}
	return samples
}

// sampleReader streams samples as little-endian s16 bytes without
// materialising the whole byte slice.
type sampleReader struct {
	samples []int16
	pending []byte
	buf     [2]byte
}

func newSampleReader(samples []int16) *sampleReader {
	return &sampleReader{samples: samples}
}

func (r *sampleReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) > 0 {
			c := copy(p[n:], r.pending)
			r.pending = r.pending[c:]
			n += c
			continue
		}
		if len(r.samples) == 0 {
			break
		}
		if len(p)-n >= 2 {
			binary.LittleEndian.PutUint16(p[n:], uint16(r.samples[0]))
			n += 2
		} else {
			binary.LittleEndian.PutUint16(r.buf[:], uint16(r.samples[0]))
			r.pending = r.buf[:]
		}
		r.samples = r.samples[1:]
	}
	if n == 0 && len(r.samples) == 0 && len(r.pending) == 0 {
		return 0, io.EOF
	}
	return n, nil
}
