package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/idtap/swara"
)

const (
	channels = 2

	formatPCM       = 1
	formatIEEEFloat = 3
)

// fmtChunk is the body of the "fmt " chunk of a WAVE file.
type fmtChunk struct {
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Wav encodes an interleaved stereo buffer as a .wav file, either as 16-bit
// PCM or as 32-bit IEEE float. Float files carry the extended fmt chunk and a
// fact chunk with the frame count.
func Wav(buffer []float32, sampleRate int, pcm16 bool) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wav sample rate %v: %w", sampleRate, swara.ErrOutOfRange)
	}
	size := 4
	f := fmtChunk{Format: formatIEEEFloat}
	if pcm16 {
		size = 2
		f.Format = formatPCM
	}
	f.Channels = channels
	f.SampleRate = uint32(sampleRate)
	f.ByteRate = uint32(sampleRate * channels * size)
	f.BlockAlign = uint16(channels * size)
	f.BitsPerSample = uint16(8 * size)
	var fbuf bytes.Buffer
	err := binary.Write(&fbuf, binary.LittleEndian, f)
	body := fbuf.Bytes()
	if err != nil {
		return nil, fmt.Errorf("could not encode fmt chunk: %w", err)
	}

	ret := append([]byte("RIFF"), 0, 0, 0, 0)
	ret = append(ret, "WAVE"...)
	if pcm16 {
		ret = appendChunk(ret, "fmt ", body)
	} else {
		ret = appendChunk(ret, "fmt ", binary.LittleEndian.AppendUint16(body, 0))
		ret = appendChunk(ret, "fact", binary.LittleEndian.AppendUint32(nil, uint32(len(buffer)/channels)))
	}
	ret = appendChunk(ret, "data", appendSamples(make([]byte, 0, size*len(buffer)), buffer, pcm16))
	binary.LittleEndian.PutUint32(ret[4:8], uint32(len(ret)-8))
	return ret, nil
}

// Raw encodes the buffer without any header.
func Raw(buffer []float32, pcm16 bool) []byte {
	size := 4
	if pcm16 {
		size = 2
	}
	return appendSamples(make([]byte, 0, size*len(buffer)), buffer, pcm16)
}

func appendChunk(b []byte, id string, body []byte) []byte {
	b = append(b, id...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(body)))
	return append(b, body...)
}

// appendSamples appends little endian samples; pcm16 clips to int16.
func appendSamples(b []byte, samples []float32, pcm16 bool) []byte {
	for _, v := range samples {
		if pcm16 {
			s := int16(clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
			b = binary.LittleEndian.AppendUint16(b, uint16(s))
			continue
		}
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}
