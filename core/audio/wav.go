package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const wavHeaderSize = 44

var ErrInvalidWAV = errors.New("invalid WAV data")

// wavHeader is the canonical 44-byte RIFF header of a PCM WAV file.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

func wavAudioFormat(format encodingFormat) (uint16, error) {
	switch format {
	case EncodingLinear16:
		return 1, nil
	case EncodingALaw:
		return 6, nil
	case EncodingMulaw:
		return 7, nil
	}
	return 0, fmt.Errorf("unsupported encoding %q", format)
}

// EncodeWAV wraps raw audio described by info into a WAV container.
func EncodeWAV(w io.Writer, data []byte, info EncodingInfo) error {
	if info.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", info.SampleRate)
	}
	audioFormat, err := wavAudioFormat(info.Format)
	if err != nil {
		return err
	}

	channels := uint16(info.channels())
	bitsPerSample := uint16(info.Format.ByteSize() * 8)
	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(data)),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   audioFormat,
		NumChannels:   channels,
		SampleRate:    uint32(info.SampleRate),
		ByteRate:      uint32(info.SampleRate) * uint32(channels) * uint32(bitsPerSample) / 8,
		BlockAlign:    channels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(len(data)),
	}

	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// WriteWAVFile writes data as a WAV file at path, replacing any existing file.
func WriteWAVFile(path string, data []byte, info EncodingInfo) error {
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(data)))
	if err := EncodeWAV(buf, data, info); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write WAV file: %w", err)
	}
	return nil
}

// DecodeWAV reads a canonical WAV file and returns its raw audio.
func DecodeWAV(r io.Reader) ([]byte, EncodingInfo, error) {
	var header wavHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, EncodingInfo{}, fmt.Errorf("%w: failed to read header: %w", ErrInvalidWAV, err)
	}

	switch {
	case string(header.ChunkID[:]) != "RIFF":
		return nil, EncodingInfo{}, fmt.Errorf("%w: missing RIFF header", ErrInvalidWAV)
	case string(header.Format[:]) != "WAVE":
		return nil, EncodingInfo{}, fmt.Errorf("%w: missing WAVE format", ErrInvalidWAV)
	case string(header.Subchunk1ID[:]) != "fmt ":
		return nil, EncodingInfo{}, fmt.Errorf("%w: missing fmt chunk", ErrInvalidWAV)
	case string(header.Subchunk2ID[:]) != "data":
		return nil, EncodingInfo{}, fmt.Errorf("%w: missing data chunk", ErrInvalidWAV)
	}

	info := EncodingInfo{SampleRate: int(header.SampleRate), Channels: int(header.NumChannels)}
	switch header.AudioFormat {
	case 1:
		if header.BitsPerSample != 16 {
			return nil, EncodingInfo{}, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidWAV, header.BitsPerSample)
		}
		info.Format = EncodingLinear16
	case 6:
		info.Format = EncodingALaw
	case 7:
		info.Format = EncodingMulaw
	default:
		return nil, EncodingInfo{}, fmt.Errorf("%w: unsupported audio format %d", ErrInvalidWAV, header.AudioFormat)
	}

	data := make([]byte, header.Subchunk2Size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, EncodingInfo{}, fmt.Errorf("%w: failed to read audio data: %w", ErrInvalidWAV, err)
	}
	return data, info, nil
}

func ReadWAVFile(path string) ([]byte, EncodingInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, EncodingInfo{}, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer file.Close()
	return DecodeWAV(file)
}

// Duration is the playback length of size bytes of raw audio.
func Duration(size int, info EncodingInfo) time.Duration {
	rate := info.BytesPerSecond()
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(size) / float64(rate) * float64(time.Second))
}
