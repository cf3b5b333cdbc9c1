package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestEncodeWAVWritesCanonicalHeader(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	buf := &bytes.Buffer{}

	if err := EncodeWAV(buf, pcm, GetDefaultEncodingInfo()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := buf.Bytes()
	if len(data) != wavHeaderSize+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", wavHeaderSize+len(pcm), len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
		t.Fatalf("unexpected chunk ids in header %q", data[:44])
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != DefaultSampleRate {
		t.Fatalf("expected sample rate %d, got %d", DefaultSampleRate, got)
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != DefaultSampleRate*2 {
		t.Fatalf("expected byte rate %d, got %d", DefaultSampleRate*2, got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("expected data size %d, got %d", len(pcm), got)
	}
}

func TestWAVFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.wav")
	pcm := bytes.Repeat([]byte{0x10, 0x20}, 480)
	info := EncodingInfo{SampleRate: 48000, Format: EncodingLinear16, Channels: 1}

	if err := WriteWAVFile(path, pcm, info); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	decoded, decodedInfo, err := ReadWAVFile(path)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}

	if !bytes.Equal(decoded, pcm) {
		t.Fatalf("decoded audio differs from the original")
	}
	if decodedInfo != info {
		t.Fatalf("expected info %+v, got %+v", info, decodedInfo)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, _, err := DecodeWAV(bytes.NewReader(bytes.Repeat([]byte("x"), 64)))
	if !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV, got %v", err)
	}

	_, _, err = DecodeWAV(bytes.NewReader([]byte("RIFF")))
	if !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV for short input, got %v", err)
	}
}

func TestEncodeWAVRejectsUnknownEncoding(t *testing.T) {
	err := EncodeWAV(&bytes.Buffer{}, []byte{0}, EncodingInfo{SampleRate: 8000, Format: "opus"})
	if err == nil {
		t.Fatalf("expected an error for an unsupported encoding")
	}
}

func TestDuration(t *testing.T) {
	info := GetDefaultEncodingInfo()
	if got := Duration(info.BytesPerSecond()*3, info); got != 3*time.Second {
		t.Fatalf("expected 3s, got %v", got)
	}
	if got := Duration(100, EncodingInfo{}); got != 0 {
		t.Fatalf("expected zero duration for unknown encoding, got %v", got)
	}
}
