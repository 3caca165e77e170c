package fmp4scan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

// buildStream creates an init segment followed by n single-sample fragments.
// It returns the stream and the end offset of every fragment.
func buildStream(t *testing.T, n int) ([]byte, []uint64) {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "en")
	init.Moov.Trak.Mdia.Minf.Stbl.Stsd.AddChild(
		mp4.CreateAudioSampleEntryBox("mp4a", 2, 16, 48000, nil))

	var buf bytes.Buffer
	if err := init.Encode(&buf); err != nil {
		t.Fatalf("encode init: %v", err)
	}

	var ends []uint64
	for i := 0; i < n; i++ {
		frag, err := mp4.CreateFragment(uint32(i+1), 1)
		if err != nil {
			t.Fatalf("create fragment: %v", err)
		}
		data := bytes.Repeat([]byte{byte(i)}, 100+i*10)
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: mp4.SyncSampleFlags,
				Size:  uint32(len(data)),
				Dur:   1024,
			},
			DecodeTime: uint64(i) * 1024,
			Data:       data,
		})
		if err := frag.Encode(&buf); err != nil {
			t.Fatalf("encode fragment: %v", err)
		}
		ends = append(ends, uint64(buf.Len()))
	}
	return buf.Bytes(), ends
}

type recorder struct {
	tracks    [][]Track
	fragments []Fragment
}

func (r *recorder) handler() Handler {
	return Handler{
		OnTracks:   func(tracks []Track) { r.tracks = append(r.tracks, tracks) },
		OnFragment: func(f Fragment) { r.fragments = append(r.fragments, f) },
	}
}

func writeInChunks(t *testing.T, s *Scanner, data []byte, size int) {
	t.Helper()
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		written, err := s.Write(data[:n])
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		if written != n {
			t.Fatalf("Write consumed %d bytes, want %d", written, n)
		}
		data = data[n:]
	}
}

func TestScanner_ChunkSizes(t *testing.T) {
	stream, ends := buildStream(t, 3)

	for _, size := range []int{1, 7, 64, 1000, len(stream)} {
		rec := &recorder{}
		s := New(rec.handler())
		writeInChunks(t, s, stream, size)

		if len(rec.tracks) != 1 {
			t.Fatalf("chunk %d: got %d track reports, want 1", size, len(rec.tracks))
		}
		tracks := rec.tracks[0]
		if len(tracks) != 1 {
			t.Fatalf("chunk %d: got %d tracks, want 1", size, len(tracks))
		}
		if tracks[0].ID != 1 || tracks[0].Handler != "soun" || tracks[0].Codec != "mp4a" {
			t.Errorf("chunk %d: unexpected track %+v", size, tracks[0])
		}

		if len(rec.fragments) != len(ends) {
			t.Fatalf("chunk %d: got %d fragments, want %d", size, len(rec.fragments), len(ends))
		}
		for i, f := range rec.fragments {
			if f.Sequence != uint32(i+1) {
				t.Errorf("chunk %d: fragment %d sequence = %d", size, i, f.Sequence)
			}
			if f.Offset != ends[i] {
				t.Errorf("chunk %d: fragment %d offset = %d, want %d", size, i, f.Offset, ends[i])
			}
		}

		if s.Offset() != uint64(len(stream)) {
			t.Errorf("chunk %d: Offset() = %d, want %d", size, s.Offset(), len(stream))
		}
	}
}

func TestScanner_NilHandlers(t *testing.T) {
	stream, _ := buildStream(t, 2)
	s := New(Handler{})
	writeInChunks(t, s, stream, 13)
}

func TestScanner_UnsizedMdat(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 'm', 'd', 'a', 't'})
	buf.Write(make([]byte, 4096))

	rec := &recorder{}
	s := New(rec.handler())
	writeInChunks(t, s, buf.Bytes(), 100)

	if len(rec.fragments) != 0 {
		t.Errorf("got %d fragments, want 0", len(rec.fragments))
	}
	if s.Offset() != uint64(buf.Len()) {
		t.Errorf("Offset() = %d, want %d", s.Offset(), buf.Len())
	}
}

func TestScanner_LargeSizeHeader(t *testing.T) {
	hdr := make([]byte, 16)
	binary.BigEndian.PutUint32(hdr[0:4], 1)
	copy(hdr[4:8], "free")
	binary.BigEndian.PutUint64(hdr[8:16], 16+32)

	stream := append(hdr, make([]byte, 32)...)
	stream = append(stream, []byte{0, 0, 0, 8, 'f', 'r', 'e', 'e'}...)

	s := New(Handler{})
	writeInChunks(t, s, stream, 3)
	if s.Offset() != uint64(len(stream)) {
		t.Errorf("Offset() = %d, want %d", s.Offset(), len(stream))
	}
}

func TestScanner_InvalidSize(t *testing.T) {
	s := New(Handler{})
	_, err := s.Write([]byte{0, 0, 0, 4, 'f', 'r', 'e', 'e'})
	if err == nil {
		t.Fatal("expected error for box smaller than its header")
	}

	// The error sticks.
	if _, err2 := s.Write([]byte{0}); err2 == nil {
		t.Error("expected later writes to fail")
	}
}

func TestScanner_BoxTooLarge(t *testing.T) {
	hdr := make([]byte, 8)
	binary.BigEndian.PutUint32(hdr[0:4], MaxBoxSize+1)
	copy(hdr[4:8], "moov")

	s := New(Handler{})
	_, err := s.Write(hdr)
	if !errors.Is(err, ErrBoxTooLarge) {
		t.Errorf("got %v, want ErrBoxTooLarge", err)
	}
}
