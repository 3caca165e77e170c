// Package fmp4scan follows the top-level box structure of a fragmented MP4
// stream as it is produced, reporting the movie's tracks and each completed
// fragment. Media payloads are skipped, never buffered.
package fmp4scan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Eyevinn/mp4ff/mp4"
)

// MaxBoxSize bounds the moov and moof boxes the scanner decodes.
const MaxBoxSize = 16 << 20

// ErrBoxTooLarge is returned when a box to be decoded exceeds MaxBoxSize.
var ErrBoxTooLarge = errors.New("fmp4scan: box too large")

// Track describes one track of the movie.
type Track struct {
	ID      uint32
	Handler string // "vide", "soun", ...
	Codec   string // sample entry type, e.g. "avc1", "mp4a"
}

// Fragment describes a completed movie fragment.
type Fragment struct {
	Sequence uint32 // mfhd sequence number
	Offset   uint64 // stream offset just past the fragment's media data
}

// Handler receives scan results. Either field may be nil.
type Handler struct {
	OnTracks   func(tracks []Track)
	OnFragment func(f Fragment)
}

// Scanner is an io.Writer that parses the stream written to it.
// After the first error every later Write returns that error.
type Scanner struct {
	handler Handler

	pos     uint64 // absolute offset of the next byte
	buf     []byte // header or box being assembled
	need    int    // bytes buf must reach
	skip    uint64 // payload bytes still to skip
	name    string // box being skipped or assembled
	pending *Fragment
	err     error
}

// New creates a Scanner.
func New(h Handler) *Scanner {
	return &Scanner{handler: h, need: 8}
}

// Write consumes p. It always consumes all of p unless it returns an error.
func (s *Scanner) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	total := len(p)
	for len(p) > 0 {
		if s.skip > 0 {
			n := uint64(len(p))
			if n > s.skip {
				n = s.skip
			}
			s.skip -= n
			s.pos += n
			p = p[n:]
			if s.skip == 0 {
				s.boxDone()
			}
			continue
		}

		n := s.need - len(s.buf)
		if n > len(p) {
			n = len(p)
		}
		s.buf = append(s.buf, p[:n]...)
		p = p[n:]
		if len(s.buf) < s.need {
			break
		}

		if err := s.advance(); err != nil {
			s.err = err
			return total - len(p), err
		}
	}
	return total, nil
}

// advance runs once buf holds need bytes.
func (s *Scanner) advance() error {
	if s.name != "" {
		// buf holds a complete box to decode
		err := s.decode()
		s.pos += uint64(len(s.buf))
		s.reset()
		s.boxDone()
		return err
	}

	size := uint64(binary.BigEndian.Uint32(s.buf[0:4]))
	if size == 1 && len(s.buf) < 16 {
		s.need = 16
		return nil
	}

	hdr, err := mp4.DecodeHeader(bytes.NewReader(s.buf))
	if err != nil {
		return fmt.Errorf("decode box header at %d: %w", s.pos, err)
	}
	s.name = hdr.Name

	payload := uint64(0)
	switch {
	case hdr.Size == 0:
		// box extends to the end of the stream
		payload = math.MaxUint64
	case hdr.Size < uint64(hdr.Hdrlen):
		return fmt.Errorf("box %q at %d has invalid size %d", hdr.Name, s.pos, hdr.Size)
	default:
		payload = hdr.Size - uint64(hdr.Hdrlen)
	}

	switch hdr.Name {
	case "moov", "moof":
		if hdr.Size == 0 || hdr.Size > MaxBoxSize {
			return fmt.Errorf("%w: %s of %d bytes", ErrBoxTooLarge, hdr.Name, hdr.Size)
		}
		s.need = int(hdr.Size)
		if len(s.buf) == s.need {
			return s.advance()
		}
		return nil
	default:
		headerLen := uint64(len(s.buf))
		extra := headerLen - uint64(hdr.Hdrlen)
		s.pos += headerLen
		s.buf = s.buf[:0]
		s.need = 8
		if payload-extra == 0 {
			s.boxDone()
			s.name = ""
			return nil
		}
		s.skip = payload - extra
		return nil
	}
}

func (s *Scanner) decode() error {
	box, err := mp4.DecodeBox(s.pos, bytes.NewReader(s.buf))
	if err != nil {
		return fmt.Errorf("decode %s at %d: %w", s.name, s.pos, err)
	}

	switch b := box.(type) {
	case *mp4.MoovBox:
		if s.handler.OnTracks != nil {
			s.handler.OnTracks(tracksOf(b))
		}
	case *mp4.MoofBox:
		f := &Fragment{}
		if b.Mfhd != nil {
			f.Sequence = b.Mfhd.SequenceNumber
		}
		s.pending = f
	}
	return nil
}

// boxDone reports a fragment when the media data that follows a moof ends.
func (s *Scanner) boxDone() {
	if s.name == "mdat" && s.pending != nil {
		f := *s.pending
		f.Offset = s.pos
		s.pending = nil
		if s.handler.OnFragment != nil {
			s.handler.OnFragment(f)
		}
	}
	s.name = ""
}

func (s *Scanner) reset() {
	s.buf = s.buf[:0]
	s.need = 8
}

// Offset returns the number of bytes consumed so far.
func (s *Scanner) Offset() uint64 {
	return s.pos + uint64(len(s.buf))
}

func tracksOf(moov *mp4.MoovBox) []Track {
	tracks := make([]Track, 0, len(moov.Traks))
	for _, trak := range moov.Traks {
		t := Track{}
		if trak.Tkhd != nil {
			t.ID = trak.Tkhd.TrackID
		}
		if trak.Mdia == nil {
			tracks = append(tracks, t)
			continue
		}
		if trak.Mdia.Hdlr != nil {
			t.Handler = trak.Mdia.Hdlr.HandlerType
		}
		if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil {
			for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
				t.Codec = child.Type()
				break
			}
		}
		tracks = append(tracks, t)
	}
	return tracks
}
