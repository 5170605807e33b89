// Package savestate implements the tagged-section stream used for machine
// snapshots. Saving and loading walk the same field lists through a
// Section, so the byte layout is defined once per component.
package savestate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic opens every state stream.
const Magic = "GBAS"

// Version is written after the magic; streams from a newer version are
// rejected.
const Version uint32 = 1

var (
	ErrBadMagic        = errors.New("savestate: bad magic")
	ErrBadVersion      = errors.New("savestate: unsupported version")
	ErrSectionMismatch = errors.New("savestate: section mismatch")
	ErrShortSection    = errors.New("savestate: short section")
)

// Visitor walks named sections in order. Writer and Reader implement it.
type Visitor interface {
	Section(tag string, fn func(s *Section)) error
	Loading() bool
}

// Section is one tagged block of little-endian fields. When loading every
// accessor overwrites its argument from the block; when saving it appends
// the argument to the block.
type Section struct {
	loading bool
	buf     []byte
	pos     int
	err     error
}

// Loading reports whether the section is being restored.
func (s *Section) Loading() bool {
	return s.loading
}

// Err returns the first error hit by an accessor.
func (s *Section) Err() error {
	return s.err
}

func (s *Section) take(n int) []byte {
	if s.err != nil {
		return nil
	}
	if s.pos+n > len(s.buf) {
		s.err = ErrShortSection
		return nil
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b
}

func (s *Section) Uint8(v *uint8) {
	if !s.loading {
		s.buf = append(s.buf, *v)
		return
	}
	if b := s.take(1); b != nil {
		*v = b[0]
	}
}

func (s *Section) Uint16(v *uint16) {
	if !s.loading {
		s.buf = binary.LittleEndian.AppendUint16(s.buf, *v)
		return
	}
	if b := s.take(2); b != nil {
		*v = binary.LittleEndian.Uint16(b)
	}
}

func (s *Section) Uint32(v *uint32) {
	if !s.loading {
		s.buf = binary.LittleEndian.AppendUint32(s.buf, *v)
		return
	}
	if b := s.take(4); b != nil {
		*v = binary.LittleEndian.Uint32(b)
	}
}

func (s *Section) Int32(v *int32) {
	u := uint32(*v)
	s.Uint32(&u)
	*v = int32(u)
}

// Int stores an int as 32 bits.
func (s *Section) Int(v *int) {
	u := int32(*v)
	s.Int32(&u)
	*v = int(u)
}

func (s *Section) Bool(v *bool) {
	var u uint8
	if *v {
		u = 1
	}
	s.Uint8(&u)
	*v = u != 0
}

// Bytes stores a fixed-size buffer verbatim.
func (s *Section) Bytes(v []byte) {
	if !s.loading {
		s.buf = append(s.buf, v...)
		return
	}
	if b := s.take(len(v)); b != nil {
		copy(v, b)
	}
}

func (s *Section) Uint16s(v []uint16) {
	for i := range v {
		s.Uint16(&v[i])
	}
}

func (s *Section) Uint32s(v []uint32) {
	for i := range v {
		s.Uint32(&v[i])
	}
}

func (s *Section) Ints(v []int) {
	for i := range v {
		s.Int(&v[i])
	}
}

func (s *Section) Bools(v []bool) {
	for i := range v {
		s.Bool(&v[i])
	}
}

func tagBytes(tag string) ([4]byte, error) {
	var t [4]byte
	if len(tag) == 0 || len(tag) > 4 {
		return t, fmt.Errorf("savestate: invalid tag %q", tag)
	}
	copy(t[:], tag)
	return t, nil
}

// Writer serializes sections to an io.Writer.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter writes the stream header to w.
func NewWriter(w io.Writer) (*Writer, error) {
	header := make([]byte, 0, 8)
	header = append(header, Magic...)
	header = binary.LittleEndian.AppendUint32(header, Version)
	if _, err := w.Write(header); err != nil {
		return nil, err
	}
	return &Writer{w: w}, nil
}

func (w *Writer) Loading() bool {
	return false
}

// Section runs fn against a fresh section and writes it as
// tag, length, payload.
func (w *Writer) Section(tag string, fn func(s *Section)) error {
	if w.err != nil {
		return w.err
	}
	t, err := tagBytes(tag)
	if err != nil {
		return err
	}
	s := &Section{}
	fn(s)

	header := make([]byte, 0, 8)
	header = append(header, t[:]...)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(s.buf)))
	if _, err := w.w.Write(header); err != nil {
		w.err = err
		return err
	}
	if _, err := w.w.Write(s.buf); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Reader restores sections from a stream produced by Writer.
type Reader struct {
	r io.Reader
}

// NewReader reads and validates the stream header.
func NewReader(r io.Reader) (*Reader, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("savestate: reading header: %w", err)
	}
	if string(header[:4]) != Magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v > Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, v)
	}
	return &Reader{r: r}, nil
}

func (r *Reader) Loading() bool {
	return true
}

// Section reads the next block, which must carry tag and be consumed
// exactly by fn.
func (r *Reader) Section(tag string, fn func(s *Section)) error {
	want, err := tagBytes(tag)
	if err != nil {
		return err
	}
	var header [8]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		return fmt.Errorf("savestate: section %s: %w", tag, err)
	}
	if [4]byte(header[:4]) != want {
		return fmt.Errorf("%w: want %q, got %q", ErrSectionMismatch, tag, header[:4])
	}
	payload := make([]byte, binary.LittleEndian.Uint32(header[4:]))
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return fmt.Errorf("savestate: section %s: %w", tag, err)
	}

	s := &Section{loading: true, buf: payload}
	fn(s)
	if s.err != nil {
		return fmt.Errorf("section %s: %w", tag, s.err)
	}
	if s.pos != len(payload) {
		return fmt.Errorf("%w: %s has %d trailing bytes", ErrSectionMismatch, tag, len(payload)-s.pos)
	}
	return nil
}
