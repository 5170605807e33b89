package savestate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	a  uint8
	b  uint16
	c  uint32
	d  int32
	e  int
	f  bool
	g  [6]byte
	h  [3]uint16
	i  [2]uint32
	j  [2]int
	ok [2]bool
}

func (f *fixture) state(s *Section) {
	s.Uint8(&f.a)
	s.Uint16(&f.b)
	s.Uint32(&f.c)
	s.Int32(&f.d)
	s.Int(&f.e)
	s.Bool(&f.f)
	s.Bytes(f.g[:])
	s.Uint16s(f.h[:])
	s.Uint32s(f.i[:])
	s.Ints(f.j[:])
	s.Bools(f.ok[:])
}

func TestRoundTrip(t *testing.T) {
	saved := fixture{
		a: 0x12, b: 0x3456, c: 0x789ABCDE, d: -5, e: -300000, f: true,
		g: [6]byte{1, 2, 3, 4, 5, 6}, h: [3]uint16{7, 8, 9},
		i: [2]uint32{0xFFFFFFFF, 1}, j: [2]int{-1, 42}, ok: [2]bool{false, true},
	}
	other := [4]byte{0xAA, 0xBB, 0xCC, 0xDD}

	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Section("MAIN", saved.state))
	require.NoError(t, w.Section("RAM", func(s *Section) { s.Bytes(other[:]) }))

	var loaded fixture
	var otherLoaded [4]byte
	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.NoError(t, r.Section("MAIN", loaded.state))
	require.NoError(t, r.Section("RAM", func(s *Section) {
		assert.True(t, s.Loading())
		s.Bytes(otherLoaded[:])
	}))

	assert.Equal(t, saved, loaded)
	assert.Equal(t, other, otherLoaded)
}

func TestReaderErrors(t *testing.T) {
	var good bytes.Buffer
	w, err := NewWriter(&good)
	require.NoError(t, err)
	var v uint32 = 7
	require.NoError(t, w.Section("JOY", func(s *Section) { s.Uint32(&v) }))

	t.Run("bad magic", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader([]byte("NOPE\x01\x00\x00\x00")))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("newer version", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader([]byte("GBAS\x09\x00\x00\x00")))
		assert.ErrorIs(t, err, ErrBadVersion)
	})

	t.Run("wrong tag", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(good.Bytes()))
		require.NoError(t, err)
		err = r.Section("SND", func(s *Section) { s.Uint32(&v) })
		assert.ErrorIs(t, err, ErrSectionMismatch)
	})

	t.Run("short payload", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(good.Bytes()))
		require.NoError(t, err)
		var wide [2]uint32
		err = r.Section("JOY", func(s *Section) { s.Uint32s(wide[:]) })
		assert.ErrorIs(t, err, ErrShortSection)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(good.Bytes()))
		require.NoError(t, err)
		var narrow uint16
		err = r.Section("JOY", func(s *Section) { s.Uint16(&narrow) })
		assert.ErrorIs(t, err, ErrSectionMismatch)
	})

	t.Run("truncated stream", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(good.Bytes()[:10]))
		require.NoError(t, err)
		err = r.Section("JOY", func(s *Section) { s.Uint32(&v) })
		assert.Error(t, err)
	})
}

func TestInvalidTag(t *testing.T) {
	w, err := NewWriter(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Error(t, w.Section("TOOLONG", func(*Section) {}))
}
