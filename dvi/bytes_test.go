package dvi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderUnsigned(t *testing.T) {
	r := &reader{data: []byte{0x01, 0x02, 0x03, 0x04, 0xff}}
	require.Equal(t, 1, r.u8())
	require.Equal(t, 0x0203, r.u16())
	require.Equal(t, 0x04ff, r.u16())
	require.True(t, r.atEnd())
}

func TestReaderSigned(t *testing.T) {
	r := &reader{data: []byte{
		0xff,       // i8: -1
		0x80, 0x00, // i16: -32768
		0xff, 0xff, 0xfe, // i24: -2
		0xff, 0xff, 0xff, 0xff, // i32: -1
		0x7f, 0xff, 0xff, 0xff, // i32: 2^31-1
	}}
	require.Equal(t, -1, r.i8())
	require.Equal(t, -32768, r.i16())
	require.Equal(t, -2, r.i24())
	require.Equal(t, -1, r.i32())
	require.Equal(t, infinity, r.i32())
}

func TestReaderPastEnd(t *testing.T) {
	r := &reader{data: []byte{0x2a}}
	require.Equal(t, 42, r.u8())
	// u8 past end returns the harmless 0 sentinel
	require.Equal(t, 0, r.u8())
	require.True(t, r.atEnd())
	// multi-byte reads past end are silent; the cursor keeps moving so
	// the driver's end-of-buffer check fires
	cur := r.loc()
	_ = r.i32()
	require.Equal(t, cur+4, r.loc())
}

func TestReaderPeekSet(t *testing.T) {
	r := &reader{data: []byte{1, 2, 3, 4}}
	r.peekSet(2)
	require.Equal(t, 3, r.u8())
	r.peekSet(0)
	require.Equal(t, 1, r.u8())
}
