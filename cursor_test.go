// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	tests := []struct {
		value Value
		width int
	}{
		{Value{Kind: KindByte, Uint: 0xAB}, 1},
		{Value{Kind: KindShort, Uint: 0xBEEF}, 2},
		{Value{Kind: KindLong, Uint: 0xDEADBEEF}, 4},
		{Value{Kind: KindLongLong, Uint: 0x0123456789ABCDEF}, 8},
		{Value{Kind: KindString8, Str: "root"}, 5},
		{Value{Kind: KindString16, Str: "Data\\Sound"}, 12},
		{Value{Kind: KindUnicode, Str: "Héllo"}, 12},
		{Value{Kind: KindUnicode, Str: ""}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.value.Kind.String(), func(t *testing.T) {
			w := NewWriter(16)
			require.NoError(t, w.Write(tt.value))
			assert.Equal(t, tt.width, w.Offset())

			r := NewReader(w.Bytes())
			got, err := r.Read(tt.value.Kind)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
			assert.True(t, r.EOF())
		})
	}
}

func TestCursorLittleEndian(t *testing.T) {
	w := NewWriter(8)
	w.Uint16(0x0102)
	w.Uint32(0x03040506)
	assert.Equal(t, []byte{0x02, 0x01, 0x06, 0x05, 0x04, 0x03}, w.Bytes())
}

func TestCursorReadPastEnd(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		kind Kind
	}{
		{"empty long", nil, KindLong},
		{"short long", []byte{1, 2, 3}, KindLong},
		{"string8 body", []byte{5, 'a', 'b'}, KindString8},
		{"string16 body", []byte{3, 0, 'a'}, KindString16},
		{"unicode units", []byte{2, 0, 'a', 0}, KindUnicode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(tt.buf).Read(tt.kind)
			var de *DecodeError
			require.True(t, errors.As(err, &de), "got %v", err)
		})
	}
}

func TestCursorUnknownKind(t *testing.T) {
	_, err := NewReader([]byte{0}).Read(Kind(42))
	var de *DecodeError
	require.True(t, errors.As(err, &de))

	err = NewWriter(1).Write(Value{Kind: Kind(42)})
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
}

func TestCursorStringTooLong(t *testing.T) {
	w := NewWriter(0)
	var fe *FormatError
	require.True(t, errors.As(w.String8(strings.Repeat("x", 256)), &fe))
	require.True(t, errors.As(w.String16(strings.Repeat("x", 65536)), &fe))
	assert.Zero(t, w.Offset())
}

func TestCursorUnicodeSanitizes(t *testing.T) {
	w := NewWriter(16)
	require.NoError(t, w.Unicode("aǁb"))
	// The substitute goes to disk as a real newline.
	assert.Equal(t, []byte{3, 0, 'a', 0, '\n', 0, 'b', 0}, w.Bytes())

	got, err := NewReader(w.Bytes()).Unicode()
	require.NoError(t, err)
	assert.Equal(t, "aǁb", got)
}

func TestCursorUnicodeSurrogates(t *testing.T) {
	w := NewWriter(16)
	require.NoError(t, w.Unicode("\U0001F600"))
	// One rune, two UTF-16 units.
	assert.Equal(t, 6, w.Offset())

	got, err := NewReader(w.Bytes()).Unicode()
	require.NoError(t, err)
	assert.Equal(t, "\U0001F600", got)
}
