// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

// Kind identifies one of the primitive encodings shared by both formats.
type Kind int

const (
	KindByte     Kind = iota // u8
	KindShort                // u16 little-endian
	KindLong                 // u32 little-endian
	KindLongLong             // u64 little-endian
	KindString8              // u8 length + raw bytes (locale format)
	KindString16             // u16 length + raw bytes (archive format)
	KindUnicode              // u16 unit count + UTF-16LE units, sanitized
)

func (k Kind) String() string {
	switch k {
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindLong:
		return "long"
	case KindLongLong:
		return "longlong"
	case KindString8:
		return "string8"
	case KindString16:
		return "string16"
	case KindUnicode:
		return "unicode"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a decoded primitive. Integer kinds use Uint, string kinds use Str.
type Value struct {
	Kind Kind
	Uint uint64
	Str  string
}

// Reader decodes primitives from an in-memory buffer.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// EOF reports whether the whole buffer has been consumed.
func (r *Reader) EOF() bool { return r.off >= len(r.buf) }

// next returns the following n bytes and advances past them.
func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, decodeErrorf(r.off, "buffer exhausted: need %d bytes, have %d", n, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) Uint8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) Uint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) Uint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) Uint64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// String8 reads a string with a one byte length prefix.
func (r *Reader) String8() (string, error) {
	n, err := r.Uint8()
	if err != nil {
		return "", err
	}
	b, err := r.next(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// String16 reads a string with a two byte length prefix.
func (r *Reader) String16() (string, error) {
	n, err := r.Uint16()
	if err != nil {
		return "", err
	}
	b, err := r.next(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unicode reads a unit count followed by that many UTF-16 code units. Each
// unit goes through ToText before the units are joined into runes.
func (r *Reader) Unicode() (string, error) {
	n, err := r.Uint16()
	if err != nil {
		return "", err
	}
	b, err := r.next(int(n) * 2)
	if err != nil {
		return "", err
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = uint16(ToText(rune(binary.LittleEndian.Uint16(b[i*2:]))))
	}
	return string(utf16.Decode(units)), nil
}

// Read decodes a primitive of the given kind.
func (r *Reader) Read(k Kind) (Value, error) {
	v := Value{Kind: k}
	var err error
	switch k {
	case KindByte:
		var x uint8
		x, err = r.Uint8()
		v.Uint = uint64(x)
	case KindShort:
		var x uint16
		x, err = r.Uint16()
		v.Uint = uint64(x)
	case KindLong:
		var x uint32
		x, err = r.Uint32()
		v.Uint = uint64(x)
	case KindLongLong:
		v.Uint, err = r.Uint64()
	case KindString8:
		v.Str, err = r.String8()
	case KindString16:
		v.Str, err = r.String16()
	case KindUnicode:
		v.Str, err = r.Unicode()
	default:
		return Value{}, decodeErrorf(r.off, "unknown primitive kind %v", k)
	}
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// Writer encodes primitives into a growing buffer. Offset tracks how many
// bytes have been emitted so callers can compute positions.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with room for size bytes.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int { return len(w.buf) }

// Bytes returns the encoded buffer.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Uint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) Uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Uint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// String8 writes s with a one byte length prefix.
func (w *Writer) String8(s string) error {
	if len(s) > math.MaxUint8 {
		return formatErrorf("", "string %q too long for 8-bit length prefix (%d bytes)", truncate(s), len(s))
	}
	w.Uint8(uint8(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// String16 writes s with a two byte length prefix.
func (w *Writer) String16(s string) error {
	if len(s) > math.MaxUint16 {
		return formatErrorf("", "string %q too long for 16-bit length prefix (%d bytes)", truncate(s), len(s))
	}
	w.Uint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// Unicode writes s as UTF-16LE code units, mapping each rune through
// ToStorage first. The prefix counts code units, not runes.
func (w *Writer) Unicode(s string) error {
	runes := []rune(s)
	for i, c := range runes {
		runes[i] = ToStorage(c)
	}
	units := utf16.Encode(runes)
	if len(units) > math.MaxUint16 {
		return formatErrorf("", "text %q too long: %d UTF-16 units", truncate(s), len(units))
	}
	w.Uint16(uint16(len(units)))
	for _, u := range units {
		w.Uint16(u)
	}
	return nil
}

// Write encodes v according to v.Kind.
func (w *Writer) Write(v Value) error {
	switch v.Kind {
	case KindByte:
		w.Uint8(uint8(v.Uint))
	case KindShort:
		w.Uint16(uint16(v.Uint))
	case KindLong:
		w.Uint32(uint32(v.Uint))
	case KindLongLong:
		w.Uint64(v.Uint)
	case KindString8:
		return w.String8(v.Str)
	case KindString16:
		return w.String16(v.Str)
	case KindUnicode:
		return w.Unicode(v.Str)
	default:
		return formatErrorf("", "unknown primitive kind %v", v.Kind)
	}
	return nil
}

func truncate(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}
