// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import "fmt"

// DecodeError reports a malformed binary payload: a read past the end of the
// buffer, an unknown type tag, or bytes left over after a complete structure.
type DecodeError struct {
	Offset int
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at offset 0x%08X: %s", e.Offset, e.Msg)
}

// FormatError reports input that is well formed bytes but not a valid
// container: wrong extension, bad compression flag, broken cross references.
type FormatError struct {
	Path string
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return "format error: " + e.Msg
	}
	return fmt.Sprintf("format error: %s: %s", e.Path, e.Msg)
}

// IntegrityError reports a compressed block whose inflated size does not
// match the size recorded in its header.
type IntegrityError struct {
	Expected uint32
	Actual   int
	Err      error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("integrity error: inflate failed (expected %d bytes): %v", e.Expected, e.Err)
	}
	return fmt.Sprintf("integrity error: uncompressed size mismatch: header says %d, got %d", e.Expected, e.Actual)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// IOError wraps a filesystem failure with the operation and offending path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func decodeErrorf(offset int, format string, args ...any) error {
	return &DecodeError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func formatErrorf(path, format string, args ...any) error {
	return &FormatError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

func ioError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
