// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// compressData compresses data using zlib at maximum effort
func compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib write: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}

	return buf.Bytes(), nil
}

// decompressData inflates zlib data and checks it against the expected size.
// At most one byte past uncompressedSize is read so an oversized stream is
// detected without inflating all of it.
func decompressData(data []byte, uncompressedSize uint32) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &IntegrityError{Expected: uncompressedSize, Err: fmt.Errorf("create zlib reader: %w", err)}
	}
	defer r.Close()

	result, err := io.ReadAll(io.LimitReader(r, int64(uncompressedSize)+1))
	if err != nil {
		return nil, &IntegrityError{Expected: uncompressedSize, Actual: len(result), Err: fmt.Errorf("zlib decompress: %w", err)}
	}

	if len(result) != int(uncompressedSize) {
		return nil, &IntegrityError{Expected: uncompressedSize, Actual: len(result)}
	}

	return result, nil
}

// WrapBlock compresses payload and frames it with a block header.
func WrapBlock(payload []byte) ([]byte, error) {
	compressed, err := compressData(payload)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(blockHeaderSize + len(compressed))

	h := &blockHeader{
		Flag:             blockFlagCompressed,
		CompressedSize:   uint32(len(compressed)),
		UncompressedSize: uint32(len(payload)),
	}
	if err := writeBlockHeader(&buf, h); err != nil {
		return nil, fmt.Errorf("write block header: %w", err)
	}
	buf.Write(compressed)

	return buf.Bytes(), nil
}

// UnwrapBlock reads one block from the start of data and returns its inflated
// payload together with the number of bytes the block occupied.
func UnwrapBlock(data []byte) ([]byte, int, error) {
	if len(data) < blockHeaderSize {
		return nil, 0, decodeErrorf(0, "block header truncated: need %d bytes, have %d", blockHeaderSize, len(data))
	}

	h, err := readBlockHeader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, decodeErrorf(0, "read block header: %v", err)
	}

	if h.Flag != blockFlagCompressed {
		return nil, 0, formatErrorf("", "invalid compression flag 0x%02X (want 0x%02X)", h.Flag, blockFlagCompressed)
	}

	end := blockHeaderSize + int(h.CompressedSize)
	if end > len(data) || end < blockHeaderSize {
		return nil, 0, decodeErrorf(blockHeaderSize, "block body truncated: header says %d bytes, have %d",
			h.CompressedSize, len(data)-blockHeaderSize)
	}

	payload, err := decompressData(data[blockHeaderSize:end], h.UncompressedSize)
	if err != nil {
		return nil, 0, err
	}

	return payload, end, nil
}
