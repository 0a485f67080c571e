// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"encoding/binary"
	"io"
)

// Container format constants
const (
	// Compression flag of every metadata block. Anything else is not a
	// block this package can read.
	blockFlagCompressed = 1

	// Block header: flag (1) + compressed size (4) + uncompressed size (4)
	blockHeaderSize = 9

	// Archive trailer: absolute offset of the first metadata block
	trailerSize = 4

	// Locale item type tags
	tagUntranslated = 0
	tagTranslated   = 3
	tagGroup        = 6

	// Archive entry flags written by the packer
	entryFlagPlain      = 1
	entryFlagParentPath = 6

	// FILETIME: 100ns ticks since 1601-01-01
	filetimeTicksPerSecond = 10_000_000
	filetimeUnixOffset     = 11_644_473_600

	// Default bound on locale tree nesting
	defaultMaxDepth = 64
)

// File extensions
const (
	extArchive     = ".pak"
	extLocale      = ".ptxt4"
	extLocaleLoc   = ".ptxt4@loc"
	extLocaleText  = ".ini"
	parentMarker   = "__"
	debugDirName   = "_pakmanager_debug"
	archiveSep     = "\\"
	backupInfix    = "_backup_"
	backupTimeFmt  = "2006-01-02_15-04-05"
	localeTextTool = "fwpak"
)

// blockHeader precedes every compressed metadata block.
type blockHeader struct {
	Flag             uint8  // Always blockFlagCompressed
	CompressedSize   uint32 // Bytes of zlib data that follow
	UncompressedSize uint32 // Bytes after inflate
}

// readBlockHeader reads a block header from a reader
func readBlockHeader(r io.Reader) (*blockHeader, error) {
	h := &blockHeader{}
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	return h, nil
}

// writeBlockHeader writes a block header to a writer
func writeBlockHeader(w io.Writer, h *blockHeader) error {
	return binary.Write(w, binary.LittleEndian, h)
}
