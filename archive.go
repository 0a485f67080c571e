// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Archive is an open .pak file.
type Archive struct {
	file    *os.File
	path    string
	dataEnd int64 // start of the metadata region; bodies lie before it
	index   *Index
	log     *zap.Logger

	filesPayload   []byte
	foldersPayload []byte
}

// OpenArchive opens a .pak file and decodes its index.
func OpenArchive(path string, opts *Options) (*Archive, error) {
	opts = opts.withDefaults()

	if !strings.EqualFold(filepath.Ext(path), extArchive) {
		return nil, formatErrorf(path, "archive extension is not valid: expected %s, got %q", extArchive, filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ioError("stat", path, err)
	}

	a := &Archive{file: file, path: path, log: opts.Logger.With(zap.String("archive", path))}
	if err := a.readIndex(info.Size(), opts); err != nil {
		file.Close()
		return nil, fmt.Errorf("read index of %s: %w", path, err)
	}

	return a, nil
}

// readIndex locates the metadata region through the trailing offset and
// decodes both tables from it.
func (a *Archive) readIndex(size int64, opts *Options) error {
	if size < trailerSize {
		return decodeErrorf(0, "archive too small: %d bytes", size)
	}

	var trailer [trailerSize]byte
	if _, err := a.file.ReadAt(trailer[:], size-trailerSize); err != nil {
		return ioError("read trailer", a.path, err)
	}
	start := int64(binary.LittleEndian.Uint32(trailer[:]))
	end := size - trailerSize
	if start > end {
		return decodeErrorf(int(end), "metadata offset 0x%08X beyond end of archive data 0x%08X", start, end)
	}

	region := make([]byte, end-start)
	if _, err := io.ReadFull(io.NewSectionReader(a.file, start, end-start), region); err != nil {
		return ioError("read metadata", a.path, err)
	}

	filesPayload, n, err := UnwrapBlock(region)
	if err != nil {
		return fmt.Errorf("file table block: %w", err)
	}
	foldersPayload, m, err := UnwrapBlock(region[n:])
	if err != nil {
		return fmt.Errorf("folder table block: %w", err)
	}
	if n+m != len(region) {
		return decodeErrorf(int(start)+n+m, "%d unexpected bytes before trailer", len(region)-n-m)
	}

	index, err := DecodeIndex(filesPayload, foldersPayload, opts)
	if err != nil {
		return err
	}

	a.dataEnd = start
	a.index = index
	a.filesPayload = filesPayload
	a.foldersPayload = foldersPayload

	a.log.Debug("archive index",
		zap.Int64("metadata_offset", start),
		zap.Int("groups", len(index.Files.Groups)),
		zap.Int("folders", len(index.Folders.Folders)),
		zap.Int("files_payload", len(filesPayload)),
		zap.Int("folders_payload", len(foldersPayload)))

	return nil
}

// Index returns the decoded file and folder tables.
func (a *Archive) Index() *Index { return a.index }

// MetadataOffset returns where the first compressed block begins.
func (a *Archive) MetadataOffset() int64 { return a.dataEnd }

// Entries returns every file record in archive order.
func (a *Archive) Entries() []Entry { return a.index.Files.Entries() }

// ReadEntry returns the body of an entry.
func (a *Archive) ReadEntry(e Entry) ([]byte, error) {
	if int64(e.Offset)+int64(e.Size) > a.dataEnd {
		return nil, formatErrorf(a.path, "entry %q%s spans 0x%08X+%d past data end 0x%08X",
			e.Filename, e.ExtVerbose, e.Offset, e.Size, a.dataEnd)
	}
	data := make([]byte, e.Size)
	if _, err := a.file.ReadAt(data, int64(e.Offset)); err != nil {
		return nil, ioError("read entry", a.path, err)
	}
	return data, nil
}

// EntryPath returns the path, relative to the extraction root, an entry is
// written to. A filename carrying its folder's basename as a "parent\"
// prefix goes into "<folder>__" so Pack can rebuild the prefix.
func (a *Archive) EntryPath(e Entry) string {
	rel, ok := entryRelPath(a.index.FolderOf(&e), e)
	if !ok {
		a.log.Warn("entry filename prefix does not match its folder",
			zap.String("folder", a.index.FolderOf(&e)), zap.String("filename", e.Filename))
	}
	return rel
}

func entryRelPath(folder string, e Entry) (string, bool) {
	dir, name, ok := folder, e.Filename, true
	if strings.Contains(name, archiveSep) {
		if archiveBase(folder) == archiveFirst(name) {
			dir += parentMarker
		} else {
			ok = false
		}
		name = archiveBase(name)
	}
	return filepath.Join(fromArchivePath(dir), name+e.ExtVerbose), ok
}

// ExtractAll writes every entry below dir.
func (a *Archive) ExtractAll(dir string) error {
	for _, g := range a.index.Files.Groups {
		a.log.Debug("extracting group", zap.String("ext", g.ExtVerbose), zap.Int("files", len(g.Entries)))
		for _, e := range g.Entries {
			target := filepath.Join(dir, a.EntryPath(e))
			if !withinDir(dir, target) {
				return formatErrorf(a.path, "entry %q%s escapes the output folder", e.Filename, e.ExtVerbose)
			}

			data, err := a.ReadEntry(e)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return ioError("create directory", filepath.Dir(target), err)
			}
			if err := os.WriteFile(target, data, 0644); err != nil {
				return ioError("write", target, err)
			}
		}
	}
	return nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

// Unpack extracts the archive at input into <outputDir>/<archive name> and
// returns that folder. An existing folder is moved aside first when
// opts.Backup is set.
func Unpack(input, outputDir string, opts *Options) (string, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	archive, err := OpenArchive(input, opts)
	if err != nil {
		return "", err
	}
	defer archive.Close()

	if err := requireDir(outputDir, "output path"); err != nil {
		return "", err
	}

	out := filepath.Join(outputDir, fileStem(input))
	if opts.Backup {
		backup, err := renameBackup(out, opts.Now())
		if err != nil {
			return "", err
		}
		if backup != "" {
			log.Info("backed up output folder", zap.String("backup", backup))
		}
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return "", ioError("create directory", out, err)
	}

	if opts.DumpPayloads {
		dumpDir := filepath.Join(out, debugDirName)
		if err := dumpPayloads(dumpDir, map[string][]byte{
			"files_original.dat":  archive.filesPayload,
			"folder_original.dat": archive.foldersPayload,
		}); err != nil {
			return "", err
		}
	}

	if err := archive.ExtractAll(out); err != nil {
		return "", err
	}

	log.Info("unpacked archive", zap.String("input", input), zap.String("output", out),
		zap.Int("files", len(archive.Entries())))
	return out, nil
}

// dumpPayloads writes raw payloads into dir for inspection.
func dumpPayloads(dir string, payloads map[string][]byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ioError("create directory", dir, err)
	}
	for name, data := range payloads {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return ioError("write", path, err)
		}
	}
	return nil
}

// fileStem returns the base name of path without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
