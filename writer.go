// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// archiveWriter streams file bodies into a temp file and appends the
// metadata blocks once every body is written.
type archiveWriter struct {
	file    *os.File
	builder *IndexBuilder
	offset  int64
	log     *zap.Logger

	filesPayload   []byte
	foldersPayload []byte
}

// addFile copies the file at src into the archive under archivePath.
func (w *archiveWriter) addFile(src, archivePath string) error {
	in, err := os.Open(src)
	if err != nil {
		return ioError("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return ioError("stat", src, err)
	}
	if w.offset+info.Size() > math.MaxUint32 {
		return formatErrorf(src, "archive would exceed 4 GiB at offset 0x%X", w.offset)
	}

	e, err := w.builder.Add(archivePath, uint32(w.offset), uint32(info.Size()))
	if err != nil {
		return err
	}

	n, err := io.Copy(w.file, in)
	if err != nil {
		return ioError("write file data", src, err)
	}
	if n != info.Size() {
		return formatErrorf(src, "file changed while packing: expected %d bytes, copied %d", info.Size(), n)
	}
	w.offset += n

	w.log.Debug("added file", zap.String("path", archivePath),
		zap.String("folder", w.builder.folders[e.FolderID]),
		zap.String("filename", e.Filename), zap.Uint32("offset", e.Offset), zap.Uint32("size", e.Size))
	return nil
}

// finish writes both compressed tables and the trailing offset.
func (w *archiveWriter) finish() error {
	index := w.builder.Index()

	var err error
	if w.filesPayload, err = EncodeFileTable(index.Files); err != nil {
		return fmt.Errorf("encode file table: %w", err)
	}
	if w.foldersPayload, err = EncodeFolderTable(index.Folders); err != nil {
		return fmt.Errorf("encode folder table: %w", err)
	}

	for _, payload := range [][]byte{w.filesPayload, w.foldersPayload} {
		block, err := WrapBlock(payload)
		if err != nil {
			return err
		}
		if _, err := w.file.Write(block); err != nil {
			return ioError("write metadata", w.file.Name(), err)
		}
	}

	if err := binary.Write(w.file, binary.LittleEndian, uint32(w.offset)); err != nil {
		return ioError("write trailer", w.file.Name(), err)
	}
	return nil
}

// groupByExtension reorders paths so files sharing an extension are
// contiguous, groups in first-seen order. Bodies are then written in the
// same order as the file table lists them.
func groupByExtension(paths []string) []string {
	var order []string
	byExt := make(map[string][]string)
	for _, p := range paths {
		base := filepath.Base(p)
		ext := ""
		if dot := strings.LastIndexByte(base, '.'); dot >= 0 {
			ext = base[dot+1:]
		}
		if _, ok := byExt[ext]; !ok {
			order = append(order, ext)
		}
		byExt[ext] = append(byExt[ext], p)
	}

	out := make([]string, 0, len(paths))
	for _, ext := range order {
		out = append(out, byExt[ext]...)
	}
	return out
}

// Pack builds <outputDir>/<base name of inputDir>.pak from every file below
// inputDir and returns the archive path. An existing archive is moved aside
// first when opts.Backup is set.
func Pack(inputDir, outputDir string, opts *Options) (string, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	if err := requireDir(inputDir, "input path"); err != nil {
		return "", err
	}
	if err := requireDir(outputDir, "output path"); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(inputDir)
	if err != nil {
		return "", ioError("resolve", inputDir, err)
	}
	dest := filepath.Join(outputDir, filepath.Base(abs)+extArchive)

	files, err := walkFiles(inputDir, debugDirName)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", formatErrorf(inputDir, "no files to pack")
	}

	file, err := createTemp(dest)
	if err != nil {
		return "", err
	}
	tempPath := file.Name()

	w := &archiveWriter{file: file, builder: NewIndexBuilder(opts.Now), log: log}
	if err := w.write(inputDir, groupByExtension(files)); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return "", ioError("close", tempPath, err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return "", ioError("chmod", tempPath, err)
	}

	if opts.DumpPayloads {
		if err := dumpPayloads(filepath.Join(inputDir, debugDirName), map[string][]byte{
			"files_modified.dat":  w.filesPayload,
			"folder_modified.dat": w.foldersPayload,
		}); err != nil {
			os.Remove(tempPath)
			return "", err
		}
	}

	if opts.Backup {
		backup, err := renameBackup(dest, opts.Now())
		if err != nil {
			os.Remove(tempPath)
			return "", err
		}
		if backup != "" {
			log.Info("backed up archive", zap.String("backup", backup))
		}
	}
	if err := commitTemp(tempPath, dest); err != nil {
		return "", err
	}

	log.Info("packed archive", zap.String("input", inputDir), zap.String("output", dest),
		zap.Int("files", len(files)), zap.Int("folders", len(w.builder.folders)))
	return dest, nil
}

func (w *archiveWriter) write(root string, files []string) error {
	for _, rel := range files {
		if err := w.addFile(filepath.Join(root, rel), toArchivePath(rel)); err != nil {
			return err
		}
	}
	return w.finish()
}
