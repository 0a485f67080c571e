// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// backupName returns the timestamped name an existing path is moved or
// copied to before being replaced.
func backupName(path string, now time.Time) string {
	return path + backupInfix + now.Format(backupTimeFmt)
}

// renameBackup moves path aside if it exists. It returns the backup path,
// or "" when there was nothing to back up.
func renameBackup(path string, now time.Time) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	dst := backupName(path, now)
	if err := os.Rename(path, dst); err != nil {
		return "", ioError("backup", path, err)
	}
	return dst, nil
}

// copyBackup copies path aside if it exists, leaving the original in place.
func copyBackup(path string, now time.Time) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	dst := backupName(path, now)
	if err := copyFile(path, dst); err != nil {
		return "", ioError("backup", path, err)
	}
	return dst, nil
}

// createTemp creates a temp file next to path so the final rename stays on
// one filesystem.
func createTemp(path string) (*os.File, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "fwpak_*.tmp")
	if err != nil {
		return nil, ioError("create temp file", filepath.Dir(path), err)
	}
	return f, nil
}

// commitTemp moves a finished temp file over path. If the rename fails the
// contents are copied instead. path keeps its old contents unless the
// copy had already started writing it.
func commitTemp(tempPath, path string) error {
	if err := os.Rename(tempPath, path); err != nil {
		defer os.Remove(tempPath)
		if err := copyFile(tempPath, path); err != nil {
			return ioError("save", path, err)
		}
	}
	return nil
}

// writeFileAtomic writes data to a temp file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	f, err := createTemp(path)
	if err != nil {
		return err
	}
	tempPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return ioError("write", tempPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return ioError("close", tempPath, err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return ioError("chmod", tempPath, err)
	}

	return commitTemp(tempPath, path)
}

// copyFile copies a file from src to dst. A partially written dst is
// removed.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// walkFiles lists regular files below root in lexical order, depth first,
// skipping any directory named skip. Paths are relative to root.
func walkFiles(root, skip string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return ioError("walk", path, err)
		}
		if d.IsDir() {
			if path != root && d.Name() == skip {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return ioError("walk", path, err)
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// requireDir fails unless path is an existing directory.
func requireDir(path, role string) error {
	info, err := os.Stat(path)
	if err != nil {
		return ioError("stat "+role, path, err)
	}
	if !info.IsDir() {
		return formatErrorf(path, "%s is not a folder", role)
	}
	return nil
}
