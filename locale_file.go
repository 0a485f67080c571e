// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// isLocaleFile reports whether path carries a binary locale extension.
func isLocaleFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == extLocale || ext == extLocaleLoc
}

// ReadLocaleFile reads and decodes a binary locale file.
func ReadLocaleFile(path string, opts *Options) (*Locale, error) {
	l, _, err := readLocaleFile(path, opts.withDefaults())
	return l, err
}

func readLocaleFile(path string, opts *Options) (*Locale, []byte, error) {
	if !isLocaleFile(path) {
		return nil, nil, formatErrorf(path, "locale extension is not valid: expected %s or %s, got %q",
			extLocale, extLocaleLoc, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, ioError("read", path, err)
	}

	payload, n, err := UnwrapBlock(data)
	if err != nil {
		return nil, nil, fmt.Errorf("read locale %s: %w", path, err)
	}
	if n != len(data) {
		return nil, nil, fmt.Errorf("read locale %s: %w", path,
			decodeErrorf(n, "%d trailing bytes after compressed block", len(data)-n))
	}

	l, err := DecodeLocale(payload, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("decode locale %s: %w", path, err)
	}
	return l, payload, nil
}

// WriteLocaleFile encodes l and writes it to path as one compressed block.
func WriteLocaleFile(path string, l *Locale) error {
	_, err := writeLocaleFile(path, l)
	return err
}

func writeLocaleFile(path string, l *Locale) ([]byte, error) {
	payload, err := EncodeLocale(l)
	if err != nil {
		return nil, fmt.Errorf("encode locale: %w", err)
	}
	block, err := WrapBlock(payload)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(path, block); err != nil {
		return nil, err
	}
	return payload, nil
}

// sameDir reports whether a and b resolve to the same directory.
func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// UnpackLocale converts the binary locale at input to <outputDir>/<stem>.ini
// and returns the text file path. outputDir must not be the folder holding
// input.
func UnpackLocale(input, outputDir string, opts *Options) (string, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	if err := requireDir(outputDir, "output path"); err != nil {
		return "", err
	}
	if sameDir(filepath.Dir(input), outputDir) {
		return "", formatErrorf(outputDir, "output folder must differ from the input file's folder")
	}

	l, payload, err := readLocaleFile(input, opts)
	if err != nil {
		return "", err
	}

	stem := fileStem(input)
	if opts.DumpPayloads {
		dump := filepath.Join(outputDir, stem+"_original.dat")
		if err := os.WriteFile(dump, payload, 0644); err != nil {
			return "", ioError("write", dump, err)
		}
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, l); err != nil {
		return "", fmt.Errorf("render text: %w", err)
	}

	dest := filepath.Join(outputDir, stem+extLocaleText)
	if err := backupBeforeWrite(dest, opts); err != nil {
		return "", err
	}
	if err := writeFileAtomic(dest, buf.Bytes()); err != nil {
		return "", err
	}

	log.Info("unpacked locale", zap.String("input", input), zap.String("output", dest),
		zap.Int("items", len(l.Items())))
	return dest, nil
}

// PackLocale converts the text file at input to <outputDir>/<stem>.ptxt4@loc
// and returns the locale file path.
func PackLocale(input, outputDir string, opts *Options) (string, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	if !strings.EqualFold(filepath.Ext(input), extLocaleText) {
		return "", formatErrorf(input, "text extension is not valid: expected %s, got %q",
			extLocaleText, filepath.Ext(input))
	}
	if err := requireDir(outputDir, "output path"); err != nil {
		return "", err
	}

	f, err := os.Open(input)
	if err != nil {
		return "", ioError("open", input, err)
	}
	l, err := ParseText(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", input, err)
	}

	stem := fileStem(input)
	dest := filepath.Join(outputDir, stem+extLocaleLoc)
	if err := backupBeforeWrite(dest, opts); err != nil {
		return "", err
	}
	payload, err := writeLocaleFile(dest, l)
	if err != nil {
		return "", err
	}

	if opts.DumpPayloads {
		dump := filepath.Join(outputDir, stem+"_modified.dat")
		if err := os.WriteFile(dump, payload, 0644); err != nil {
			return "", ioError("write", dump, err)
		}
	}

	log.Info("packed locale", zap.String("input", input), zap.String("output", dest),
		zap.Int("items", len(l.Items())))
	return dest, nil
}

// backupBeforeWrite copies an existing file aside when backups are enabled.
func backupBeforeWrite(path string, opts *Options) error {
	if !opts.Backup {
		return nil
	}
	backup, err := copyBackup(path, opts.Now())
	if err != nil {
		return err
	}
	if backup != "" {
		opts.Logger.Info("backed up file", zap.String("backup", backup))
	}
	return nil
}
