// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSampleLocale(t *testing.T, path string) {
	t.Helper()
	block, err := WrapBlock(sampleLocalePayload(t))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, block, 0644))
}

func TestReadWriteLocaleFile(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "en.ptxt4")
	writeSampleLocale(t, src)

	l, err := ReadLocaleFile(src, testOptions(t))
	require.NoError(t, err)
	assert.Equal(t, "root", l.Root.Name)

	dst := filepath.Join(tmpDir, "en.ptxt4@loc")
	require.NoError(t, WriteLocaleFile(dst, l))

	again, err := ReadLocaleFile(dst, nil)
	require.NoError(t, err)
	assert.Equal(t, l, again)
}

func TestReadLocaleFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	wrongExt := filepath.Join(tmpDir, "en.txt")
	writeSampleLocale(t, wrongExt)
	_, err := ReadLocaleFile(wrongExt, nil)
	var fe *FormatError
	require.True(t, errors.As(err, &fe), "got %v", err)

	trailing := filepath.Join(tmpDir, "trailing.ptxt4")
	writeSampleLocale(t, trailing)
	f, err := os.OpenFile(trailing, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = ReadLocaleFile(trailing, nil)
	var de *DecodeError
	require.True(t, errors.As(err, &de), "got %v", err)
}

func TestUnpackPackLocale(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	workDir := filepath.Join(tmpDir, "work")
	distDir := filepath.Join(tmpDir, "dist")
	for _, d := range []string{dataDir, workDir, distDir} {
		require.NoError(t, os.Mkdir(d, 0755))
	}

	src := filepath.Join(dataDir, "en.ptxt4")
	writeSampleLocale(t, src)

	opts := testOptions(t)
	opts.DumpPayloads = true

	text, err := UnpackLocale(src, workDir, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "en.ini"), text)
	assert.FileExists(t, filepath.Join(workDir, "en_original.dat"))

	data, err := os.ReadFile(text)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[root/ui]\n1-title=HelloǁWorld\n")

	// Edit one line and pack it back.
	edited := strings.Replace(string(data), "2-empty=", "2-empty=Now translated", 1)
	require.NoError(t, os.WriteFile(text, []byte(edited), 0644))

	packed, err := PackLocale(text, distDir, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(distDir, "en.ptxt4@loc"), packed)
	assert.FileExists(t, filepath.Join(distDir, "en_modified.dat"))

	l, err := ReadLocaleFile(packed, nil)
	require.NoError(t, err)
	item := l.Root.Children[1].(*Item)
	assert.Equal(t, Translated, item.Kind)
	assert.Equal(t, "Now translated", item.Text)
	title := l.Root.Children[0].(*Group).Children[0].(*Item)
	assert.Equal(t, "Hello\nWorld", RestoreText(title.Text))
}

func TestUnpackLocaleBackup(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	workDir := filepath.Join(tmpDir, "work")
	require.NoError(t, os.Mkdir(dataDir, 0755))
	require.NoError(t, os.Mkdir(workDir, 0755))

	src := filepath.Join(dataDir, "en.ptxt4@loc")
	writeSampleLocale(t, src)

	existing := filepath.Join(workDir, "en.ini")
	require.NoError(t, os.WriteFile(existing, []byte("; old edits\n"), 0644))

	_, err := UnpackLocale(src, workDir, testOptions(t))
	require.NoError(t, err)

	backup, err := os.ReadFile(existing + "_backup_2024-03-01_12-30-45")
	require.NoError(t, err)
	assert.Equal(t, "; old edits\n", string(backup))
}

func TestUnpackLocaleSameFolder(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "en.ptxt4")
	writeSampleLocale(t, src)

	_, err := UnpackLocale(src, tmpDir, nil)
	var fe *FormatError
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.NoFileExists(t, filepath.Join(tmpDir, "en.ini"))
}

func TestPackLocaleWrongExtension(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "en.txt")
	require.NoError(t, os.WriteFile(src, []byte("[root]\n1-a=b\n"), 0644))

	_, err := PackLocale(src, tmpDir, nil)
	var fe *FormatError
	require.True(t, errors.As(err, &fe), "got %v", err)
}
