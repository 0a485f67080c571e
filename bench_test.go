// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// buildBenchIndex encodes tables for folders*files entries spread over a
// few extension groups.
func buildBenchIndex(b *testing.B, folders, files int) ([]byte, []byte) {
	builder := NewIndexBuilder(fixedClock)
	exts := []string{"txt", "png", "ogg@voice"}
	var offset uint32
	for i := 0; i < folders; i++ {
		for j := 0; j < files; j++ {
			path := fmt.Sprintf("Data\\Folder_%03d\\File_%04d.%s", i, j, exts[j%len(exts)])
			if _, err := builder.Add(path, offset, 64); err != nil {
				b.Fatal(err)
			}
			offset += 64
		}
	}
	x := builder.Index()

	filesPayload, err := EncodeFileTable(x.Files)
	if err != nil {
		b.Fatal(err)
	}
	foldersPayload, err := EncodeFolderTable(x.Folders)
	if err != nil {
		b.Fatal(err)
	}
	return filesPayload, foldersPayload
}

// BenchmarkDecodeIndex benchmarks decoding of the uncompressed tables
func BenchmarkDecodeIndex(b *testing.B) {
	filesPayload, foldersPayload := buildBenchIndex(b, 50, 100)
	b.SetBytes(int64(len(filesPayload) + len(foldersPayload)))

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := DecodeIndex(filesPayload, foldersPayload, nil); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkUnwrapBlock benchmarks inflating a compressed file table
func BenchmarkUnwrapBlock(b *testing.B) {
	filesPayload, _ := buildBenchIndex(b, 50, 100)
	block, err := WrapBlock(filesPayload)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(filesPayload)))

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, err := UnwrapBlock(block); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDecodeLocale benchmarks decoding a wide locale tree
func BenchmarkDecodeLocale(b *testing.B) {
	root := &Group{Name: "root"}
	for i := 0; i < 100; i++ {
		g := &Group{Name: fmt.Sprintf("group_%03d", i)}
		for j := 0; j < 50; j++ {
			g.Children = append(g.Children, &Item{
				Order: j + 1,
				Name:  fmt.Sprintf("line_%02d", j),
				Kind:  Translated,
				Text:  "Some translated textǁwith a second line",
			})
		}
		root.Children = append(root.Children, g)
	}
	payload, err := EncodeLocale(&Locale{Root: root})
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(payload)))

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := DecodeLocale(payload, nil); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkArchiveExtract benchmarks reading every entry of a packed archive
func BenchmarkArchiveExtract(b *testing.B) {
	tmpDir := b.TempDir()
	src := filepath.Join(tmpDir, "content")

	for j := 0; j < 20; j++ {
		path := filepath.Join(src, "Data", "File_"+string(rune('a'+j))+".txt")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			b.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("test content "+string(rune('a'+j))), 0644); err != nil {
			b.Fatal(err)
		}
	}

	pakPath, err := Pack(src, tmpDir, nil)
	if err != nil {
		b.Fatal(err)
	}

	archive, err := OpenArchive(pakPath, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer archive.Close()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for _, e := range archive.Entries() {
			if _, err := archive.ReadEntry(e); err != nil {
				b.Fatal(err)
			}
		}
	}
}
