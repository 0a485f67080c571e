// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Entry is one file record of an archive, with the footer fields of its
// extension group copied in.
type Entry struct {
	Flags      uint16
	FolderID   uint16 // Index into FolderTable.Folders
	Filename   string // Without extension, may carry a "parent\" prefix
	Offset     uint32 // Absolute offset of the file body
	Size       uint32
	Reserved   uint32 // Opaque, round-tripped as read
	Timestamp  uint64 // Windows FILETIME
	ExtVerbose string // e.g. ".ogg@voice"
	ExtSimple  string // e.g. ".ogg"
	GroupPath  string // e.g. "voice"
	Extra      uint16
}

// ModTime converts the entry timestamp to a time with second precision.
func (e *Entry) ModTime() time.Time {
	return time.Unix(FiletimeToUnix(e.Timestamp), 0)
}

// ExtGroup is one file table segment: records sharing a footer.
type ExtGroup struct {
	ExtVerbose string
	ExtSimple  string
	GroupPath  string
	Extra      uint16
	Entries    []Entry
}

// FileTable holds the segments of a file table in archive order.
type FileTable struct {
	Groups []ExtGroup
}

// Group returns the first segment with the given verbose extension.
func (t *FileTable) Group(extVerbose string) (*ExtGroup, bool) {
	for i := range t.Groups {
		if t.Groups[i].ExtVerbose == extVerbose {
			return &t.Groups[i], true
		}
	}
	return nil, false
}

// Entries returns every record in archive order.
func (t *FileTable) Entries() []Entry {
	var out []Entry
	for _, g := range t.Groups {
		out = append(out, g.Entries...)
	}
	return out
}

// FolderTable lists the folder paths that entries reference by index.
type FolderTable struct {
	GroupCount uint32 // Must equal the number of file table segments
	Folders    []string
}

// Index is a validated pair of file and folder tables.
type Index struct {
	Files   *FileTable
	Folders *FolderTable
}

// FolderOf returns the folder path an entry lives in.
func (x *Index) FolderOf(e *Entry) string {
	return x.Folders.Folders[e.FolderID]
}

// FiletimeToUnix converts FILETIME ticks to Unix seconds, dropping the
// sub-second part.
func FiletimeToUnix(ticks uint64) int64 {
	return int64(ticks/filetimeTicksPerSecond) - filetimeUnixOffset
}

// UnixToFiletime converts t to FILETIME ticks.
func UnixToFiletime(t time.Time) uint64 {
	return uint64(t.Unix()+filetimeUnixOffset)*filetimeTicksPerSecond + uint64(t.Nanosecond()/100)
}

// DecodeFileTable parses the uncompressed file table: segments are read
// back to back until the payload is exhausted.
func DecodeFileTable(payload []byte) (*FileTable, error) {
	r := NewReader(payload)
	t := &FileTable{}

	for {
		g, err := readSegment(r)
		if err != nil {
			return nil, err
		}
		t.Groups = append(t.Groups, *g)
		if r.EOF() {
			break
		}
	}
	return t, nil
}

func readSegment(r *Reader) (*ExtGroup, error) {
	start := r.Offset()
	count, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	// Smallest record: 2+2+2+4+4+4+8 bytes
	if int64(count)*26 > int64(r.Remaining()) {
		return nil, decodeErrorf(start, "segment declares %d records, only %d bytes left", count, r.Remaining())
	}

	entries := make([]Entry, count)
	for i := range entries {
		e := &entries[i]
		if e.Flags, err = r.Uint16(); err != nil {
			return nil, err
		}
		if e.FolderID, err = r.Uint16(); err != nil {
			return nil, err
		}
		if e.Filename, err = r.String16(); err != nil {
			return nil, err
		}
		if e.Offset, err = r.Uint32(); err != nil {
			return nil, err
		}
		if e.Size, err = r.Uint32(); err != nil {
			return nil, err
		}
		if e.Reserved, err = r.Uint32(); err != nil {
			return nil, err
		}
		if e.Timestamp, err = r.Uint64(); err != nil {
			return nil, err
		}
	}

	g := &ExtGroup{}
	if g.ExtVerbose, err = r.String16(); err != nil {
		return nil, err
	}
	if g.ExtSimple, err = r.String16(); err != nil {
		return nil, err
	}
	if g.GroupPath, err = r.String16(); err != nil {
		return nil, err
	}
	if g.Extra, err = r.Uint16(); err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].ExtVerbose = g.ExtVerbose
		entries[i].ExtSimple = g.ExtSimple
		entries[i].GroupPath = g.GroupPath
		entries[i].Extra = g.Extra
	}
	g.Entries = entries
	return g, nil
}

// DecodeFolderTable parses the uncompressed folder table.
func DecodeFolderTable(payload []byte) (*FolderTable, error) {
	r := NewReader(payload)
	t := &FolderTable{}

	var err error
	if t.GroupCount, err = r.Uint32(); err != nil {
		return nil, err
	}
	count, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if int64(count)*2 > int64(r.Remaining()) {
		return nil, decodeErrorf(4, "folder table declares %d folders, only %d bytes left", count, r.Remaining())
	}

	t.Folders = make([]string, count)
	for i := range t.Folders {
		if t.Folders[i], err = r.String16(); err != nil {
			return nil, err
		}
	}

	if !r.EOF() {
		return nil, decodeErrorf(r.Offset(), "%d trailing bytes after folder table", r.Remaining())
	}
	return t, nil
}

// DecodeIndex decodes both tables and checks the references between them.
func DecodeIndex(filesPayload, foldersPayload []byte, opts *Options) (*Index, error) {
	log := opts.withDefaults().Logger

	files, err := DecodeFileTable(filesPayload)
	if err != nil {
		return nil, err
	}
	folders, err := DecodeFolderTable(foldersPayload)
	if err != nil {
		return nil, err
	}

	if int(folders.GroupCount) != len(files.Groups) {
		return nil, formatErrorf("", "folder table declares %d extension groups, file table has %d",
			folders.GroupCount, len(files.Groups))
	}

	for _, g := range files.Groups {
		for _, e := range g.Entries {
			if int(e.FolderID) >= len(folders.Folders) {
				return nil, formatErrorf("", "entry %q%s references folder %d, table has %d",
					e.Filename, e.ExtVerbose, e.FolderID, len(folders.Folders))
			}
		}
		log.Debug("extension group", zap.String("ext", g.ExtVerbose),
			zap.String("path", g.GroupPath), zap.Int("files", len(g.Entries)))
	}

	return &Index{Files: files, Folders: folders}, nil
}

// EncodeFileTable serializes the file table, one segment per group.
func EncodeFileTable(t *FileTable) ([]byte, error) {
	w := NewWriter(4096)
	for _, g := range t.Groups {
		w.Uint32(uint32(len(g.Entries)))
		for _, e := range g.Entries {
			w.Uint16(e.Flags)
			w.Uint16(e.FolderID)
			if err := w.String16(e.Filename); err != nil {
				return nil, err
			}
			w.Uint32(e.Offset)
			w.Uint32(e.Size)
			w.Uint32(e.Reserved)
			w.Uint64(e.Timestamp)
		}
		for _, s := range []string{g.ExtVerbose, g.ExtSimple, g.GroupPath} {
			if err := w.String16(s); err != nil {
				return nil, err
			}
		}
		w.Uint16(g.Extra)
	}
	return w.Bytes(), nil
}

// EncodeFolderTable serializes the folder table.
func EncodeFolderTable(t *FolderTable) ([]byte, error) {
	w := NewWriter(1024)
	w.Uint32(t.GroupCount)
	w.Uint32(uint32(len(t.Folders)))
	for _, f := range t.Folders {
		if err := w.String16(f); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// IndexBuilder assembles the tables for a new archive from files added in
// walk order.
type IndexBuilder struct {
	groups    []ExtGroup
	groupIDs  map[string]int
	folders   []string
	folderIDs map[string]uint16
	now       func() time.Time
}

// NewIndexBuilder returns an empty builder stamping entries with now().
func NewIndexBuilder(now func() time.Time) *IndexBuilder {
	if now == nil {
		now = time.Now
	}
	return &IndexBuilder{
		groupIDs:  make(map[string]int),
		folderIDs: make(map[string]uint16),
		now:       now,
	}
}

// Add records a file at archivePath (backslash separated, relative to the
// pack root) whose body starts at offset.
//
// A directory whose name ends in "__" marks files that declare their parent
// through the filename: the folder entry drops the marker and the filename
// gets "<parent>\" prepended.
func (b *IndexBuilder) Add(archivePath string, offset, size uint32) (Entry, error) {
	dir, base := splitArchivePath(archivePath)

	dot := strings.LastIndexByte(base, '.')
	if dot < 0 || dot == len(base)-1 {
		return Entry{}, formatErrorf(archivePath, "file has no extension")
	}
	ext := base[dot+1:]
	stem := base[:dot]

	extSimple, groupPath := ext, ""
	if parts := strings.Split(ext, "@"); len(parts) == 2 {
		extSimple, groupPath = parts[0], parts[1]
	}

	flags, reserved, prefix := uint16(entryFlagPlain), uint32(0), ""
	if strings.HasSuffix(dir, parentMarker) {
		dir = strings.TrimSuffix(dir, parentMarker)
		prefix = archiveBase(dir) + archiveSep
		flags, reserved = entryFlagParentPath, 1
	}

	folderID, err := b.folderID(dir)
	if err != nil {
		return Entry{}, err
	}

	gi, ok := b.groupIDs[ext]
	if !ok {
		gi = len(b.groups)
		b.groupIDs[ext] = gi
		b.groups = append(b.groups, ExtGroup{})
	}
	g := &b.groups[gi]
	g.ExtVerbose = "." + ext
	g.ExtSimple = "." + extSimple
	g.GroupPath = groupPath

	e := Entry{
		Flags:      flags,
		FolderID:   folderID,
		Filename:   prefix + stem,
		Offset:     offset,
		Size:       size,
		Reserved:   reserved,
		Timestamp:  UnixToFiletime(b.now()),
		ExtVerbose: g.ExtVerbose,
		ExtSimple:  g.ExtSimple,
		GroupPath:  g.GroupPath,
		Extra:      g.Extra,
	}
	g.Entries = append(g.Entries, e)
	return e, nil
}

func (b *IndexBuilder) folderID(dir string) (uint16, error) {
	if id, ok := b.folderIDs[dir]; ok {
		return id, nil
	}
	if len(b.folders) > 0xFFFF {
		return 0, formatErrorf(dir, "too many folders for a 16-bit folder id")
	}
	id := uint16(len(b.folders))
	b.folderIDs[dir] = id
	b.folders = append(b.folders, dir)
	return id, nil
}

// Index returns the tables built so far.
func (b *IndexBuilder) Index() *Index {
	groups := make([]ExtGroup, len(b.groups))
	copy(groups, b.groups)
	return &Index{
		Files: &FileTable{Groups: groups},
		Folders: &FolderTable{
			GroupCount: uint32(len(groups)),
			Folders:    append([]string(nil), b.folders...),
		},
	}
}
