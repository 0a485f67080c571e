// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package fwpak reads and writes .pak asset archives and binary localization
files (.ptxt4, .ptxt4@loc), and converts localization files to an editable
INI-style text form and back.

# Archives

A .pak file stores file bodies back to back from offset 0, followed by two
zlib-compressed blocks (the file table and the folder table) and a final
little-endian uint32 holding the offset of the first block.

Unpacking an archive:

	out, err := fwpak.Unpack("en.pak", "work", nil)
	if err != nil {
		log.Fatal(err)
	}
	// out == "work/en"

Packing a folder:

	pak, err := fwpak.Pack("work/en", "dist", nil)

Reading entries directly:

	archive, err := fwpak.OpenArchive("en.pak", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	for _, e := range archive.Entries() {
		data, err := archive.ReadEntry(e)
		...
	}

# Extensions and folders

Files are grouped by extension. An extension such as "ogg@voice" is split
at "@" into a simple extension and a group path stored in the group footer.
A folder whose name ends in "__" holds files whose archive name carries
their parent folder as a "parent\" prefix; the marker is dropped from the
stored folder path and restored on unpack.

# Localization files

A localization file is one compressed block holding a tree of named groups
and text items. Item text is UTF-16LE on disk. Newlines, "!", '"' and ";"
are replaced by look-alike code points in memory so the text survives the
INI form:

	out, err := fwpak.UnpackLocale("data/en.ptxt4", "work", nil) // work/en.ini
	...
	out, err = fwpak.PackLocale("work/en.ini", "dist", nil) // dist/en.ptxt4@loc

# Options

Every operation takes an [*Options]; nil means [DefaultOptions]. Existing
outputs are backed up with a "_backup_YYYY-MM-DD_HH-MM-SS" suffix unless
Backup is false.
*/
package fwpak
