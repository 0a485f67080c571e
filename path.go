// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"path/filepath"
	"strings"
)

// toArchivePath converts a relative OS path to the archive's backslash form.
func toArchivePath(rel string) string {
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", archiveSep)
}

// fromArchivePath converts a backslash archive path to an OS path.
func fromArchivePath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, archiveSep, "/"))
}

// lastIndexOfSlash finds the last path separator in a string
func lastIndexOfSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\\' || s[i] == '/' {
			return i
		}
	}
	return -1
}

// splitArchivePath splits an archive path into directory and base name.
// A path without a directory reports ".".
func splitArchivePath(p string) (dir, base string) {
	idx := lastIndexOfSlash(p)
	if idx < 0 {
		return ".", p
	}
	return p[:idx], p[idx+1:]
}

// archiveBase returns the last segment of an archive path.
func archiveBase(p string) string {
	return p[lastIndexOfSlash(p)+1:]
}

// archiveFirst returns the first segment of an archive path.
func archiveFirst(p string) string {
	if idx := strings.IndexAny(p, "\\/"); idx >= 0 {
		return p[:idx]
	}
	return p
}

// withinDir reports whether target stays inside dir once both are cleaned.
func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
