// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"time"

	"go.uber.org/zap"
)

// Options controls logging, backups and debugging for every operation in
// this package. A nil *Options is equivalent to DefaultOptions().
type Options struct {
	// Logger receives debug traces and progress messages. Nil disables logging.
	Logger *zap.Logger

	// Backup keeps existing output files by renaming or copying them
	// to a timestamped name before they are replaced.
	Backup bool

	// DumpPayloads writes the uncompressed metadata payloads next to the
	// output for inspection with a hex editor.
	DumpPayloads bool

	// MaxDepth bounds locale tree nesting during decode.
	MaxDepth int

	// Now is the clock used for archive timestamps and backup names.
	Now func() time.Time
}

// DefaultOptions returns options with backups enabled and logging disabled.
func DefaultOptions() *Options {
	return &Options{
		Logger:   zap.NewNop(),
		Backup:   true,
		MaxDepth: defaultMaxDepth,
		Now:      time.Now,
	}
}

// withDefaults returns a copy of o with unset fields filled in.
func (o *Options) withDefaults() *Options {
	if o == nil {
		return DefaultOptions()
	}
	out := *o
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.MaxDepth <= 0 {
		out.MaxDepth = defaultMaxDepth
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return &out
}
