// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"strings"

	"go.uber.org/zap"
)

// ItemKind tells whether an item carries a translation.
type ItemKind int

const (
	Untranslated ItemKind = iota
	Translated
)

func (k ItemKind) String() string {
	if k == Translated {
		return "translated"
	}
	return "untranslated"
}

// Node is either a *Group or an *Item.
type Node interface {
	NodeName() string
	isNode()
}

// Group is an interior node of the locale tree. Children keep file order.
type Group struct {
	Name     string
	Children []Node
}

// Item is a leaf of the locale tree.
type Item struct {
	Order   int // 1-based position among the parent's children
	Name    string
	Kind    ItemKind
	Text    string // with reserved characters substituted
	Trailer uint32 // opaque field following the item tag
}

func (g *Group) NodeName() string { return g.Name }
func (i *Item) NodeName() string  { return i.Name }
func (*Group) isNode()            {}
func (*Item) isNode()             {}

// Locale is a decoded localization file.
type Locale struct {
	Root     *Group
	Reserved uint32 // opaque field following the root name
}

// LocaleEntry is an item paired with the path of the group holding it.
type LocaleEntry struct {
	Path []string
	Item *Item
}

// GroupPath joins the entry path the way section headers do.
func (e LocaleEntry) GroupPath() string {
	return strings.Join(e.Path, "/")
}

// Walk calls fn for every item in depth-first file order. path starts with
// the root name and must not be retained by fn.
func (l *Locale) Walk(fn func(path []string, item *Item) error) error {
	if l.Root == nil {
		return nil
	}
	return walkGroup([]string{l.Root.Name}, l.Root, fn)
}

func walkGroup(path []string, g *Group, fn func([]string, *Item) error) error {
	for _, child := range g.Children {
		switch n := child.(type) {
		case *Group:
			if err := walkGroup(append(path, n.Name), n, fn); err != nil {
				return err
			}
		case *Item:
			if err := fn(path, n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Items flattens the tree into entries in file order.
func (l *Locale) Items() []LocaleEntry {
	var out []LocaleEntry
	_ = l.Walk(func(path []string, item *Item) error {
		out = append(out, LocaleEntry{Path: append([]string(nil), path...), Item: item})
		return nil
	})
	return out
}

// DecodeLocale parses an uncompressed locale payload.
func DecodeLocale(payload []byte, opts *Options) (*Locale, error) {
	opts = opts.withDefaults()
	d := &localeDecoder{
		r:        NewReader(payload),
		log:      opts.Logger,
		maxDepth: opts.MaxDepth,
	}

	name, err := d.r.String8()
	if err != nil {
		return nil, err
	}
	reserved, err := d.r.Uint32()
	if err != nil {
		return nil, err
	}

	root := &Group{Name: name}
	root.Children, err = d.readGroupBody([]string{name})
	if err != nil {
		return nil, err
	}

	if !d.r.EOF() {
		return nil, decodeErrorf(d.r.Offset(), "%d trailing bytes after locale tree", d.r.Remaining())
	}

	d.log.Debug("decoded locale", zap.String("root", name), zap.Int("items", d.items), zap.Int("bytes", len(payload)))

	return &Locale{Root: root, Reserved: reserved}, nil
}

type localeDecoder struct {
	r        *Reader
	log      *zap.Logger
	maxDepth int
	items    int
}

// readGroupBody reads a child count and the children. path is the group
// path including the group being read.
func (d *localeDecoder) readGroupBody(path []string) ([]Node, error) {
	if len(path) > d.maxDepth {
		return nil, decodeErrorf(d.r.Offset(), "locale tree nested deeper than %d levels at %s",
			d.maxDepth, strings.Join(path, "/"))
	}

	start := d.r.Offset()
	count, err := d.r.Uint32()
	if err != nil {
		return nil, err
	}
	// Every child needs at least a name length and a tag.
	if int64(count)*5 > int64(d.r.Remaining()) {
		return nil, decodeErrorf(start, "group %s declares %d children, only %d bytes left",
			strings.Join(path, "/"), count, d.r.Remaining())
	}

	d.log.Debug("group", zap.String("path", strings.Join(path, "/")),
		zap.Uint32("count", count), zap.Int("offset", start))

	children := make([]Node, 0, count)
	for order := 1; order <= int(count); order++ {
		node, err := d.readChild(path, order)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return children, nil
}

func (d *localeDecoder) readChild(path []string, order int) (Node, error) {
	name, err := d.r.String8()
	if err != nil {
		return nil, err
	}

	tagOffset := d.r.Offset()
	tag, err := d.r.Uint32()
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagGroup:
		childPath := append(path[:len(path):len(path)], name)
		children, err := d.readGroupBody(childPath)
		if err != nil {
			return nil, err
		}
		return &Group{Name: name, Children: children}, nil

	case tagTranslated:
		text, err := d.r.Unicode()
		if err != nil {
			return nil, err
		}
		trailer, err := d.r.Uint32()
		if err != nil {
			return nil, err
		}
		d.items++
		return &Item{Order: order, Name: name, Kind: Translated, Text: text, Trailer: trailer}, nil

	case tagUntranslated:
		trailer, err := d.r.Uint32()
		if err != nil {
			return nil, err
		}
		d.items++
		return &Item{Order: order, Name: name, Kind: Untranslated, Trailer: trailer}, nil
	}

	return nil, decodeErrorf(tagOffset, "unknown type tag %d for %q in %s", tag, name, strings.Join(path, "/"))
}

// EncodeLocale serializes a locale tree. Items with empty text are written
// as untranslated regardless of their Kind.
func EncodeLocale(l *Locale) ([]byte, error) {
	if l == nil || l.Root == nil {
		return nil, formatErrorf("", "locale has no root group")
	}

	w := NewWriter(4096)
	if err := w.String8(l.Root.Name); err != nil {
		return nil, err
	}
	w.Uint32(l.Reserved)
	if err := writeGroupBody(w, l.Root); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func writeGroupBody(w *Writer, g *Group) error {
	w.Uint32(uint32(len(g.Children)))
	for _, child := range g.Children {
		switch n := child.(type) {
		case *Group:
			if err := w.String8(n.Name); err != nil {
				return err
			}
			w.Uint32(tagGroup)
			if err := writeGroupBody(w, n); err != nil {
				return err
			}
		case *Item:
			if err := w.String8(n.Name); err != nil {
				return err
			}
			if n.Text == "" {
				// tag 0 and the zero trailer as one field
				w.Uint64(0)
				continue
			}
			w.Uint32(tagTranslated)
			if err := w.Unicode(n.Text); err != nil {
				return err
			}
			w.Uint32(n.Trailer)
		default:
			return formatErrorf("", "unsupported locale node %T", child)
		}
	}
	return nil
}
