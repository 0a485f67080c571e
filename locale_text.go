// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Version is written into the header of generated text files.
const Version = "1.0.0"

const commentRule = "; ============================================================="

// WriteText writes l as INI-style text: one [path] header each time the
// group path changes, then <order>-<name>=<text> per item.
func WriteText(w io.Writer, l *Locale) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, commentRule)
	fmt.Fprintf(bw, "; File created by %s v%s\n", localeTextTool, Version)
	fmt.Fprintln(bw, commentRule)
	fmt.Fprintln(bw, "; Some characters are reserved on INI files and need to be replaced by a wildcard.")
	fmt.Fprintln(bw, "; The wildcards are replaced with the real characters when packing the final file.")
	fmt.Fprintln(bw, "; Copy and paste to replace desired characters.")
	fmt.Fprintln(bw, "; IMPORTANT: Some characters looks similar but are different.")
	for _, e := range ReservedLegend() {
		fmt.Fprintf(bw, ";   %c <- %s\n", e.Substitute, e.Name)
	}
	fmt.Fprintln(bw, commentRule)
	fmt.Fprintln(bw)

	lastGroup := ""
	err := l.Walk(func(path []string, item *Item) error {
		group := strings.Join(path, "/")
		if group != lastGroup {
			lastGroup = group
			fmt.Fprintf(bw, "[%s]\n", group)
		}
		_, err := fmt.Fprintf(bw, "%d-%s=%s\n", item.Order, item.Name, item.Text)
		return err
	})
	if err != nil {
		return err
	}

	return bw.Flush()
}

// textEntry is one key of a text file, split into its parts.
type textEntry struct {
	path  []string
	order int
	name  string
	text  string
}

// ParseText reads the INI-style text produced by WriteText and rebuilds
// the locale tree.
func ParseText(r io.Reader) (*Locale, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	entries, err := parseTextEntries(data)
	if err != nil {
		return nil, err
	}
	return buildLocale(entries)
}

// rawLine is a key line as written, before the INI parser sees it.
type rawLine struct {
	line  int
	key   string
	value string
}

var utf8BOM = []byte("\xEF\xBB\xBF")

// maskKeyLines swaps every key line for a placeholder key so the INI parser
// only resolves sections. Keys and values are kept verbatim; the parser
// would otherwise strip quotes and backticks from translated text.
func maskKeyLines(data []byte) ([]byte, []rawLine) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var masked bytes.Buffer
	var raws []rawLine
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, "=")
		if trimmed == "" || trimmed[0] == ';' || trimmed[0] == '#' || trimmed[0] == '[' || !ok {
			masked.WriteString(line)
			masked.WriteByte('\n')
			continue
		}
		fmt.Fprintf(&masked, "k%d=\n", len(raws))
		raws = append(raws, rawLine{line: i + 1, key: strings.TrimSpace(key), value: value})
	}
	return masked.Bytes(), raws
}

// parseTextEntries is the first pass: INI sections and keys become
// (path, order, name, text) entries in file order.
func parseTextEntries(data []byte) ([]textEntry, error) {
	masked, raws := maskKeyLines(data)

	cfg, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:      "=",
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
		SkipUnrecognizableLines: false,
	}, masked)
	if err != nil {
		return nil, formatErrorf("", "parse text: %v", err)
	}

	var entries []textEntry
	for _, section := range cfg.Sections() {
		keys := section.Keys()
		if section.Name() == ini.DefaultSection {
			if len(keys) > 0 {
				raw, _ := lookupRawLine(raws, keys[0].Name())
				return nil, formatErrorf("", "line %d: key %q appears before any [section]", raw.line, raw.key)
			}
			continue
		}

		path := strings.Split(section.Name(), "/")
		for _, seg := range path {
			if seg == "" {
				return nil, formatErrorf("", "section [%s] has an empty path segment", section.Name())
			}
		}

		for _, key := range keys {
			raw, ok := lookupRawLine(raws, key.Name())
			if !ok {
				return nil, formatErrorf("", "section [%s]: unexpected key %q", section.Name(), key.Name())
			}
			order, name, err := splitItemKey(raw.key)
			if err != nil {
				return nil, formatErrorf("", "line %d: %v", raw.line, err)
			}
			entries = append(entries, textEntry{
				path:  path,
				order: order,
				name:  name,
				text:  raw.value,
			})
		}
	}
	return entries, nil
}

// lookupRawLine resolves a placeholder key written by maskKeyLines.
func lookupRawLine(raws []rawLine, placeholder string) (rawLine, bool) {
	idx, err := strconv.Atoi(strings.TrimPrefix(placeholder, "k"))
	if err != nil || !strings.HasPrefix(placeholder, "k") || idx < 0 || idx >= len(raws) {
		return rawLine{}, false
	}
	return raws[idx], true
}

// splitItemKey splits "<order>-<name>".
func splitItemKey(key string) (int, string, error) {
	orderStr, name, ok := strings.Cut(key, "-")
	if !ok {
		return 0, "", fmt.Errorf("key %q is not <order>-<name>", key)
	}
	order, err := strconv.Atoi(orderStr)
	if err != nil || order < 1 {
		return 0, "", fmt.Errorf("key %q has invalid order %q", key, orderStr)
	}
	return order, name, nil
}

// groupBuilder accumulates one group's items and subgroups.
type groupBuilder struct {
	name   string
	items  []*Item
	groups []*groupBuilder
	byName map[string]*groupBuilder
}

func newGroupBuilder(name string) *groupBuilder {
	return &groupBuilder{name: name, byName: make(map[string]*groupBuilder)}
}

func (b *groupBuilder) child(name string) *groupBuilder {
	if c, ok := b.byName[name]; ok {
		return c
	}
	c := newGroupBuilder(name)
	b.byName[name] = c
	b.groups = append(b.groups, c)
	return c
}

// build places items at their recorded order and lets subgroups fill the
// remaining positions in first-seen order.
func (b *groupBuilder) build() *Group {
	items := append([]*Item(nil), b.items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })

	g := &Group{Name: b.name, Children: make([]Node, 0, len(items)+len(b.groups))}
	groups := b.groups
	for pos := 1; len(items) > 0 || len(groups) > 0; pos++ {
		if len(items) > 0 && (items[0].Order <= pos || len(groups) == 0) {
			g.Children = append(g.Children, items[0])
			items = items[1:]
			continue
		}
		g.Children = append(g.Children, groups[0].build())
		groups = groups[1:]
	}
	return g
}

// buildLocale is the second pass: fold entries into a tree.
func buildLocale(entries []textEntry) (*Locale, error) {
	if len(entries) == 0 {
		return nil, formatErrorf("", "text contains no items")
	}

	rootName := entries[0].path[0]
	root := newGroupBuilder(rootName)
	for _, e := range entries {
		if e.path[0] != rootName {
			return nil, formatErrorf("", "section [%s] does not start with root %q", strings.Join(e.path, "/"), rootName)
		}
		g := root
		for _, seg := range e.path[1:] {
			g = g.child(seg)
		}
		kind := Untranslated
		if e.text != "" {
			kind = Translated
		}
		g.items = append(g.items, &Item{Order: e.order, Name: e.name, Kind: kind, Text: e.text})
	}

	return &Locale{Root: root.build()}, nil
}
