// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteText(t *testing.T) {
	l, err := DecodeLocale(sampleLocalePayload(t), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, l))
	text := buf.String()

	assert.True(t, strings.HasPrefix(text, "; ====="))
	assert.Contains(t, text, "; File created by fwpak v"+Version)
	assert.Contains(t, text, ";   ǁ <- New line\n")
	assert.Contains(t, text, "[root/ui]\n1-title=HelloǁWorld\n[root]\n2-empty=\n")
}

func TestParseTextSimple(t *testing.T) {
	l, err := ParseText(strings.NewReader("[root/ui]\n1-title=Hello\n"))
	require.NoError(t, err)

	require.Equal(t, "root", l.Root.Name)
	require.Len(t, l.Root.Children, 1)
	ui := l.Root.Children[0].(*Group)
	assert.Equal(t, "ui", ui.Name)
	require.Len(t, ui.Children, 1)

	title := ui.Children[0].(*Item)
	assert.Equal(t, &Item{Order: 1, Name: "title", Kind: Translated, Text: "Hello"}, title)
}

func TestParseTextGroupsFillGaps(t *testing.T) {
	text := "[root]\n2-b=x\n4-d=\n[root/g]\n1-a=y\n[root/h]\n1-c=z\n"
	l, err := ParseText(strings.NewReader(text))
	require.NoError(t, err)

	var names []string
	for _, n := range l.Root.Children {
		names = append(names, n.NodeName())
	}
	assert.Equal(t, []string{"g", "b", "h", "d"}, names)

	d := l.Root.Children[3].(*Item)
	assert.Equal(t, Untranslated, d.Kind)
}

func TestTextRoundTrip(t *testing.T) {
	l, err := DecodeLocale(sampleLocalePayload(t), nil)
	require.NoError(t, err)

	var first bytes.Buffer
	require.NoError(t, WriteText(&first, l))

	parsed, err := ParseText(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	payload, err := EncodeLocale(parsed)
	require.NoError(t, err)
	assert.Equal(t, sampleLocalePayload(t), payload)

	var second bytes.Buffer
	require.NoError(t, WriteText(&second, parsed))
	assert.Equal(t, first.String(), second.String())
}

func TestTextRoundTripVerbatimValues(t *testing.T) {
	texts := []string{
		"`quoted` word",
		"`open",
		"ends with `",
		"'single' quotes",
		"#not a comment",
		"a = b == c",
		"  padded  ",
		"[bracketed]",
		"trailing backslash \\",
		"ǃǂʺ already substituted",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			l := &Locale{Root: &Group{Name: "root", Children: []Node{
				&Item{Order: 1, Name: "line", Kind: Translated, Text: text},
			}}}

			var first bytes.Buffer
			require.NoError(t, WriteText(&first, l))

			parsed, err := ParseText(bytes.NewReader(first.Bytes()))
			require.NoError(t, err)
			require.Len(t, parsed.Root.Children, 1)
			assert.Equal(t, text, parsed.Root.Children[0].(*Item).Text)

			var second bytes.Buffer
			require.NoError(t, WriteText(&second, parsed))
			assert.Equal(t, first.String(), second.String())
		})
	}
}

func TestParseTextCRLF(t *testing.T) {
	l, err := ParseText(strings.NewReader("\xEF\xBB\xBF[root/ui]\r\n1-title=`Hi`\r\n"))
	require.NoError(t, err)
	ui := l.Root.Children[0].(*Group)
	assert.Equal(t, "`Hi`", ui.Children[0].(*Item).Text)
}

func TestTextReservedCharacters(t *testing.T) {
	l := &Locale{Root: &Group{Name: "root", Children: []Node{
		&Item{Order: 1, Name: "line", Kind: Translated, Text: SanitizeText("Wait!\n\"Go\"; now")},
	}}}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, l))

	parsed, err := ParseText(&buf)
	require.NoError(t, err)
	item := parsed.Root.Children[0].(*Item)
	assert.Equal(t, "Wait!\n\"Go\"; now", RestoreText(item.Text))
}

func TestParseTextErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no items", "; only a comment\n"},
		{"key before section", "1-a=b\n[root]\n1-c=d\n"},
		{"missing order", "[root]\ntitle=Hello\n"},
		{"zero order", "[root]\n0-title=Hello\n"},
		{"bad order", "[root]\nx-title=Hello\n"},
		{"empty segment", "[root//ui]\n1-title=Hello\n"},
		{"two roots", "[root]\n1-a=b\n[other]\n1-c=d\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(tt.text))
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
		})
	}
}
