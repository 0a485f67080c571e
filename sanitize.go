// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import "strings"

// Substitute code points for characters the INI text format reserves.
const (
	subNewline     = 449 // ǁ
	subExclamation = 451 // ǃ
	subQuote       = 698 // ʺ
	subSemicolon   = 450 // ǂ
)

var textSubstitutes = map[rune]rune{
	'\n': subNewline,
	'!':  subExclamation,
	'"':  subQuote,
	';':  subSemicolon,
}

var storageChars = map[rune]rune{
	subNewline:     '\n',
	subExclamation: '!',
	subQuote:       '"',
	subSemicolon:   ';',
}

// ToText maps a stored character to the form written to text files.
func ToText(c rune) rune {
	if s, ok := textSubstitutes[c]; ok {
		return s
	}
	return c
}

// ToStorage maps a text-file character back to its stored form.
func ToStorage(c rune) rune {
	if s, ok := storageChars[c]; ok {
		return s
	}
	return c
}

// SanitizeText applies ToText to every rune of s.
func SanitizeText(s string) string {
	return strings.Map(ToText, s)
}

// RestoreText applies ToStorage to every rune of s.
func RestoreText(s string) string {
	return strings.Map(ToStorage, s)
}

// LegendEntry describes one reserved character and its substitute.
type LegendEntry struct {
	Substitute rune
	Reserved   rune
	Name       string
}

// ReservedLegend lists the substitutions in the order they are documented in
// generated text files.
func ReservedLegend() []LegendEntry {
	return []LegendEntry{
		{Substitute: subNewline, Reserved: '\n', Name: "New line"},
		{Substitute: subExclamation, Reserved: '!', Name: "Exclamation mark"},
		{Substitute: subQuote, Reserved: '"', Name: "Quotation mark"},
		{Substitute: subSemicolon, Reserved: ';', Name: "Semicolon"},
	}
}
