// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package fwpak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTable(t *testing.T) {
	pairs := map[rune]rune{'\n': 449, '!': 451, '"': 698, ';': 450}
	for reserved, sub := range pairs {
		assert.Equal(t, sub, ToText(reserved))
		assert.Equal(t, reserved, ToStorage(sub))
		assert.Equal(t, reserved, ToStorage(ToText(reserved)))
	}
	assert.Equal(t, 'a', ToText('a'))
	assert.Equal(t, 'a', ToStorage('a'))
}

func TestSanitizeText(t *testing.T) {
	in := "Hi!\n\"Quote\"; done"
	out := SanitizeText(in)
	assert.NotContains(t, out, "\n")
	assert.NotContains(t, out, ";")
	assert.Equal(t, in, RestoreText(out))
}

func TestReservedLegend(t *testing.T) {
	legend := ReservedLegend()
	assert.Len(t, legend, 4)
	for _, e := range legend {
		assert.Equal(t, e.Substitute, ToText(e.Reserved), e.Name)
	}
}
