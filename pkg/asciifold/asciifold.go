// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

// Package asciifold folds Unicode strings to plain ASCII.
//
// # Usage
//
// SINPE wire formats only carry ASCII in free-text fields, so transfer
// details typed in Spanish ("Pago de alquiler, cañón") are folded before
// submission. Unlike a slugger, case and spacing are preserved.
package asciifold

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold converts an arbitrary Unicode string into its closest ASCII form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents), turning "ñ" into "n".
// 3. Drops any remaining non-ASCII runes.
// 4. Collapses runs of whitespace into single spaces and trims.
func Fold(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Drop whatever still falls outside printable ASCII
	result = strings.Map(func(r rune) rune {
		if r >= 0x20 && r < 0x7F {
			return r
		}
		return -1
	}, result)

	// 3. Collapse whitespace
	return strings.Join(strings.Fields(result), " ")
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
