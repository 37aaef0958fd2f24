// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package asciifold_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/pkg/asciifold"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain_ascii", "Pago de alquiler marzo", "Pago de alquiler marzo"},
		{"spanish_accents", "Pago de matrícula, cañón", "Pago de matricula, canon"},
		{"case_preserved", "PAGO Alquiler", "PAGO Alquiler"},
		{"collapses_whitespace", "  Pago   de \t alquiler ", "Pago de alquiler"},
		{"drops_non_latin", "Pago → alquiler", "Pago alquiler"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, asciifold.Fold(tt.input))
		})
	}
}
