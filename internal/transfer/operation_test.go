// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/transfer"
)

// supportedPairs is the full cross product of valid rail/kind combinations.
var supportedPairs = []struct {
	rail transfer.Rail
	kind transfer.DestinationKind
}{
	{transfer.RailInternal, transfer.KindFavorite},
	{transfer.RailInternal, transfer.KindManual},
	{transfer.RailInternal, transfer.KindOwnAccount},
	{transfer.RailSinpeImmediate, transfer.KindFavorite},
	{transfer.RailSinpeImmediate, transfer.KindManual},
	{transfer.RailSinpeCredit, transfer.KindFavorite},
	{transfer.RailSinpeCredit, transfer.KindManual},
	{transfer.RailSinpeDebit, transfer.KindFavorite},
	{transfer.RailSinpeDebit, transfer.KindManual},
	{transfer.RailMovil, transfer.KindFavorite},
	{transfer.RailMovil, transfer.KindManual},
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	seen := make(map[transfer.OperationType]bool)

	for _, pair := range supportedPairs {
		first := transfer.Classify(pair.rail, pair.kind)
		second := transfer.Classify(pair.rail, pair.kind)

		// Deterministic: two calls, same result.
		assert.Equal(t, first, second)
		assert.NotEmpty(t, first)

		// Injective: every pair maps to its own operation type.
		assert.False(t, seen[first], "operation type %q mapped twice", first)
		seen[first] = true
	}

	assert.Len(t, seen, len(supportedPairs))
}

func TestClassify_InternalFavoriteVsManualDistinct(t *testing.T) {
	favorite := transfer.Classify(transfer.RailInternal, transfer.KindFavorite)
	manual := transfer.Classify(transfer.RailInternal, transfer.KindManual)

	assert.NotEqual(t, favorite, manual)
	assert.Equal(t, transfer.OpInternaCuentaFavorita, favorite)
	assert.Equal(t, transfer.OpInternaCuentaDigitada, manual)
}

func TestClassify_UnmappedPairPanics(t *testing.T) {
	// Own-account is only valid on the internal rail.
	assert.Panics(t, func() {
		transfer.Classify(transfer.RailMovil, transfer.KindOwnAccount)
	})
	assert.Panics(t, func() {
		transfer.Classify(transfer.Rail("carrier_pigeon"), transfer.KindManual)
	})
}

func TestSupportedKinds(t *testing.T) {
	assert.ElementsMatch(t,
		[]transfer.DestinationKind{transfer.KindFavorite, transfer.KindManual, transfer.KindOwnAccount},
		transfer.SupportedKinds(transfer.RailInternal),
	)
	assert.ElementsMatch(t,
		[]transfer.DestinationKind{transfer.KindFavorite, transfer.KindManual},
		transfer.SupportedKinds(transfer.RailMovil),
	)
}
