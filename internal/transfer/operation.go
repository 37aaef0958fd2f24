// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import "fmt"

// OperationType is the canonical classifier key the core uses to decide
// challenge requirements. Values follow the core's own (Spanish) catalog and
// are treated as opaque keys everywhere outside this file: no component may
// branch on rail or destination kind for challenge decisions.
type OperationType string

const (
	OpInternaCuentaFavorita OperationType = "TransferenciaInternaCuentaFavorita"
	OpInternaCuentaDigitada OperationType = "TransferenciaInternaCuentaDigitada"
	OpInternaCuentaPropia   OperationType = "TransferenciaInternaCuentaPropia"

	OpSinpeInmediataCuentaFavorita OperationType = "TransferenciaSinpeInmediataCuentaFavorita"
	OpSinpeInmediataCuentaDigitada OperationType = "TransferenciaSinpeInmediataCuentaDigitada"

	OpSinpeCreditoCuentaFavorita OperationType = "TransferenciaSinpeCreditoCuentaFavorita"
	OpSinpeCreditoCuentaDigitada OperationType = "TransferenciaSinpeCreditoCuentaDigitada"

	OpSinpeDebitoCuentaFavorita OperationType = "TransferenciaSinpeDebitoCuentaFavorita"
	OpSinpeDebitoCuentaDigitada OperationType = "TransferenciaSinpeDebitoCuentaDigitada"

	OpMonederoFavorito OperationType = "TransferenciaMonederoFavorito"
	OpMonederoDigitado OperationType = "TransferenciaMonederoDigitado"
)

// operationTable is the single source of truth for the rail × kind mapping.
// When the core introduces a new rail or destination kind, this table is the
// only place that changes.
var operationTable = map[Rail]map[DestinationKind]OperationType{
	RailInternal: {
		KindFavorite:   OpInternaCuentaFavorita,
		KindManual:     OpInternaCuentaDigitada,
		KindOwnAccount: OpInternaCuentaPropia,
	},
	RailSinpeImmediate: {
		KindFavorite: OpSinpeInmediataCuentaFavorita,
		KindManual:   OpSinpeInmediataCuentaDigitada,
	},
	RailSinpeCredit: {
		KindFavorite: OpSinpeCreditoCuentaFavorita,
		KindManual:   OpSinpeCreditoCuentaDigitada,
	},
	RailSinpeDebit: {
		KindFavorite: OpSinpeDebitoCuentaFavorita,
		KindManual:   OpSinpeDebitoCuentaDigitada,
	},
	RailMovil: {
		KindFavorite: OpMonederoFavorito,
		KindManual:   OpMonederoDigitado,
	},
}

// Classify maps a (rail, destination kind) pair to its operation type.
//
// The function is pure, total over the supported cross product, and
// deterministic. An unmapped pair (e.g. own-account on a SINPE rail) is a
// programming error upstream — the HTTP layer validates kinds per rail
// before building an attempt — so Classify panics rather than returning a
// recoverable error.
func Classify(rail Rail, kind DestinationKind) OperationType {
	kinds, ok := operationTable[rail]
	if ok {
		if operation, ok := kinds[kind]; ok {
			return operation
		}
	}
	panic(fmt.Sprintf("transfer: no operation type mapped for rail=%q kind=%q", rail, kind))
}

// SupportedKinds returns the destination kinds valid for a rail, used by the
// HTTP layer to reject invalid combinations before an attempt is created.
func SupportedKinds(rail Rail) []DestinationKind {
	kinds := make([]DestinationKind, 0, 3)
	for kind := range operationTable[rail] {
		kinds = append(kinds, kind)
	}
	return kinds
}
