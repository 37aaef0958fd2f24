// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package corebank

import "time"

// Wire DTOs for the core banking API. JSON tags mirror the core's Spanish
// field names exactly; renaming happens in the domain layer, never here.

// # Credential Exchange

// TokenRequest is the body of POST /token.
type TokenRequest struct {
	Usuario       string `json:"usuario"`
	Contrasena    string `json:"contrasena"`
	IDInstalacion string `json:"idInstalacion"`
	Canal         string `json:"canal"`
}

// TokenResponse carries the bearer credential and its declared expiry.
type TokenResponse struct {
	TokenAcceso     string    `json:"tokenAcceso"`
	FechaExpiracion time.Time `json:"fechaExpiracion"`
}

// # Second-Factor Challenges

// ChallengeCreateRequest is the body of POST /challenge/create.
type ChallengeCreateRequest struct {
	TipoOperacion string            `json:"tipoOperacion"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Canal         string            `json:"canal"`
	IPCliente     string            `json:"ipCliente"`
}

// ChallengeCreateResponse describes the issued challenge. FechaExpiracion is
// authoritative; the client must not compensate for clock skew.
type ChallengeCreateResponse struct {
	IDPublico                        string    `json:"idPublico"`
	FactoresSolicitados              []string  `json:"factoresSolicitados"`
	FechaExpiracion                  time.Time `json:"fechaExpiracion"`
	TiempoExpiracionSegundos         int       `json:"tiempoExpiracionSegundos"`
	TiempoMaximoConfirmacionSegundos int       `json:"tiempoMaximoConfirmacionSegundos"`
	IntentosMaximos                  int       `json:"intentosMaximos"`
}

// ChallengeValidateRequest is the body of POST /challenge/validate. Either
// code may be empty depending on the requested proof kinds.
type ChallengeValidateRequest struct {
	IDPublico    string `json:"idPublico"`
	CodigoOTP    string `json:"codigoOtp,omitempty"`
	CodigoCorreo string `json:"codigoCorreo,omitempty"`
}

// Challenge states as reported by the core.
const (
	ChallengeStateValidated = "VALIDADO"
	ChallengeStateRejected  = "RECHAZADO"
	ChallengeStateExpired   = "EXPIRADO"
)

// ChallengeValidateResponse is the proof-validation outcome.
type ChallengeValidateResponse struct {
	IDPublico       string    `json:"idPublico"`
	Estado          string    `json:"estado"`
	Validado        bool      `json:"validado"`
	FechaValidacion time.Time `json:"fechaValidacion"`
}

// # Destination Lookups

// DestinationResponse is the titleholder descriptor returned by the per-rail
// lookup endpoints.
type DestinationResponse struct {
	Identificador string `json:"identificador"`
	Titular       string `json:"titular"`
	Moneda        string `json:"moneda"`
	CodigoBanco   string `json:"codigoBanco,omitempty"`
}

// # Directory

// AccountSummary is one of the member's own accounts.
type AccountSummary struct {
	IDCuenta    string `json:"idCuenta"`
	Numero      string `json:"numero"`
	Descripcion string `json:"descripcion"`
	Moneda      string `json:"moneda"`
	Saldo       int64  `json:"saldo"`
}

// FavoriteEntry is a saved transfer destination.
type FavoriteEntry struct {
	IDFavorito    string `json:"idFavorito"`
	Alias         string `json:"alias"`
	Identificador string `json:"identificador"`
	Titular       string `json:"titular"`
	Moneda        string `json:"moneda"`
	CodigoBanco   string `json:"codigoBanco,omitempty"`
}

// # Transfer Submissions
//
// One request/response pair per rail. The shapes genuinely differ at the
// core: reference fields, party naming, and commission reporting are all
// rail-specific. The submitter normalizes them into one outcome type.

// InternalTransferRequest submits a transfer between cooperative accounts.
type InternalTransferRequest struct {
	CuentaOrigen  string `json:"cuentaOrigen"`
	CuentaDestino string `json:"cuentaDestino"`
	Monto         int64  `json:"monto"`
	Moneda        string `json:"moneda"`
	Detalle       string `json:"detalle"`
	IDReto        string `json:"idReto,omitempty"`
}

// InternalTransferResponse carries the core ledger document number.
type InternalTransferResponse struct {
	NumeroDocumentoCore string    `json:"numeroDocumentoCore"`
	FechaCreacion       time.Time `json:"fechaCreacion"`
	Monto               int64     `json:"monto"`
}

// SinpeImmediateRequest submits a SINPE "pagos inmediatos" transfer.
type SinpeImmediateRequest struct {
	CuentaOrigen  string `json:"cuentaOrigen"`
	CuentaDestino string `json:"cuentaDestino"`
	Monto         int64  `json:"monto"`
	Moneda        string `json:"moneda"`
	Detalle       string `json:"detalle"`
	IDReto        string `json:"idReto,omitempty"`
}

// SinpeImmediateResponse carries the SINPE network reference.
type SinpeImmediateResponse struct {
	ReferenciaSinpe string    `json:"referenciaSinpe"`
	FechaCreacion   time.Time `json:"fechaCreacion"`
	Monto           int64     `json:"monto"`
	Comision        int64     `json:"comision"`
}

// SinpeCreditRequest submits a SINPE direct credit ("créditos directos").
type SinpeCreditRequest struct {
	CuentaOrigen  string `json:"cuentaOrigen"`
	CuentaDestino string `json:"cuentaDestino"`
	Monto         int64  `json:"monto"`
	Moneda        string `json:"moneda"`
	Detalle       string `json:"detalle"`
	IDReto        string `json:"idReto,omitempty"`
}

// SinpeCreditResponse carries the core transaction number assigned to the
// batched credit.
type SinpeCreditResponse struct {
	NumeroTransaccionCore string    `json:"numeroTransaccionCore"`
	FechaCreacion         time.Time `json:"fechaCreacion"`
	Monto                 int64     `json:"monto"`
	Comision              int64     `json:"comision"`
}

// SinpeDebitRequest submits a SINPE real-time debit ("débitos tiempo real"),
// pulling funds from an external account into the cooperative.
type SinpeDebitRequest struct {
	CuentaOrigen  string `json:"cuentaOrigen"`
	CuentaDestino string `json:"cuentaDestino"`
	Monto         int64  `json:"monto"`
	Moneda        string `json:"moneda"`
	Detalle       string `json:"detalle"`
	IDReto        string `json:"idReto,omitempty"`
}

// SinpeDebitResponse carries the SINPE debit reference.
type SinpeDebitResponse struct {
	ReferenciaSinpe string    `json:"referenciaSinpe"`
	FechaCreacion   time.Time `json:"fechaCreacion"`
	Monto           int64     `json:"monto"`
	Comision        int64     `json:"comision"`
}

// MovilTransferRequest submits a SINPE Móvil wallet transfer. Colones only;
// the destination is an 8-digit wallet phone number.
type MovilTransferRequest struct {
	CuentaOrigen   string `json:"cuentaOrigen"`
	NumeroMonedero string `json:"numeroMonedero"`
	Monto          int64  `json:"monto"`
	Detalle        string `json:"detalle"`
	IDReto         string `json:"idReto,omitempty"`
}

// MovilTransferResponse carries the wallet-network reference.
type MovilTransferResponse struct {
	ReferenciaMovil string    `json:"referenciaMovil"`
	FechaCreacion   time.Time `json:"fechaCreacion"`
	Monto           int64     `json:"monto"`
}
