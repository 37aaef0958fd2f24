// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

/*
Package constants provides centralized, immutable values for the mobile channel.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Transfers: Format lengths and currency rules enforced by the engine.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "coopemovil-api"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID = "X-Request-ID"
	HeaderOrigin     = "Origin"
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Transfers

const (
	// LocalCurrency is the ISO 4217 code of the national currency. The
	// SINPE Móvil rail only moves funds denominated in colones.
	LocalCurrency = "CRC"

	// IBANLength is the length of a Costa Rican IBAN after removing spaces
	// ("CR" country code + check digits + 18-digit BBAN).
	IBANLength = 24

	// WalletNumberLength is the length of a SINPE Móvil wallet (phone) number.
	WalletNumberLength = 8

	// DetailMinLength is the minimum description length required by the core
	// for the account rails. SINPE Móvil only requires a non-empty detail.
	DetailMinLength = 15
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixSessionToken stores the persisted bearer credential for a
	// device installation. One key per installation.
	RedisPrefixSessionToken = "session:token:"

	// RedisPrefixChallengeOps caches the server-provided list of operation
	// types that require a second-factor challenge.
	RedisPrefixChallengeOps = "session:challenge_ops:"
)

// # Eventing

const (
	// EventExchange is the AMQP topic exchange transfer outcomes are published to.
	EventExchange = "coopemovil.events"

	// EventTransferSettled and EventTransferFailed are the routing keys used
	// for terminal transfer outcomes.
	EventTransferSettled = "transfer.settled"
	EventTransferFailed  = "transfer.failed"
)
