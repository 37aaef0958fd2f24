// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package sec

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// TokenFingerprint returns a short, stable digest of a bearer credential.
//
// The journal and logs correlate entries belonging to one session without
// ever persisting the raw token. The fingerprint is one-way (blake2b) and
// truncated: it identifies a session in forensics but cannot be replayed.
func TokenFingerprint(rawToken string) string {
	digest := blake2b.Sum256([]byte(rawToken))
	return hex.EncodeToString(digest[:8])
}
