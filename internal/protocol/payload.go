// Package protocol implements the commit/reveal core: canonical payload
// construction, commitment hashing, window-gated state transitions,
// reveal-time verification, and the bounded reconciliation search.
package protocol

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"rrpe/internal/canonical"
	"rrpe/internal/config"
	"rrpe/internal/ledger"
)

// saltHexLen is the truncated length of the derived salt in hex characters.
const saltHexLen = 32

// Context builds the salt/commitment context string for (date, symbol):
// "{date}|{symbol}|{exchange}|close".
func Context(date, symbol string, cfg *config.Config) string {
	return fmt.Sprintf("%s|%s|%s|close", date, symbol, cfg.ExchangeFor(symbol))
}

// Salt derives the secret-keyed, context-specific salt:
// hex(HMAC-SHA256(secret, context)) truncated to 32 characters.
//
// The salt is embedded in the payload at commit time and re-derived, never
// stored separately; changing the secret breaks re-derivability of earlier
// commitments but not their validity.
func Salt(secret []byte, context string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(context))
	return hex.EncodeToString(mac.Sum(nil))[:saltHexLen]
}

// Digest computes the commitment: SHA-256 over the canonical encoding of the
// commit inputs plus the salt. The canonical codec guarantees the preimage is
// a strict function of field values, so the round-trip
// Digest(inputs, Salt(secret, inputs.Context)) == commit holds by construction.
func Digest(inputs ledger.CommitInputs, salt string) (string, error) {
	payload := canonical.Object{
		"symbol":               canonical.String(inputs.Symbol),
		"prediction":           canonical.Int(inputs.Prediction),
		"p_commit":             inputs.PCommit,
		"commit_bar_ts_et":     canonical.String(inputs.CommitBarTSET),
		"timestamp_commit_utc": canonical.String(inputs.TimestampCommitUTC),
		"salt":                 canonical.String(salt),
		"context":              canonical.String(inputs.Context),
	}
	data, err := canonical.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal commit payload: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
