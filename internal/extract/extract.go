// Package extract pools revealed per-symbol outcome bytes with a public
// beacon value into a fixed-length hexadecimal output.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"rrpe/internal/beacon"
	"rrpe/internal/ledger"
)

// Extractor derives randomness from the entropy log tail and a beacon seed.
type Extractor struct {
	Daily  *ledger.Daily
	Log    *ledger.EntropyLog
	Beacon *beacon.Client
	Logger *slog.Logger
}

// Run extracts randomness for a date. No-op (false, nil) when the per-day
// document does not exist or no symbol has been revealed yet. The extraction
// result always overwrites any prior extraction for the date.
//
// The construction is a single SHA-256 application: requesting more than 256
// output bits yields the full 64-hex digest and no additional independent
// bits. That truncation behavior is preserved deliberately.
func (x *Extractor) Run(ctx context.Context, date string, window, outputBits int) (bool, error) {
	logger := x.Logger
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := x.Daily.Load(date)
	if err != nil {
		return false, err
	}
	if doc == nil {
		logger.Info("no daily document, nothing to extract", "date", date)
		return false, nil
	}
	if !doc.AnyRevealed() {
		logger.Info("no revealed symbols, nothing to extract", "date", date)
		return false, nil
	}
	if outputBits > 256 {
		logger.Warn("output bits exceed one SHA-256 digest; output is truncated, not extended", "output_bits", outputBits)
	}

	source, seed := x.Beacon.Fetch(ctx)

	pooled, err := x.collect(window)
	if err != nil {
		return false, err
	}

	outputHex := Derive(pooled, seed, outputBits)

	changed := false
	err = x.Daily.WithLock(date, func() error {
		// Reload under the lock; the revealed state was only a gate.
		doc, err := x.Daily.Load(date)
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		doc.Extractor = &ledger.Extraction{
			SeedSource:     source,
			SeedValue:      seed,
			Window:         window,
			OutputBits:     outputBits,
			OutputHex:      outputHex,
			GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		}
		changed = true
		return x.Daily.Save(date, doc)
	})
	if err != nil {
		return false, err
	}
	logger.Info("extracted randomness", "date", date, "window", window, "output_bits", outputBits, "output_hex", outputHex)
	return changed, nil
}

// collect gathers the trailing window of symbol_bytes_hex entries from the
// entropy log as raw bytes, falling back to concatenated legacy symbol_bits
// characters when no byte-form data exists.
func (x *Extractor) collect(window int) ([]byte, error) {
	rows, err := x.Log.Rows()
	if err != nil {
		return nil, err
	}

	var hexes []string
	for _, row := range rows {
		if h := row["symbol_bytes_hex"]; h != "" {
			hexes = append(hexes, h)
		}
	}
	if len(hexes) > 0 {
		hexes = tail(hexes, window)
		var out []byte
		for _, h := range hexes {
			b, err := hex.DecodeString(h)
			if err != nil {
				return nil, fmt.Errorf("entropy log: bad symbol_bytes_hex %q: %w", h, err)
			}
			out = append(out, b...)
		}
		return out, nil
	}

	var bits []string
	for _, row := range rows {
		if b := row["symbol_bits"]; b != "" {
			bits = append(bits, b)
		}
	}
	if len(bits) > 0 {
		bits = tail(bits, window)
		var out []byte
		for _, b := range bits {
			out = append(out, b...)
		}
		return out, nil
	}

	return nil, fmt.Errorf("entropy log has no symbol bytes or bits to extract from (window=%d)", window)
}

// Derive computes the output: SHA256(seedBytes || pooled) truncated to
// outputBits/4 hex characters. The seed is interpreted as raw bytes when it
// is valid even-length hexadecimal, else as its literal text bytes.
func Derive(pooled []byte, seed string, outputBits int) string {
	payload := append(seedBytes(seed), pooled...)
	digest := sha256.Sum256(payload)
	out := hex.EncodeToString(digest[:])
	hexLen := outputBits / 4
	if hexLen > len(out) {
		hexLen = len(out)
	}
	return out[:hexLen]
}

func seedBytes(seed string) []byte {
	if len(seed)%2 == 0 {
		if b, err := hex.DecodeString(seed); err == nil {
			return b
		}
	}
	return []byte(seed)
}

func tail(s []string, n int) []string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
