// Package ledger persists the protocol's durable state: one JSON document per
// trading date (the sole mutable root for that date) and one append-only CSV
// entropy log. Documents are mutated in place by commit, reveal, and
// extraction; nothing is ever deleted.
package ledger

import (
	"rrpe/internal/canonical"
)

// State is the per-symbol protocol state machine.
// Transitions are one-way: Uncommitted -> Committed -> Revealed.
type State int

const (
	StateUncommitted State = iota
	StateCommitted
	StateRevealed
)

func (s State) String() string {
	switch s {
	case StateCommitted:
		return "committed"
	case StateRevealed:
		return "revealed"
	default:
		return "uncommitted"
	}
}

// CommitInputs is the exact payload needed to reproduce a commitment digest.
// Records written before this field existed lack it; the reconciliation
// resolver recovers it lazily and memoizes it back into the record.
type CommitInputs struct {
	Symbol             string          `json:"symbol"`
	Prediction         int             `json:"prediction"`
	PCommit            canonical.Price `json:"p_commit"`
	CommitBarTSET      string          `json:"commit_bar_ts_et"`
	TimestampCommitUTC string          `json:"timestamp_commit_utc"`
	Context            string          `json:"context"`
}

// SymbolRecord is one symbol's entry in a per-day document.
// commit and revealed_at_utc are each set exactly once.
type SymbolRecord struct {
	Symbol         string        `json:"symbol"`
	Commit         string        `json:"commit,omitempty"`
	CommitInputs   *CommitInputs `json:"commit_inputs,omitempty"`
	CommitBarTSET  string        `json:"commit_bar_ts_et,omitempty"`
	CommittedAtUTC string        `json:"committed_at_utc,omitempty"`

	Prediction     *int             `json:"prediction,omitempty"`
	Salt           string           `json:"salt,omitempty"`
	Outcome        *int             `json:"outcome,omitempty"`
	SymbolBits     string           `json:"symbol_bits,omitempty"`
	ClosePrev      *canonical.Price `json:"close_prev,omitempty"`
	CloseToday     *canonical.Price `json:"close_today,omitempty"`
	Provider       string           `json:"provider,omitempty"`
	Tie            *bool            `json:"tie,omitempty"`
	Context        string           `json:"context,omitempty"`
	PCommit        *canonical.Price `json:"p_commit,omitempty"`
	PReveal        *canonical.Price `json:"p_reveal,omitempty"`
	Delta          *canonical.Price `json:"delta,omitempty"`
	SignBit        *int             `json:"sign_bit,omitempty"`
	MagQ           *int             `json:"mag_q,omitempty"`
	SymbolBytesHex string           `json:"symbol_bytes_hex,omitempty"`
	RevealedAtUTC  string           `json:"revealed_at_utc,omitempty"`
}

// State derives the record's protocol state from its immutable markers.
func (r *SymbolRecord) State() State {
	switch {
	case r.RevealedAtUTC != "":
		return StateRevealed
	case r.Commit != "":
		return StateCommitted
	default:
		return StateUncommitted
	}
}

// Meta carries document provenance.
type Meta struct {
	GeneratedAtUTC string `json:"generated_at_utc"`
	CodeCommit     string `json:"code_commit"`
}

// Extraction is the entropy-extraction result attached to a document.
// Recomputing always overwrites the previous extraction for the date.
type Extraction struct {
	SeedSource     string `json:"seed_source"`
	SeedValue      string `json:"seed_value"`
	Window         int    `json:"window"`
	OutputBits     int    `json:"output_bits"`
	OutputHex      string `json:"output_hex"`
	GeneratedAtUTC string `json:"generated_at_utc"`
}

// Document is the per-day JSON document: {date, symbols, meta, extractor?}.
type Document struct {
	Date      string          `json:"date"`
	Symbols   []*SymbolRecord `json:"symbols"`
	Meta      Meta            `json:"meta"`
	Extractor *Extraction     `json:"extractor,omitempty"`
}

// NewDocument creates an empty document for a trading date.
func NewDocument(date, generatedAtUTC, codeCommit string) *Document {
	return &Document{
		Date:    date,
		Symbols: []*SymbolRecord{},
		Meta: Meta{
			GeneratedAtUTC: generatedAtUTC,
			CodeCommit:     codeCommit,
		},
	}
}

// Symbol returns the record for a symbol, or nil if absent.
func (d *Document) Symbol(symbol string) *SymbolRecord {
	for _, rec := range d.Symbols {
		if rec.Symbol == symbol {
			return rec
		}
	}
	return nil
}

// EnsureSymbol returns the record for a symbol, appending a fresh one if
// needed. Symbols are unique within a document.
func (d *Document) EnsureSymbol(symbol string) *SymbolRecord {
	if rec := d.Symbol(symbol); rec != nil {
		return rec
	}
	rec := &SymbolRecord{Symbol: symbol}
	d.Symbols = append(d.Symbols, rec)
	return rec
}

// AnyRevealed reports whether at least one symbol has been revealed.
func (d *Document) AnyRevealed() bool {
	for _, rec := range d.Symbols {
		if rec.State() == StateRevealed {
			return true
		}
	}
	return false
}
