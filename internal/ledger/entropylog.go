package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rrpe/internal/canonical"
)

// Columns is the versioned entropy log header. Migration rewrites only the
// header line; existing data rows are preserved verbatim even when they carry
// fewer columns, so readers treat missing trailing fields as absent.
var Columns = []string{
	"date", "symbol", "prediction", "outcome", "symbol_bits", "commit",
	"context", "salt", "close_prev", "close_today", "provider", "tie",
	"p_commit", "p_reveal", "commit_bar_ts_et", "delta", "sign_bit", "mag_q",
	"symbol_bytes_hex",
}

// EntropyLog is the append-only CSV of revealed symbol records.
// It is never a source of truth for reveal verification; extraction is its
// only consumer.
type EntropyLog struct {
	path string
}

// NewEntropyLog creates a log handle at path.
func NewEntropyLog(path string) *EntropyLog {
	return &EntropyLog{path: path}
}

// Path returns the log file path.
func (l *EntropyLog) Path() string {
	return l.path
}

// EnsureHeader creates the log with the current header, or migrates an older
// header in place. Data rows are never rewritten.
func (l *EntropyLog) EnsureHeader() error {
	expected := strings.Join(Columns, ",")
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("entropy log: %w", err)
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("entropy log: %w", err)
		}
		data = nil
	}
	if len(data) == 0 {
		return os.WriteFile(l.path, []byte(expected+"\n"), 0o644)
	}
	lines := strings.SplitN(string(data), "\n", 2)
	if strings.TrimRight(lines[0], "\r") == expected {
		return nil
	}
	rest := ""
	if len(lines) == 2 {
		rest = lines[1]
	}
	return os.WriteFile(l.path, []byte(expected+"\n"+rest), 0o644)
}

// Append writes one row for a revealed symbol record.
func (l *EntropyLog) Append(date string, rec *SymbolRecord) error {
	if err := l.EnsureHeader(); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("entropy log: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(rowFor(date, rec)); err != nil {
		return fmt.Errorf("entropy log: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("entropy log: %w", err)
	}
	return nil
}

func rowFor(date string, rec *SymbolRecord) []string {
	return []string{
		date,
		rec.Symbol,
		intField(rec.Prediction),
		intField(rec.Outcome),
		rec.SymbolBits,
		rec.Commit,
		rec.Context,
		rec.Salt,
		priceField(rec.ClosePrev),
		priceField(rec.CloseToday),
		rec.Provider,
		boolField(rec.Tie),
		priceField(rec.PCommit),
		priceField(rec.PReveal),
		rec.CommitBarTSET,
		priceField(rec.Delta),
		intField(rec.SignBit),
		intField(rec.MagQ),
		rec.SymbolBytesHex,
	}
}

// Row maps column names to values for one log row. Columns missing from a
// short legacy row are simply absent from the map.
type Row map[string]string

// Rows reads every data row in log order.
func (l *EntropyLog) Rows() ([]Row, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("entropy log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // legacy rows may be short
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("entropy log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, fields := range records[1:] {
		row := Row{}
		for i, v := range fields {
			if i < len(header) {
				row[header[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolField(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func priceField(p *canonical.Price) string {
	if p == nil {
		return ""
	}
	return p.String()
}
