package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrpe/internal/canonical"
)

func revealedRecord() *SymbolRecord {
	prediction, outcome, signBit, magQ := 1, 1, 1, 87
	tie := false
	closePrev := canonical.Price(1000000)
	closeToday := canonical.Price(1010000)
	pCommit := canonical.Price(1001234)
	pReveal := closeToday
	delta := canonical.Price(8766)
	return &SymbolRecord{
		Symbol:         "SPY",
		Commit:         "deadbeef",
		CommitBarTSET:  "2025-03-10T15:55:00-04:00",
		Prediction:     &prediction,
		Salt:           "0123456789abcdef0123456789abcdef",
		Outcome:        &outcome,
		SymbolBits:     "11",
		ClosePrev:      &closePrev,
		CloseToday:     &closeToday,
		Provider:       "chart",
		Tie:            &tie,
		Context:        "2025-03-10|SPY|NYSE|close",
		PCommit:        &pCommit,
		PReveal:        &pReveal,
		Delta:          &delta,
		SignBit:        &signBit,
		MagQ:           &magQ,
		SymbolBytesHex: "01010157",
		RevealedAtUTC:  "2025-03-10T20:05:00Z",
	}
}

func TestEnsureHeaderCreates(t *testing.T) {
	log := NewEntropyLog(filepath.Join(t.TempDir(), "outputs", "entropy_log.csv"))
	require.NoError(t, log.EnsureHeader())

	data, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Columns, ",")+"\n", string(data))

	// Idempotent.
	require.NoError(t, log.EnsureHeader())
	again, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestEnsureHeaderMigratesInPlace(t *testing.T) {
	log := NewEntropyLog(filepath.Join(t.TempDir(), "entropy_log.csv"))

	// A legacy file with a shorter header and short rows.
	legacy := "date,symbol,prediction,outcome,symbol_bits,commit\n" +
		"2025-03-07,SPY,1,0,10,cafebabe\n" +
		"2025-03-07,AAPL,0,0,00,deadbeef\n"
	require.NoError(t, os.WriteFile(log.Path(), []byte(legacy), 0o644))

	require.NoError(t, log.EnsureHeader())

	data, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Equal(t, strings.Join(Columns, ","), lines[0])
	// Data rows are preserved verbatim.
	assert.Equal(t, "2025-03-07,SPY,1,0,10,cafebabe", lines[1])
	assert.Equal(t, "2025-03-07,AAPL,0,0,00,deadbeef", lines[2])
}

func TestAppendAndRows(t *testing.T) {
	log := NewEntropyLog(filepath.Join(t.TempDir(), "entropy_log.csv"))
	require.NoError(t, log.Append("2025-03-10", revealedRecord()))

	rows, err := log.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "2025-03-10", row["date"])
	assert.Equal(t, "SPY", row["symbol"])
	assert.Equal(t, "1", row["prediction"])
	assert.Equal(t, "1", row["outcome"])
	assert.Equal(t, "11", row["symbol_bits"])
	assert.Equal(t, "100.0000", row["close_prev"])
	assert.Equal(t, "101.0000", row["close_today"])
	assert.Equal(t, "false", row["tie"])
	assert.Equal(t, "100.1234", row["p_commit"])
	assert.Equal(t, "0.8766", row["delta"])
	assert.Equal(t, "1", row["sign_bit"])
	assert.Equal(t, "87", row["mag_q"])
	assert.Equal(t, "01010157", row["symbol_bytes_hex"])
}

func TestRowsShortLegacyRow(t *testing.T) {
	log := NewEntropyLog(filepath.Join(t.TempDir(), "entropy_log.csv"))
	content := strings.Join(Columns, ",") + "\n" +
		"2025-03-07,SPY,1,0,10,cafebabe\n"
	require.NoError(t, os.WriteFile(log.Path(), []byte(content), 0o644))

	rows, err := log.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "10", row["symbol_bits"])
	_, hasBytes := row["symbol_bytes_hex"]
	assert.False(t, hasBytes)
	_, hasMagQ := row["mag_q"]
	assert.False(t, hasMagQ)
}

func TestRowsAbsentFile(t *testing.T) {
	log := NewEntropyLog(filepath.Join(t.TempDir(), "entropy_log.csv"))
	rows, err := log.Rows()
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestAppendPreservesEarlierRows(t *testing.T) {
	log := NewEntropyLog(filepath.Join(t.TempDir(), "entropy_log.csv"))
	require.NoError(t, log.Append("2025-03-10", revealedRecord()))

	rec := revealedRecord()
	rec.Symbol = "AAPL"
	require.NoError(t, log.Append("2025-03-11", rec))

	rows, err := log.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SPY", rows[0]["symbol"])
	assert.Equal(t, "AAPL", rows[1]["symbol"])
}
