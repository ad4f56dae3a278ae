package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrpe/internal/canonical"
	"rrpe/internal/config"
	"rrpe/internal/ledger"
)

// testBounds keeps resolver tests fast while exercising every search stage.
func testBounds() config.ResolverBounds {
	return config.ResolverBounds{
		ProbeOffset:   canonical.Price(20000),  // 2.0000
		CoarseStep:    canonical.Price(100),    // 0.0100
		CoarseCeiling: canonical.Price(50000),  // 5.0000
		FineStep:      canonical.Price(1),      // 0.0001
		FineCeiling:   canonical.Price(100000), // 10.0000
	}
}

func legacyBase() ledger.CommitInputs {
	return ledger.CommitInputs{
		Symbol:             "SPY",
		CommitBarTSET:      "2025-03-10T15:55:00-04:00",
		TimestampCommitUTC: "2025-03-10T19:55:03Z",
		Context:            "2025-03-10|SPY|NYSE|close",
	}
}

func commitFor(t *testing.T, prediction int, price canonical.Price, salt string) string {
	t.Helper()
	in := legacyBase()
	in.Prediction = prediction
	in.PCommit = price
	digest, err := Digest(in, salt)
	require.NoError(t, err)
	return digest
}

func TestResolveCachedHint(t *testing.T) {
	salt := Salt([]byte("test-secret"), legacyBase().Context)
	truth := legacyBase()
	truth.Prediction = 1
	truth.PCommit = canonical.Price(1234567) // 123.4567, far beyond the scan ceilings

	commit := commitFor(t, truth.Prediction, truth.PCommit, salt)

	resolved, err := Resolve(commit, legacyBase(), salt, Hints{Cached: &truth}, testBounds())
	require.NoError(t, err)
	assert.Equal(t, truth.Prediction, resolved.Prediction)
	assert.Equal(t, truth.PCommit, resolved.PCommit)
}

func TestResolveProbeAroundApprox(t *testing.T) {
	salt := Salt([]byte("test-secret"), legacyBase().Context)
	actual := canonical.Price(1234567) // 123.4567
	commit := commitFor(t, 1, actual, salt)

	approx := canonical.Price(1235000) // 123.5000, within the 2.0000 probe
	resolved, err := Resolve(commit, legacyBase(), salt, Hints{
		ApproxPrice:     &approx,
		FreshPrediction: 1,
	}, testBounds())
	require.NoError(t, err)
	assert.Equal(t, 1, resolved.Prediction)
	assert.Equal(t, actual, resolved.PCommit)
}

func TestResolveProbeBelowApprox(t *testing.T) {
	salt := Salt([]byte("test-secret"), legacyBase().Context)
	actual := canonical.Price(1233000) // 123.3000, below the approximation
	commit := commitFor(t, 0, actual, salt)

	approx := canonical.Price(1234000)
	resolved, err := Resolve(commit, legacyBase(), salt, Hints{
		ApproxPrice:     &approx,
		FreshPrediction: 0,
	}, testBounds())
	require.NoError(t, err)
	assert.Equal(t, 0, resolved.Prediction)
	assert.Equal(t, actual, resolved.PCommit)
}

func TestResolveCoarseScan(t *testing.T) {
	salt := Salt([]byte("test-secret"), legacyBase().Context)
	actual := canonical.Price(42300) // 4.2300, on the coarse grid, below the ceiling
	commit := commitFor(t, 1, actual, salt)

	// No hints at all: the coarse scan must find it.
	resolved, err := Resolve(commit, legacyBase(), salt, Hints{FreshPrediction: 1}, testBounds())
	require.NoError(t, err)
	assert.Equal(t, actual, resolved.PCommit)
}

func TestResolveFineScan(t *testing.T) {
	salt := Salt([]byte("test-secret"), legacyBase().Context)
	actual := canonical.Price(70042) // 7.0042, off the coarse grid and past its ceiling
	commit := commitFor(t, 0, actual, salt)

	resolved, err := Resolve(commit, legacyBase(), salt, Hints{FreshPrediction: 0}, testBounds())
	require.NoError(t, err)
	assert.Equal(t, 0, resolved.Prediction)
	assert.Equal(t, actual, resolved.PCommit)
}

func TestResolveWrongPredictionHintStillFinds(t *testing.T) {
	salt := Salt([]byte("test-secret"), legacyBase().Context)
	actual := canonical.Price(42300)
	commit := commitFor(t, 0, actual, salt)

	// Fresh hint says 1; the search must fall through to prediction 0.
	resolved, err := Resolve(commit, legacyBase(), salt, Hints{FreshPrediction: 1}, testBounds())
	require.NoError(t, err)
	assert.Equal(t, 0, resolved.Prediction)
}

func TestResolveExhaustedIsUnreconcilable(t *testing.T) {
	salt := Salt([]byte("test-secret"), legacyBase().Context)
	// Committed price beyond every ceiling and no usable hints.
	commit := commitFor(t, 1, canonical.Price(9_999_0000), salt)

	_, err := Resolve(commit, legacyBase(), salt, Hints{FreshPrediction: 1}, config.ResolverBounds{
		ProbeOffset:   canonical.Price(100),
		CoarseStep:    canonical.Price(100),
		CoarseCeiling: canonical.Price(10000),
		FineStep:      canonical.Price(1),
		FineCeiling:   canonical.Price(1000),
	})
	require.Error(t, err)
	assert.True(t, IsUnreconcilable(err))
}

func TestResolveDeterministic(t *testing.T) {
	salt := Salt([]byte("test-secret"), legacyBase().Context)
	actual := canonical.Price(42300)
	commit := commitFor(t, 1, actual, salt)

	first, err := Resolve(commit, legacyBase(), salt, Hints{FreshPrediction: 1}, testBounds())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Resolve(commit, legacyBase(), salt, Hints{FreshPrediction: 1}, testBounds())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCandidatePredictions(t *testing.T) {
	cached := legacyBase()
	cached.Prediction = 0

	tests := []struct {
		name  string
		hints Hints
		want  []int
	}{
		{"no hints", Hints{FreshPrediction: 1}, []int{1, 0}},
		{"fresh zero", Hints{FreshPrediction: 0}, []int{0, 1}},
		{"cached first", Hints{Cached: &cached, FreshPrediction: 1}, []int{0, 1}},
		{"out of range fresh ignored", Hints{FreshPrediction: 7}, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, candidatePredictions(tt.hints))
		})
	}
}
