package predict

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrpe/internal/canonical"
	"rrpe/internal/testutil"
)

func price(t *testing.T, s string) canonical.Price {
	t.Helper()
	p, err := canonical.ParsePrice(s)
	require.NoError(t, err)
	return p
}

func TestLastReturnUp(t *testing.T) {
	feed := testutil.NewMemoryFeed()
	feed.TradingDays = []string{"2025-03-06", "2025-03-07", "2025-03-10"}
	feed.AddClose("SPY", "2025-03-06", price(t, "99.00"))
	feed.AddClose("SPY", "2025-03-07", price(t, "100.00"))

	p := &LastReturn{Feed: feed, Calendar: feed}
	bit, err := p.Predict(context.Background(), "SPY", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, bit)
}

func TestLastReturnDown(t *testing.T) {
	feed := testutil.NewMemoryFeed()
	feed.TradingDays = []string{"2025-03-06", "2025-03-07", "2025-03-10"}
	feed.AddClose("SPY", "2025-03-06", price(t, "100.00"))
	feed.AddClose("SPY", "2025-03-07", price(t, "99.00"))

	p := &LastReturn{Feed: feed, Calendar: feed}
	bit, err := p.Predict(context.Background(), "SPY", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 0, bit)
}

func TestLastReturnFlatIsUp(t *testing.T) {
	feed := testutil.NewMemoryFeed()
	feed.TradingDays = []string{"2025-03-06", "2025-03-07", "2025-03-10"}
	feed.AddClose("SPY", "2025-03-06", price(t, "100.00"))
	feed.AddClose("SPY", "2025-03-07", price(t, "100.00"))

	p := &LastReturn{Feed: feed, Calendar: feed}
	bit, err := p.Predict(context.Background(), "SPY", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, bit)
}

func TestLastReturnMissingDataDefaultsUp(t *testing.T) {
	feed := testutil.NewMemoryFeed()
	feed.TradingDays = []string{"2025-03-06", "2025-03-07", "2025-03-10"}

	p := &LastReturn{Feed: feed, Calendar: feed}
	bit, err := p.Predict(context.Background(), "SPY", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, bit)
}

func TestLastReturnDeterministic(t *testing.T) {
	feed := testutil.NewMemoryFeed()
	feed.TradingDays = []string{"2025-03-06", "2025-03-07", "2025-03-10"}
	feed.AddClose("SPY", "2025-03-06", price(t, "100.00"))
	feed.AddClose("SPY", "2025-03-07", price(t, "99.00"))

	p := &LastReturn{Feed: feed, Calendar: feed}
	first, err := p.Predict(context.Background(), "SPY", "2025-03-10")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := p.Predict(context.Background(), "SPY", "2025-03-10")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
