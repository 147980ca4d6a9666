package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"market-advisor/pkg/types"
)

func point(symbol string, price float64, at time.Time) types.PricePoint {
	return types.PricePoint{Symbol: symbol, Price: price, Timestamp: at}
}

func TestAddPointAndCloses(t *testing.T) {
	s := NewMemoryStorage(100)
	now := time.Now()

	for i := 0; i < 5; i++ {
		s.AddPoint(point("btc", 100+float64(i), now.Add(time.Duration(i)*time.Second)))
	}

	assert.Equal(t, []float64{100, 101, 102, 103, 104}, s.Closes("btc", 10))
	assert.Equal(t, []float64{103, 104}, s.Closes("btc", 2))
	assert.Equal(t, 104.0, s.LatestPrice("btc"))
	assert.Equal(t, 5, s.Count("btc"))
}

func TestRollingTrim(t *testing.T) {
	s := NewMemoryStorage(3)
	now := time.Now()

	for i := 0; i < 10; i++ {
		s.AddPoint(point("eth", float64(i), now))
	}

	assert.Equal(t, 3, s.Count("eth"))
	assert.Equal(t, []float64{7, 8, 9}, s.Closes("eth", 10))
}

func TestUnknownSymbol(t *testing.T) {
	s := NewMemoryStorage(10)

	assert.Empty(t, s.Closes("nope", 10))
	assert.Equal(t, 0.0, s.LatestPrice("nope"))
	assert.Equal(t, 0, s.Count("nope"))
}

func TestActiveSymbols(t *testing.T) {
	s := NewMemoryStorage(10)
	now := time.Now()

	s.AddPoint(point("btc", 1, now))
	s.AddPoint(point("eth", 2, now))

	assert.ElementsMatch(t, []string{"btc", "eth"}, s.ActiveSymbols())
}

func TestCleanupDropsStaleSymbols(t *testing.T) {
	s := NewMemoryStorage(10)

	s.AddPoint(point("stale", 1, time.Now().Add(-48*time.Hour)))
	s.AddPoint(point("fresh", 2, time.Now()))

	s.Cleanup(24 * time.Hour)

	assert.ElementsMatch(t, []string{"fresh"}, s.ActiveSymbols())
}

func TestPointsReturnsCopy(t *testing.T) {
	s := NewMemoryStorage(10)
	s.AddPoint(point("btc", 100, time.Now()))

	points := s.Points("btc", 10)
	points[0].Price = 999

	assert.Equal(t, 100.0, s.LatestPrice("btc"))
}
