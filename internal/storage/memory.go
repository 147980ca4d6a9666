package storage

import (
	"sync"
	"time"

	"market-advisor/pkg/types"
)

// symbolHistory is the rolling quote window for one symbol
type symbolHistory struct {
	points     []types.PricePoint
	lastUpdate time.Time
}

// MemoryStorage keeps a rolling in-memory price history per symbol.
// The collector appends live quotes; the API and analyzer read closes
// from it. Histories are trimmed to maxQuotes on every append.
type MemoryStorage struct {
	mu        sync.RWMutex
	symbols   map[string]*symbolHistory
	maxQuotes int
}

func NewMemoryStorage(maxQuotes int) *MemoryStorage {
	return &MemoryStorage{
		symbols:   make(map[string]*symbolHistory),
		maxQuotes: maxQuotes,
	}
}

// AddPoint appends a live quote for a symbol
func (s *MemoryStorage) AddPoint(point types.PricePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.symbols[point.Symbol]
	if history == nil {
		history = &symbolHistory{}
		s.symbols[point.Symbol] = history
	}

	history.points = append(history.points, point)
	history.lastUpdate = point.Timestamp

	if len(history.points) > s.maxQuotes {
		history.points = history.points[len(history.points)-s.maxQuotes:]
	}
}

// Points returns up to the last n points for a symbol
func (s *MemoryStorage) Points(symbol string, n int) []types.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.symbols[symbol]
	if !exists || len(history.points) == 0 {
		return nil
	}

	points := history.points
	if len(points) > n {
		points = points[len(points)-n:]
	}

	out := make([]types.PricePoint, len(points))
	copy(out, points)
	return out
}

// Closes returns up to the last n close prices for a symbol
func (s *MemoryStorage) Closes(symbol string, n int) []float64 {
	points := s.Points(symbol, n)
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Price
	}
	return closes
}

// LatestPrice returns the most recent price, 0 when the symbol is unknown
func (s *MemoryStorage) LatestPrice(symbol string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if history, exists := s.symbols[symbol]; exists && len(history.points) > 0 {
		return history.points[len(history.points)-1].Price
	}
	return 0
}

// ActiveSymbols lists symbols with at least one stored quote
func (s *MemoryStorage) ActiveSymbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.symbols))
	for symbol, history := range s.symbols {
		if len(history.points) > 0 {
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}

// Count returns the number of stored quotes for a symbol
func (s *MemoryStorage) Count(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if history, exists := s.symbols[symbol]; exists {
		return len(history.points)
	}
	return 0
}

// Cleanup drops symbols that have not updated within keep
func (s *MemoryStorage) Cleanup(keep time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-keep)
	for symbol, history := range s.symbols {
		if history.lastUpdate.Before(cutoff) {
			delete(s.symbols, symbol)
		}
	}
}
