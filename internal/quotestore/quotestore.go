// Package quotestore holds the time-indexed quote data a backtest session
// replays against. A Store is immutable after Build and is meant to be
// shared by pointer across every session built from the same dataset —
// never deep-copied per session.
package quotestore

import (
	"sort"

	"uistd/pkg/types"
)

// Store is a date-indexed collection of quotes, one slice per date.
type Store struct {
	byDate map[int64][]types.Quote
	dates  []int64 // sorted ascending, computed once at Build
}

// GetQuote returns the quote for symbol at date, if any.
func (s *Store) GetQuote(date int64, symbol string) (types.Quote, bool) {
	quotes, ok := s.byDate[date]
	if !ok {
		return types.Quote{}, false
	}
	for _, q := range quotes {
		if q.Symbol == symbol {
			return q, true
		}
	}
	return types.Quote{}, false
}

// GetQuotes returns every quote recorded at date.
func (s *Store) GetQuotes(date int64) ([]types.Quote, bool) {
	quotes, ok := s.byDate[date]
	return quotes, ok
}

// HasDate reports whether any quote is indexed at date.
func (s *Store) HasDate(date int64) bool {
	_, ok := s.byDate[date]
	return ok
}

// FirstDate returns the earliest indexed date. ok is false for an empty
// store.
func (s *Store) FirstDate() (int64, bool) {
	if len(s.dates) == 0 {
		return 0, false
	}
	return s.dates[0], true
}

// NextDate returns the smallest indexed date strictly after date, if any.
func (s *Store) NextDate(date int64) (int64, bool) {
	i := sort.Search(len(s.dates), func(i int) bool { return s.dates[i] > date })
	if i == len(s.dates) {
		return 0, false
	}
	return s.dates[i], true
}

// AllQuotes flattens the store back into the tuple list it was built from,
// in no particular cross-date order. Used to serialize a built store into a
// cache entry.
func (s *Store) AllQuotes() []types.Quote {
	out := make([]types.Quote, 0)
	for _, quotes := range s.byDate {
		out = append(out, quotes...)
	}
	return out
}

// Dates returns the sorted sequence of all indexed dates. This is the
// schedule a Clock built over this store should use.
func (s *Store) Dates() []int64 {
	out := make([]int64, len(s.dates))
	copy(out, s.dates)
	return out
}

// Builder accumulates raw quote tuples before a Store is finalized.
type Builder struct {
	// last[date][symbol] = quote; last insertion wins on duplicate keys.
	last map[int64]map[string]types.Quote
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{last: make(map[int64]map[string]types.Quote)}
}

// Add records a single quote tuple. If a quote already exists for the same
// (date, symbol) pair, this call overwrites it — last insertion wins.
func (b *Builder) Add(q types.Quote) *Builder {
	bucket, ok := b.last[q.Date]
	if !ok {
		bucket = make(map[string]types.Quote)
		b.last[q.Date] = bucket
	}
	bucket[q.Symbol] = q
	return b
}

// Build finalizes the accumulated quotes into an immutable Store and
// derives its sorted date schedule.
func (b *Builder) Build() *Store {
	byDate := make(map[int64][]types.Quote, len(b.last))
	dates := make([]int64, 0, len(b.last))
	for date, bucket := range b.last {
		quotes := make([]types.Quote, 0, len(bucket))
		for _, q := range bucket {
			quotes = append(quotes, q)
		}
		sort.Slice(quotes, func(i, j int) bool { return quotes[i].Symbol < quotes[j].Symbol })
		byDate[date] = quotes
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return &Store{byDate: byDate, dates: dates}
}
