// Package dataset builds the (quote store, clock schedule) pair a backtest
// session is created against. Loaders in this package are thin adapters —
// narrow producers of a Dataset, with no retry policy, schema negotiation,
// or live connectivity of their own.
package dataset

import (
	"uistd/internal/clock"
	"uistd/internal/quotestore"
	"uistd/pkg/types"
)

// Dataset is a named, immutable (quote store, schedule, frequency) triple.
// The SessionRegistry keeps one Dataset per configured name and builds a
// fresh Clock cursor from its schedule for every new session, while sharing
// the Store itself by pointer.
type Dataset struct {
	Name      string
	Store     *quotestore.Store
	Frequency types.Frequency
}

// NewClock returns a fresh Clock cursor over this dataset's schedule. Safe
// to call concurrently; each call returns an independent cursor.
func (ds *Dataset) NewClock() (*clock.Clock, error) {
	return clock.New(ds.Store.Dates(), ds.Frequency)
}
