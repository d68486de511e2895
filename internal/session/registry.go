// Package session implements the multi-tenant backtest registry: the
// component that maps a session ID to an isolated (clock, quote store,
// tick engine) triple and serializes all access to them.
package session

import (
	"sync"

	"uistd/internal/dataset"
	"uistd/internal/tickengine"
	"uistd/pkg/types"
)

// ID is a backtest session handle, assigned monotonically and never reused.
type ID uint64

// session bundles one backtest's live state with the dataset it replays.
type session struct {
	engine      *tickengine.Engine
	datasetName string
}

// Registry owns every live backtest session plus the catalogue of datasets
// sessions may be created against. A single mutex guards the whole
// registry for the full duration of any operation — ticking a session
// mutates its clock, book, buffer, and trade log together, and exposing a
// half-ticked session to a concurrent reader would break every invariant
// the engine promises.
type Registry struct {
	mu       sync.Mutex
	sessions map[ID]*session
	datasets map[string]*dataset.Dataset
	lastID   ID
}

// NewRegistry builds a registry over the given named datasets. The map is
// copied by reference; datasets are never mutated after registration.
func NewRegistry(datasets map[string]*dataset.Dataset) *Registry {
	return &Registry{
		sessions: make(map[ID]*session),
		datasets: datasets,
	}
}

// Init creates a new backtest session against datasetName and returns its
// ID. Returns ErrUnknownDataset if no dataset by that name was registered.
func (r *Registry) Init(datasetName string) (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ds, ok := r.datasets[datasetName]
	if !ok {
		return 0, types.ErrUnknownDataset
	}

	c, err := ds.NewClock()
	if err != nil {
		return 0, err
	}

	r.lastID++
	id := r.lastID
	r.sessions[id] = &session{
		engine:      tickengine.New(c, ds.Store),
		datasetName: datasetName,
	}
	return id, nil
}

// Info returns the dataset name a session was created against.
func (r *Registry) Info(id ID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return "", types.ErrUnknownBacktest
	}
	return s.datasetName, nil
}

// FetchQuotes returns the quotes visible at a session's current timestamp.
func (r *Registry) FetchQuotes(id ID) ([]types.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, types.ErrUnknownBacktest
	}
	return s.engine.FetchQuotes(), nil
}

// Tick advances a session's clock and returns the tick result.
func (r *Registry) Tick(id ID) (tickengine.TickResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return tickengine.TickResult{}, types.ErrUnknownBacktest
	}
	return s.engine.Tick(), nil
}

// InsertOrder buffers order against a session for the next tick.
func (r *Registry) InsertOrder(id ID, order types.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return types.ErrUnknownBacktest
	}
	s.engine.InsertOrder(order)
	return nil
}

// DeleteOrder forwards a delete-by-ID request to a session's book.
func (r *Registry) DeleteOrder(id ID, orderID types.OrderID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return types.ErrUnknownBacktest
	}
	s.engine.DeleteOrder(orderID)
	return nil
}

// Now returns a session's current logical timestamp, for the protocol
// layer's init response, which reports it as the session's start.
func (r *Registry) Now(id ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return 0, types.ErrUnknownBacktest
	}
	return s.engine.Now(), nil
}

// Frequency returns a session's clock frequency.
func (r *Registry) Frequency(id ID) (types.Frequency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return 0, types.ErrUnknownBacktest
	}
	return s.engine.Frequency(), nil
}

// SessionCount returns the number of live sessions, for metrics reporting.
func (r *Registry) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
