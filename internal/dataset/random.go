package dataset

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"uistd/internal/quotestore"
	"uistd/pkg/types"
)

// symbols synthesized by Random, matching the two-symbol universe the
// original implementation's generator produced for tests and demos.
var randomSymbols = []string{"ABC", "BCD"}

// Random builds a synthetic dataset of length ticks over two symbols, with
// each bid drawn uniformly from [90, 100). Each tick's ask is bid plus a
// fixed 0.5 spread so every quote satisfies ask >= bid by construction; both
// are rounded to two decimal places.
func Random(name string, length int, frequency types.Frequency, seed int64) *Dataset {
	r := rand.New(rand.NewSource(seed))
	builder := quotestore.NewBuilder()

	for date := int64(100); date < int64(100+length); date++ {
		for _, symbol := range randomSymbols {
			bid := 90 + r.Float64()*10
			ask := bid + 0.5
			builder.Add(types.Quote{
				Symbol: symbol,
				Bid:    decimal.NewFromFloat(bid).Round(2),
				Ask:    decimal.NewFromFloat(ask).Round(2),
				Date:   date,
			})
		}
	}

	return &Dataset{Name: name, Store: builder.Build(), Frequency: frequency}
}
