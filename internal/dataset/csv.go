package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"uistd/internal/quotestore"
	"uistd/pkg/types"
)

// LoadCSV reads a "symbol,bid,ask,date" CSV file (header row required) and
// builds a Dataset with the given name and frequency. This is the narrow
// adapter boundary for historical snapshot ingestion — it has no retry
// policy, no remote fetch, and no schema negotiation.
func LoadCSV(name, path string, frequency types.Frequency) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 4

	if _, err := reader.Read(); err != nil { // header
		return nil, fmt.Errorf("dataset: read header %s: %w", path, err)
	}

	builder := quotestore.NewBuilder()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read row %s: %w", path, err)
		}

		bid, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("dataset: bad bid %q: %w", record[1], err)
		}
		ask, err := decimal.NewFromString(record[2])
		if err != nil {
			return nil, fmt.Errorf("dataset: bad ask %q: %w", record[2], err)
		}
		date, err := strconv.ParseInt(record[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: bad date %q: %w", record[3], err)
		}

		builder.Add(types.Quote{Symbol: record[0], Bid: bid, Ask: ask, Date: date})
	}

	return &Dataset{Name: name, Store: builder.Build(), Frequency: frequency}, nil
}
