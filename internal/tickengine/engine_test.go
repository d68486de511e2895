package tickengine

import (
	"testing"

	"github.com/shopspring/decimal"

	"uistd/internal/clock"
	"uistd/internal/quotestore"
	"uistd/pkg/types"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func quote(symbol string, bid, ask float64, date int64) types.Quote {
	return types.Quote{Symbol: symbol, Bid: d(bid), Ask: d(ask), Date: date}
}

func newEngine(t *testing.T, quotes ...types.Quote) *Engine {
	t.Helper()
	builder := quotestore.NewBuilder()
	for _, q := range quotes {
		builder.Add(q)
	}
	store := builder.Build()
	c, err := clock.New(store.Dates(), types.Daily)
	if err != nil {
		t.Fatalf("clock.New() error = %v", err)
	}
	return New(c, store)
}

func TestMarketBuyExecutesOnNextTick(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
	)

	// Order placed while the clock sits at 100: it must never see the 100
	// quote. The next Tick advances to 101 first, then drains the buffer,
	// so the fill happens against the 102/103 quote.
	e.InsertOrder(types.NewMarketBuy("ABC", d(100)))

	res := e.Tick()
	if len(res.ExecutedTrades) != 1 {
		t.Fatalf("ExecutedTrades len = %d, want 1", len(res.ExecutedTrades))
	}
	tr := res.ExecutedTrades[0]
	if !tr.Value.Equal(d(103 * 100)) {
		t.Errorf("trade value = %v, want %v (fill at next tick's ask, not placement tick's)", tr.Value, d(103*100))
	}
	if tr.Date != 101 {
		t.Errorf("trade date = %v, want 101", tr.Date)
	}
	if tr.Date <= 100 {
		t.Errorf("trade date = %v, must be strictly after placement time 100", tr.Date)
	}
	if len(e.TradeLog()) != 1 {
		t.Errorf("TradeLog() len = %d, want 1", len(e.TradeLog()))
	}
}

func TestMultipleOrdersExecuteInOneTick(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
	)
	for i := 0; i < 4; i++ {
		e.InsertOrder(types.NewMarketBuy("ABC", d(25)))
	}

	res := e.Tick()
	if len(res.ExecutedTrades) != 4 {
		t.Fatalf("ExecutedTrades len = %d, want 4", len(res.ExecutedTrades))
	}
	for i, tr := range res.ExecutedTrades {
		if !tr.Value.Equal(d(25 * 103)) {
			t.Errorf("trade[%d] value = %v, want %v", i, tr.Value, d(25*103))
		}
		if tr.Date != 101 {
			t.Errorf("trade[%d] date = %v, want 101", i, tr.Date)
		}
	}
}

func TestTickReturnsAllBufferedOrdersAndClearsBuffer(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
		quote("ABC", 105, 106, 102),
	)
	e.InsertOrder(types.NewMarketBuy("ABC", d(1)))
	e.InsertOrder(types.NewLimitBuy("ABC", d(1), d(50)))

	res := e.Tick()
	if len(res.InsertedOrders) != 2 {
		t.Fatalf("InsertedOrders len = %d, want 2 (every buffered order must be reported)", len(res.InsertedOrders))
	}
	for i, o := range res.InsertedOrders {
		if o.OrderID == 0 {
			t.Errorf("InsertedOrders[%d].OrderID = 0, want stamped ID", i)
		}
	}

	// A second tick with nothing buffered reports no insertions: the buffer
	// really was drained, not retained.
	res = e.Tick()
	if len(res.InsertedOrders) != 0 {
		t.Errorf("second tick InsertedOrders = %v, want none", res.InsertedOrders)
	}
}

func TestSellsExecuteBeforeBuysInSameTick(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
	)
	e.InsertOrder(types.NewMarketBuy("ABC", d(100)))
	e.InsertOrder(types.NewMarketBuy("ABC", d(100)))
	e.InsertOrder(types.NewMarketSell("ABC", d(100)))

	res := e.Tick()
	if len(res.ExecutedTrades) != 3 {
		t.Fatalf("ExecutedTrades len = %d, want 3", len(res.ExecutedTrades))
	}
	want := []types.TradeType{types.Sell, types.Buy, types.Buy}
	for i, tr := range res.ExecutedTrades {
		if tr.Typ != want[i] {
			t.Errorf("trade[%d].Typ = %v, want %v (sells lead within a buffered batch)", i, tr.Typ, want[i])
		}
	}
}

func TestInsertedOrderIDsFollowSellBeforeBuyOrder(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
	)
	e.InsertOrder(types.NewMarketBuy("ABC", d(1)))
	e.InsertOrder(types.NewMarketSell("ABC", d(1)))

	res := e.Tick()
	if len(res.InsertedOrders) != 2 {
		t.Fatalf("InsertedOrders len = %d, want 2", len(res.InsertedOrders))
	}
	if res.InsertedOrders[0].OrderType != types.MarketSell {
		t.Errorf("InsertedOrders[0].OrderType = %v, want MarketSell (insertion order follows sort, not arrival)", res.InsertedOrders[0].OrderType)
	}
	if res.InsertedOrders[0].OrderID >= res.InsertedOrders[1].OrderID {
		t.Errorf("sell order ID %v should be lower than buy order ID %v", res.InsertedOrders[0].OrderID, res.InsertedOrders[1].OrderID)
	}
}

func TestUnknownSymbolRestsSilently(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
		quote("ABC", 105, 106, 102),
	)
	e.InsertOrder(types.NewMarketBuy("XYZ", d(100)))

	res := e.Tick()
	if len(res.ExecutedTrades) != 0 {
		t.Fatalf("ExecutedTrades = %v, want none for an unquoted symbol", res.ExecutedTrades)
	}
	res = e.Tick()
	if len(res.ExecutedTrades) != 0 {
		t.Errorf("second tick ExecutedTrades = %v, want none (order keeps resting)", res.ExecutedTrades)
	}
	if len(e.TradeLog()) != 0 {
		t.Errorf("TradeLog() = %v, want empty", e.TradeLog())
	}
}

func TestDelayedQuoteExecutesOnLaterTick(t *testing.T) {
	// Quotes exist at 100 and 102 only; 101 is on the schedule via a second
	// symbol so the clock still steps through it.
	e := newEngine(t,
		quote("ABC", 104, 105, 100),
		quote("BCD", 50, 51, 101),
		quote("ABC", 105, 106, 102),
	)
	e.InsertOrder(types.NewMarketBuy("ABC", d(100)))

	res := e.Tick() // -> 101, no ABC quote, rests
	if len(res.ExecutedTrades) != 0 {
		t.Fatalf("tick to 101 ExecutedTrades = %v, want none", res.ExecutedTrades)
	}

	res = e.Tick() // -> 102, fills at ask 106
	if len(res.ExecutedTrades) != 1 {
		t.Fatalf("tick to 102 ExecutedTrades len = %d, want 1", len(res.ExecutedTrades))
	}
	tr := res.ExecutedTrades[0]
	if !tr.Value.Equal(d(106 * 100)) {
		t.Errorf("trade value = %v, want %v", tr.Value, d(106*100))
	}
	if tr.Date != 102 {
		t.Errorf("trade date = %v, want 102", tr.Date)
	}
}

func TestTickAtExhaustedClockIsIdempotent(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
	)
	res := e.Tick()
	if res.HasNext {
		t.Fatal("HasNext = true after reaching the final schedule entry, want false")
	}
	if e.Now() != 101 {
		t.Fatalf("Now() = %v, want 101", e.Now())
	}

	// An order buffered after exhaustion stays buffered: nothing may move.
	e.InsertOrder(types.NewMarketBuy("ABC", d(1)))
	res = e.Tick()
	if res.HasNext {
		t.Error("HasNext = true on an exhausted tick, want false")
	}
	if len(res.ExecutedTrades) != 0 || len(res.InsertedOrders) != 0 {
		t.Errorf("exhausted tick returned trades %v, orders %v, want none", res.ExecutedTrades, res.InsertedOrders)
	}
	if e.Now() != 101 {
		t.Errorf("Now() = %v, want 101 (unchanged by an exhausted tick)", e.Now())
	}
}

func TestTradeLogAccumulatesAcrossTicks(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
		quote("ABC", 105, 106, 102),
	)
	e.InsertOrder(types.NewMarketBuy("ABC", d(1)))
	e.Tick() // fills at 101
	e.InsertOrder(types.NewMarketSell("ABC", d(1)))
	e.Tick() // fills at 102

	log := e.TradeLog()
	if len(log) != 2 {
		t.Fatalf("TradeLog() len = %d, want 2", len(log))
	}
	if log[0].Typ != types.Buy || log[1].Typ != types.Sell {
		t.Errorf("TradeLog() order = [%v, %v], want [Buy, Sell]", log[0].Typ, log[1].Typ)
	}
}

func TestOrderIDsAreMonotonicAcrossTicks(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
		quote("ABC", 105, 106, 102),
	)
	e.InsertOrder(types.NewLimitBuy("ABC", d(1), d(50)))
	first := e.Tick()
	e.InsertOrder(types.NewLimitBuy("ABC", d(1), d(50)))
	second := e.Tick()

	if second.InsertedOrders[0].OrderID <= first.InsertedOrders[0].OrderID {
		t.Errorf("later tick assigned ID %v, want greater than earlier tick's %v",
			second.InsertedOrders[0].OrderID, first.InsertedOrders[0].OrderID)
	}
}

func TestDeleteOrderAfterInsertionRemovesFromBook(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("ABC", 102, 103, 101),
		quote("ABC", 105, 106, 102),
	)
	e.InsertOrder(types.NewLimitBuy("ABC", d(1), d(50))) // never triggers at these quotes
	res := e.Tick()
	id := res.InsertedOrders[0].OrderID

	e.DeleteOrder(id)
	e.DeleteOrder(id) // deleting again must be a no-op, not a panic

	res = e.Tick()
	if len(res.ExecutedTrades) != 0 {
		t.Errorf("ExecutedTrades = %v, want none (order was deleted before it could trigger)", res.ExecutedTrades)
	}
}

func TestFetchQuotesAtCurrentTime(t *testing.T) {
	e := newEngine(t,
		quote("ABC", 101, 102, 100),
		quote("BCD", 50, 51, 100),
		quote("ABC", 102, 103, 101),
	)
	quotes := e.FetchQuotes()
	if len(quotes) != 2 {
		t.Fatalf("FetchQuotes() len = %d, want 2", len(quotes))
	}

	e.Tick()
	quotes = e.FetchQuotes()
	if len(quotes) != 1 || quotes[0].Date != 101 {
		t.Errorf("FetchQuotes() after tick = %v, want the single 101 quote", quotes)
	}
}
