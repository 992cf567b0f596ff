package record

import (
	"testing"

	"github.com/shopspring/decimal"

	"mdfeed-go/market"
)

func TestCompareOrderByIndex(t *testing.T) {
	a := &OrderRecord{Index: 1, Price: decimal.NewFromInt(99)}
	b := &OrderRecord{Index: 3, Price: decimal.NewFromInt(100)}

	if Compare(a, b) >= 0 {
		t.Fatalf("expected a < b, got Compare=%d", Compare(a, b))
	}
	if Compare(b, a) <= 0 {
		t.Fatalf("expected b > a, got Compare=%d", Compare(b, a))
	}
	if Compare(a, a) != 0 {
		t.Fatalf("expected equal record to compare 0")
	}
}

func TestCompareCandleByTimeThenSequence(t *testing.T) {
	c1 := &CandleRecord{Time: 100, Sequence: 0}
	c2 := &CandleRecord{Time: 100, Sequence: 1}
	c3 := &CandleRecord{Time: 200, Sequence: 0}

	if Compare(c1, c2) >= 0 {
		t.Fatalf("expected c1 < c2 on sequence tiebreak")
	}
	if Compare(c2, c3) >= 0 {
		t.Fatalf("expected c2 < c3 on time")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := &OrderRecord{Index: 5, Price: decimal.NewFromInt(10), MarketMaker: "NTV"}
	clonedAny, err := Clone(src)
	if err != nil {
		t.Fatalf("unexpected clone error: %v", err)
	}
	cloned := clonedAny.(*OrderRecord)

	if cloned == src {
		t.Fatalf("clone returned the same pointer")
	}

	cloned.MarketMaker = "BYX"
	if src.MarketMaker != "NTV" {
		t.Fatalf("mutating clone leaked into source: %q", src.MarketMaker)
	}
}

func TestIsRemoval(t *testing.T) {
	removed := &OrderRecord{Index: 1, Removed: true}
	present := &OrderRecord{Index: 2, Removed: false}

	if !IsRemoval(removed) {
		t.Fatalf("expected removed record to report removal")
	}
	if IsRemoval(present) {
		t.Fatalf("expected present record to not report removal")
	}
}

func TestKindMatchesEventKind(t *testing.T) {
	cases := []struct {
		r    Record
		kind market.EventKind
	}{
		{&OrderRecord{}, market.Order},
		{&SpreadOrderRecord{}, market.SpreadOrder},
		{&CandleRecord{}, market.Candle},
		{&TimeAndSaleRecord{}, market.TimeAndSale},
		{&GreeksRecord{}, market.Greeks},
		{&SeriesRecord{}, market.Series},
		{&TradeRecord{}, market.Trade},
		{&TradeEthRecord{}, market.TradeEth},
		{&QuoteRecord{}, market.Quote},
		{&SummaryRecord{}, market.Summary},
		{&ProfileRecord{}, market.Profile},
	}

	for _, tc := range cases {
		if tc.r.Kind() != tc.kind {
			t.Errorf("expected kind %v, got %v", tc.kind, tc.r.Kind())
		}
	}
}
