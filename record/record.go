/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package record implements RecordStore: a sealed sum type over
// market.EventKind with exhaustive-switch clone/compare/removal dispatch,
// replacing the teacher's per-field-string layout and the original C
// implementation's function-pointer table with a compile-time obligation —
// forgetting a kind in any of the switches below is a latent bug, not a
// silently-skipped dispatch entry.
package record

import (
	"fmt"

	"github.com/shopspring/decimal"

	"mdfeed-go/market"
)

// orderKey is the canonical ordering key shared by every record kind. Kinds
// whose layout has no natural secondary key (e.g. Profile) use a zero
// Secondary; comparisons then degrade to Primary-only ordering.
type orderKey struct {
	Primary   int64
	Secondary int32
}

func (k orderKey) compare(o orderKey) int {
	switch {
	case k.Primary < o.Primary:
		return -1
	case k.Primary > o.Primary:
		return 1
	case k.Secondary < o.Secondary:
		return -1
	case k.Secondary > o.Secondary:
		return 1
	default:
		return 0
	}
}

// Record is the sealed interface implemented by every concrete record
// layout in this package. The unexported method prevents other packages
// from introducing new kinds outside the exhaustive switches in this file —
// the compile-time obligation the original C dispatch table lacked.
type Record interface {
	Kind() market.EventKind
	orderKey() orderKey
	removal() bool
	clone() Record
}

// Clone returns a deep, independently owned copy of src. Decimal and string
// fields in this package are immutable value types in Go (unlike the
// original C layout's owned char*), so a struct-level copy already satisfies
// invariant I5 without per-field duplication; Clone still returns an error
// to preserve the public contract spec.md §4.1 requires (InsufficientMemory
// is unreachable in practice under the Go runtime's allocator, but
// snapshot.State threads the error path so a future pooling allocator can
// report exhaustion without an API change).
func Clone(src Record) (Record, error) {
	if src == nil {
		return nil, fmt.Errorf("record: clone of nil record")
	}
	return src.clone(), nil
}

// Free is a no-op under Go's garbage collector. It exists so callers that
// mirror the original's explicit clone/free pairing (snapshot.State does,
// to keep its reset/teardown paths symmetric) have a single symbol to call
// instead of relying on the GC implicitly; kept for documentation value.
func Free(Record) {}

// Compare orders two records of the same kind by their canonical key
// (spec.md §4.4). Comparing records of different kinds is a programmer
// error (RecordStore is always used per-kind-per-snapshot) and returns 0.
func Compare(a, b Record) int {
	if a.Kind() != b.Kind() {
		return 0
	}
	return a.orderKey().compare(b.orderKey())
}

// IsRemoval reports whether r is flagged for removal from its snapshot.
func IsRemoval(r Record) bool {
	return r.removal()
}

// --- Concrete record layouts ---

// OrderRecord is a single order-book price level (event kind Order).
// Canonical order: (Index) ascending.
type OrderRecord struct {
	Index       int64
	Time        int64
	Side        string
	Price       decimal.Decimal
	Size        decimal.Decimal
	MarketMaker string
	Source      string
	Removed     bool
}

func (r *OrderRecord) Kind() market.EventKind { return market.Order }
func (r *OrderRecord) orderKey() orderKey     { return orderKey{Primary: r.Index} }
func (r *OrderRecord) removal() bool          { return r.Removed }
func (r *OrderRecord) clone() Record          { cp := *r; return &cp }

// SpreadOrderRecord is a multi-leg spread order-book entry.
// Canonical order: (Index) ascending.
type SpreadOrderRecord struct {
	Index        int64
	Time         int64
	Side         string
	Price        decimal.Decimal
	Size         decimal.Decimal
	SpreadSymbol string
	Source       string
	Removed      bool
}

func (r *SpreadOrderRecord) Kind() market.EventKind { return market.SpreadOrder }
func (r *SpreadOrderRecord) orderKey() orderKey     { return orderKey{Primary: r.Index} }
func (r *SpreadOrderRecord) removal() bool          { return r.Removed }
func (r *SpreadOrderRecord) clone() Record          { cp := *r; return &cp }

// CandleRecord is one OHLCV bar. Canonical order: (Time, Sequence) ascending.
type CandleRecord struct {
	Time     int64
	Sequence int32
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   decimal.Decimal
	VWAP     decimal.Decimal
	Removed  bool
}

func (r *CandleRecord) Kind() market.EventKind { return market.Candle }
func (r *CandleRecord) orderKey() orderKey     { return orderKey{Primary: r.Time, Secondary: r.Sequence} }
func (r *CandleRecord) removal() bool          { return r.Removed }
func (r *CandleRecord) clone() Record          { cp := *r; return &cp }

// TimeAndSaleRecord is a single time-and-sales print.
// Canonical order: (Time, Sequence) ascending.
type TimeAndSaleRecord struct {
	Time         int64
	Sequence     int32
	Price        decimal.Decimal
	Size         decimal.Decimal
	ExchangeCode string
	Side         string
	Type         string
	Removed      bool
}

func (r *TimeAndSaleRecord) Kind() market.EventKind { return market.TimeAndSale }
func (r *TimeAndSaleRecord) orderKey() orderKey {
	return orderKey{Primary: r.Time, Secondary: r.Sequence}
}
func (r *TimeAndSaleRecord) removal() bool { return r.Removed }
func (r *TimeAndSaleRecord) clone() Record { cp := *r; return &cp }

// GreeksRecord is a single options-greeks reading.
// Canonical order: (Time, Sequence) ascending.
type GreeksRecord struct {
	Time       int64
	Sequence   int32
	Price      decimal.Decimal
	Volatility decimal.Decimal
	Delta      decimal.Decimal
	Gamma      decimal.Decimal
	Theta      decimal.Decimal
	Rho        decimal.Decimal
	Vega       decimal.Decimal
	Removed    bool
}

func (r *GreeksRecord) Kind() market.EventKind { return market.Greeks }
func (r *GreeksRecord) orderKey() orderKey     { return orderKey{Primary: r.Time, Secondary: r.Sequence} }
func (r *GreeksRecord) removal() bool          { return r.Removed }
func (r *GreeksRecord) clone() Record          { cp := *r; return &cp }

// SeriesRecord is a single options-series summary.
// Canonical order: (Expiration, Sequence) ascending.
type SeriesRecord struct {
	Expiration  int32
	Sequence    int32
	Volatility  decimal.Decimal
	CallVolume  decimal.Decimal
	PutVolume   decimal.Decimal
	PutCallRatio decimal.Decimal
	Removed     bool
}

func (r *SeriesRecord) Kind() market.EventKind { return market.Series }
func (r *SeriesRecord) orderKey() orderKey {
	return orderKey{Primary: int64(r.Expiration), Secondary: r.Sequence}
}
func (r *SeriesRecord) removal() bool { return r.Removed }
func (r *SeriesRecord) clone() Record { cp := *r; return &cp }

// TradeRecord is a last-trade print. spec.md does not assign Trade a
// canonical snapshot order (it lists one only for Order, SpreadOrder,
// Candle, TimeAndSale/Greeks, and Series); we order it the same way as
// TimeAndSale since both are time-series prints sharing a (Time, Sequence)
// layout in the underlying wire format. See DESIGN.md Open Question.
type TradeRecord struct {
	Time      int64
	Sequence  int32
	Price     decimal.Decimal
	Size      decimal.Decimal
	Change    decimal.Decimal
	DayVolume decimal.Decimal
	Removed   bool
}

func (r *TradeRecord) Kind() market.EventKind { return market.Trade }
func (r *TradeRecord) orderKey() orderKey     { return orderKey{Primary: r.Time, Secondary: r.Sequence} }
func (r *TradeRecord) removal() bool          { return r.Removed }
func (r *TradeRecord) clone() Record          { cp := *r; return &cp }

// TradeEthRecord is a last-trade print for extended trading hours.
type TradeEthRecord struct {
	Time      int64
	Sequence  int32
	Price     decimal.Decimal
	Size      decimal.Decimal
	DayVolume decimal.Decimal
	Removed   bool
}

func (r *TradeEthRecord) Kind() market.EventKind { return market.TradeEth }
func (r *TradeEthRecord) orderKey() orderKey {
	return orderKey{Primary: r.Time, Secondary: r.Sequence}
}
func (r *TradeEthRecord) removal() bool { return r.Removed }
func (r *TradeEthRecord) clone() Record { cp := *r; return &cp }

// QuoteRecord is a best-bid/best-offer reading.
type QuoteRecord struct {
	Time     int64
	Sequence int32
	BidPrice decimal.Decimal
	BidSize  decimal.Decimal
	AskPrice decimal.Decimal
	AskSize  decimal.Decimal
	Removed  bool
}

func (r *QuoteRecord) Kind() market.EventKind { return market.Quote }
func (r *QuoteRecord) orderKey() orderKey     { return orderKey{Primary: r.Time, Secondary: r.Sequence} }
func (r *QuoteRecord) removal() bool          { return r.Removed }
func (r *QuoteRecord) clone() Record          { cp := *r; return &cp }

// SummaryRecord is the daily summary (open/high/low/prev-close) for a
// symbol. Ordered by DayID only; the secondary ordering key is zero.
type SummaryRecord struct {
	DayID         int32
	DayOpen       decimal.Decimal
	DayHigh       decimal.Decimal
	DayLow        decimal.Decimal
	PrevDayClose  decimal.Decimal
	Removed       bool
}

func (r *SummaryRecord) Kind() market.EventKind { return market.Summary }
func (r *SummaryRecord) orderKey() orderKey     { return orderKey{Primary: int64(r.DayID)} }
func (r *SummaryRecord) removal() bool          { return r.Removed }
func (r *SummaryRecord) clone() Record          { cp := *r; return &cp }

// ProfileRecord is static descriptive data for a symbol. A symbol has at
// most one live profile record at a time, so it carries no meaningful
// ordering key; orderKey is the zero value for every instance.
type ProfileRecord struct {
	Description    string
	ExchangeCode   string
	TradingStatus  string
	Removed        bool
}

func (r *ProfileRecord) Kind() market.EventKind { return market.Profile }
func (r *ProfileRecord) orderKey() orderKey     { return orderKey{} }
func (r *ProfileRecord) removal() bool          { return r.Removed }
func (r *ProfileRecord) clone() Record          { cp := *r; return &cp }
