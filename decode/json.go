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

package decode

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"mdfeed-go/eventbus"
	"mdfeed-go/market"
	"mdfeed-go/record"
)

// quoteFrame is the wire envelope JSONDecoder expects from a WS transport:
// one batch of quote updates for a single symbol.
type quoteFrame struct {
	MsgType string `json:"type"` // "snapshot" | "update"
	Symbol  string `json:"symbol"`
	ReqID   string `json:"reqId"`
	Entries []struct {
		Time     int64  `json:"time"`
		Sequence int32  `json:"sequence"`
		BidPrice string `json:"bidPrice"`
		BidSize  string `json:"bidSize"`
		AskPrice string `json:"askPrice"`
		AskSize  string `json:"askSize"`
	} `json:"entries"`
}

// JSONDecoder decodes a JSON quote-update envelope into Quote records.
// Uses the standard library's encoding/json rather than a third-party
// decoder: JSON here is the secondary (WS) wire format, off the
// snapshot hot path, and no example in the corpus wires a faster JSON
// decoder into a market-data client specifically (see DESIGN.md).
type JSONDecoder struct {
	RecordID  int64
	EventType int
}

// NewJSONDecoder constructs a decoder for quote messages carrying
// recordID, registered under eventType's bit (market.Quote.Mask() by
// default).
func NewJSONDecoder(recordID int64, eventType int) *JSONDecoder {
	return &JSONDecoder{RecordID: recordID, EventType: eventType}
}

func (d *JSONDecoder) Decode(frame []byte) (eventbus.Subscription, eventbus.Batch, error) {
	var qf quoteFrame
	if err := json.Unmarshal(frame, &qf); err != nil {
		return eventbus.Subscription{}, eventbus.Batch{}, fmt.Errorf("decode: invalid quote frame: %w", err)
	}
	if qf.Symbol == "" {
		return eventbus.Subscription{}, eventbus.Batch{}, fmt.Errorf("decode: missing symbol")
	}

	data := make([]record.Record, 0, len(qf.Entries))
	for _, e := range qf.Entries {
		bidPrice, err := decimalOrZero(e.BidPrice)
		if err != nil {
			return eventbus.Subscription{}, eventbus.Batch{}, err
		}
		bidSize, err := decimalOrZero(e.BidSize)
		if err != nil {
			return eventbus.Subscription{}, eventbus.Batch{}, err
		}
		askPrice, err := decimalOrZero(e.AskPrice)
		if err != nil {
			return eventbus.Subscription{}, eventbus.Batch{}, err
		}
		askSize, err := decimalOrZero(e.AskSize)
		if err != nil {
			return eventbus.Subscription{}, eventbus.Batch{}, err
		}
		data = append(data, &record.QuoteRecord{
			Time:     e.Time,
			Sequence: e.Sequence,
			BidPrice: bidPrice,
			BidSize:  bidSize,
			AskPrice: askPrice,
			AskSize:  askSize,
		})
	}

	var flags market.Flags
	if qf.MsgType == "snapshot" {
		flags = market.SnapshotBegin | market.SnapshotEnd
	}

	sub := eventbus.Subscription{ID: subscriptionID(qf.ReqID), EventType: d.EventType, Symbol: qf.Symbol}
	batch := eventbus.Batch{EventType: d.EventType, Symbol: qf.Symbol, Data: data, Flags: flags}
	return sub, batch, nil
}

func decimalOrZero(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
