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

// Package market defines the closed set of event kinds, batch flags, and
// snapshot lifecycle states shared by every other package in this module.
package market

// EventKind is the closed set of record layouts the feed understands.
type EventKind int

const (
	Trade EventKind = iota
	Quote
	Summary
	Profile
	Order
	TimeAndSale
	Candle
	TradeEth
	SpreadOrder
	Greeks
	Series
)

func (k EventKind) String() string {
	switch k {
	case Trade:
		return "Trade"
	case Quote:
		return "Quote"
	case Summary:
		return "Summary"
	case Profile:
		return "Profile"
	case Order:
		return "Order"
	case TimeAndSale:
		return "TimeAndSale"
	case Candle:
		return "Candle"
	case TradeEth:
		return "TradeEth"
	case SpreadOrder:
		return "SpreadOrder"
	case Greeks:
		return "Greeks"
	case Series:
		return "Series"
	default:
		return "Unknown"
	}
}

// Flags is the batch marker bitmask carried alongside every event batch.
type Flags uint32

const (
	SnapshotBegin Flags = 1 << iota
	SnapshotEnd
	TxPending
	RemoveEvent
)

func (f Flags) Has(bit Flags) bool {
	return f&bit != 0
}

// Mask returns k's bit within an event-type mask, per the glossary's
// "Event-type mask: bitmask identifying one or more event kinds subscribed
// by a subscription object." Subscriptions and snapshots compare masks
// with bitwise AND, so a subscription covering several kinds just ORs
// their masks together.
func (k EventKind) Mask() int {
	return 1 << uint(k)
}

// Status is the snapshot lifecycle state driven by SnapshotState.Absorb.
type Status int

const (
	Unknown Status = iota
	Begin
	Full
	Pending
)

func (s Status) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Begin:
		return "Begin"
	case Full:
		return "Full"
	case Pending:
		return "Pending"
	default:
		return "Invalid"
	}
}
