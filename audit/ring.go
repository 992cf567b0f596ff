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

// Package audit is diagnostic tooling, not snapshot persistence: it records
// the raw batches absorbed by the core so an operator can answer "what did
// we receive and when", never "what was the assembled snapshot" — assembled
// state lives only in snapshot.State's in-memory buffer, by design.
package audit

import (
	"sync"
	"time"
)

// Entry is one audited batch: enough to answer "what arrived, for which
// symbol, how big, with what flags" without reconstructing the snapshot
// itself.
type Entry struct {
	Time      time.Time
	Symbol    string
	EventType int
	Flags     int
	RecordCount int
}

// Ring is a fixed-capacity, zero-allocation-on-eviction circular buffer of
// recent Entry values, adapted from fixclient/tradestore.go's TradeStore:
// same head/count ring-buffer layout and two-pass GetRecentTrades read
// algorithm, generalized from a Trade-only ring to a symbol-agnostic audit
// trail (this module has no single "trade" record kind to special-case).
type Ring struct {
	mu      sync.RWMutex
	entries []Entry
	head    int
	count   int
	maxSize int
}

// NewRing constructs a ring buffer holding at most maxSize entries.
func NewRing(maxSize int) *Ring {
	return &Ring{entries: make([]Entry, maxSize), maxSize: maxSize}
}

// Add inserts e, overwriting the oldest entry once the buffer is full.
func (r *Ring) Add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	writeIdx := (r.head + r.count) % r.maxSize
	r.entries[writeIdx] = e
	if r.count < r.maxSize {
		r.count++
	} else {
		r.head = (r.head + 1) % r.maxSize
	}
}

// Recent returns up to limit of the most recent entries for symbol, oldest
// first, via the same two-pass count-then-fill approach TradeStore.GetRecentTrades
// uses to avoid an O(n^2) prepend.
func (r *Ring) Recent(symbol string, limit int) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}

	matchCount := 0
	for i := 0; i < r.count && matchCount < limit; i++ {
		idx := (r.head + r.count - 1 - i) % r.maxSize
		if r.entries[idx].Symbol == symbol {
			matchCount++
		}
	}
	if matchCount == 0 {
		return nil
	}

	result := make([]Entry, matchCount)
	resultIdx := matchCount - 1
	for i := 0; i < r.count && resultIdx >= 0; i++ {
		idx := (r.head + r.count - 1 - i) % r.maxSize
		if r.entries[idx].Symbol == symbol {
			result[resultIdx] = r.entries[idx]
			resultIdx--
		}
	}
	return result
}

// All returns a defensive copy of every buffered entry, oldest first.
func (r *Ring) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	result := make([]Entry, r.count)
	for i := 0; i < r.count; i++ {
		result[i] = r.entries[(r.head+i)%r.maxSize]
	}
	return result
}
