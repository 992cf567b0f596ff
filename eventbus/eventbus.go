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

// Package eventbus implements the general (non-snapshot) event-subscription
// bus the core consumes as an external collaborator (spec.md §6). Bus is
// the contract; Local is an in-process reference implementation that the
// transport drivers publish into and registry.Registry subscribes against.
package eventbus

import (
	"sync"

	"mdfeed-go/market"
	"mdfeed-go/record"
)

// Batch is one unit of the raw event stream: a vector of same-kind records
// plus the flags governing the snapshot state machine.
type Batch struct {
	EventType int
	Symbol    string
	Data      []record.Record
	Flags     market.Flags
}

// Handler is a bus subscriber's callback.
type Handler func(batch Batch)

// Subscription identifies what a handler is subscribed to. EventType is a
// bitmask and Symbol names a symbol. Local keys handlers by ID alone: it
// delivers every batch published under an ID to every handler subscribed
// under that ID, and does not filter by EventType or Symbol.
type Subscription struct {
	ID        int
	EventType int
	Symbol    string
}

// Bus is the external collaborator spec.md §6 describes: subscribe a
// handler against a subscription, recover a subscription's event-type
// bitmask, and publish a decoded batch to whatever subscribed against it.
// transport.Driver implementations only ever see this interface, never
// Local directly.
type Bus interface {
	Subscribe(sub Subscription, h Handler) error
	Unsubscribe(sub Subscription) error
	EventTypeOf(sub Subscription) int
	Publish(sub Subscription, batch Batch)
}

// Local is an in-process Bus sufficient for wiring a transport.Driver
// directly to dispatch.Dispatch without a real broker. Guarded by a single
// mutex, mirroring the teacher's OrderStore copy-on-read pattern
// (fixclient/orderstore.go) adapted from a ClOrdID-keyed order map to a
// subscription-keyed handler map.
type Local struct {
	mu       sync.RWMutex
	handlers map[int][]Handler
}

// NewLocal constructs an empty Local bus.
func NewLocal() *Local {
	return &Local{handlers: make(map[int][]Handler)}
}

func (b *Local) Subscribe(sub Subscription, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[sub.ID] = append(b.handlers[sub.ID], h)
	return nil
}

func (b *Local) Unsubscribe(sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, sub.ID)
	return nil
}

func (b *Local) EventTypeOf(sub Subscription) int {
	return sub.EventType
}

// Publish fans batch out to every handler registered against sub. Intended
// to be called by a transport.Driver once it has decoded a wire batch.
func (b *Local) Publish(sub Subscription, batch Batch) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[sub.ID]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(batch)
	}
}
