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

// Package decode implements RecordDecoder (spec.md §6): wire bytes to
// record.Record. It is the external collaborator between a transport.Driver
// and the eventbus.Bus — decoders never touch the registry or snapshot
// state directly, preserving spec.md §9's "Decoupling from transport" note.
package decode

import (
	"mdfeed-go/eventbus"
	"mdfeed-go/market"
)

// Decoder turns one raw wire frame into an eventbus.Batch plus the
// subscription it belongs to. Implementations must not block past the
// time needed to parse the frame already in hand.
type Decoder interface {
	Decode(frame []byte) (eventbus.Subscription, eventbus.Batch, error)
}
