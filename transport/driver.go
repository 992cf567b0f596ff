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

// Package transport implements TransportDriver (spec.md §6): socket I/O,
// name resolution, and TLS, producing framed event batches that decode.Decoder
// turns into record.Record values and eventbus.Bus fans out. Two concrete
// drivers are provided: FIXDriver (quickfixgo) and WSDriver
// (coder/websocket), matching spec.md §9's "Decoupling from transport" note
// — neither driver imports registry or snapshot.
package transport

import "context"

// Driver is the contract every concrete transport implements.
type Driver interface {
	Start(ctx context.Context) error
	Stop() error
}
