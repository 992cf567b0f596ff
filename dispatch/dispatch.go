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

// Package dispatch implements EventDispatch (spec.md §4.6) as a thin
// eventbus.Handler adapter. The scan-and-absorb algorithm itself lives in
// registry.Registry.Absorb, since it runs under the registry's mutex, and
// registry.Registry.Create subscribes Absorb on the bus itself; Dispatch
// forwards each batch it is handed straight through to Absorb.
package dispatch

import (
	"mdfeed-go/eventbus"
	"mdfeed-go/registry"
)

// Dispatch forwards batches from an eventbus.Bus to a registry.Registry.
type Dispatch struct {
	reg *registry.Registry
}

// New binds a Dispatch to reg. registry.Registry.Create subscribes the
// registry's own Absorb method, not OnBatch; OnBatch is only called where a
// caller subscribes it or invokes it directly.
func New(reg *registry.Registry) *Dispatch {
	return &Dispatch{reg: reg}
}

// OnBatch is an eventbus.Handler that forwards batch to the registry.
func (d *Dispatch) OnBatch(batch eventbus.Batch) {
	d.reg.Absorb(batch)
}
