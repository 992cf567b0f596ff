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

// Package snapkey implements SnapshotKey, the 64-bit composite accelerator
// key spec.md §4.3 defines over (record ID, symbol, source). It is an
// accelerator for the registry's sorted array, not an identity: collisions
// are expected to be tolerated by a full-tuple recheck at the registry
// layer, grounded on the original C implementation's
// dx_new_snapshot_key/dx_snapshot_comparator pair
// (original_source/src/Snapshot.c).
package snapkey

// Key is the 64-bit composite accelerator key.
type Key uint64

// New builds a SnapshotKey from a record ID and the (symbol, source) pair.
// source may be empty, in which case its hash contribution is zero.
func New(recordID int64, symbol, source string) Key {
	rid := uint64(recordID) & 0xFF
	symHash := uint64(uint32(rollingHash(symbol)))

	var srcHash uint64
	if source != "" {
		srcHash = uint64(uint32(rollingHash(source))) & 0xFFFFFF
	}

	return Key(rid<<56 | symHash<<24 | srcHash)
}

// rollingHash is the stable per-codepoint hash spec.md §4.3 mandates:
// h = h*31 + c, seeded at 0, over the string's runes.
func rollingHash(s string) int32 {
	var h int32
	for _, c := range s {
		h = h*31 + c
	}
	return h
}

// Less reports whether k sorts before o — used by the registry's sorted
// array (numeric ascending, spec.md §4.5).
func (k Key) Less(o Key) bool {
	return k < o
}
