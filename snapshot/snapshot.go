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

// Package snapshot implements SnapshotState: the per-snapshot state machine
// that absorbs event batches and drives the Unknown/Begin/Full/Pending
// lifecycle defined in spec.md §4.4. It is grounded on event_listener in
// original_source/src/Snapshot.c, reworked so the TODOs left in that
// function ("TODO: apply update", "TODO: apply one-row-update") are fully
// implemented per the REDESIGN FLAG in spec.md §9: insert-or-replace by
// canonical key, remove on removal flag, dispatch with is_new=false.
//
// Absorb is not internally synchronized. Callers (registry.Registry) must
// serialize access under the owning registry's guard — see spec.md §5.
package snapshot

import (
	"sort"

	"github.com/rs/zerolog/log"

	"mdfeed-go/listenerset"
	"mdfeed-go/market"
	"mdfeed-go/record"
	"mdfeed-go/snapkey"
)

// View is the non-owning payload handed to listeners. Its Records slice
// refers directly into the snapshot's live buffer: dispatch happens with
// the registry guard held (spec.md §4.4's first alternative), so the
// buffer is frozen for the duration of every callback. Listener callbacks
// must not mutate Records and must not call back into the registry.
type View struct {
	RecordID      int64
	EventKind     market.EventKind
	EventType     int
	Symbol        string
	Source        string
	Records       []record.Record
	RecordsCount  int
	IsNewSnapshot bool
}

// Listener is the callback shape registered against a snapshot.
type Listener = listenerset.Callback[View]

type pendingOp struct {
	removal bool
	rec     record.Record
}

// State is a single (record-kind, symbol, source) snapshot's state machine
// plus its owned record buffer and listener set.
type State struct {
	Key           snapkey.Key
	RecordID      int64
	EventKind     market.EventKind
	EventTypeMask int
	Symbol        string
	Source        string

	status    market.Status
	records   []record.Record
	pending   []pendingOp
	listeners listenerset.Set[View]

	clone func(record.Record) (record.Record, error)
}

// New creates a snapshot in the Unknown state, ready to resynchronize on
// the next batch carrying SNAPSHOT_BEGIN.
func New(key snapkey.Key, recordID int64, kind market.EventKind, eventTypeMask int, symbol, source string) *State {
	return &State{
		Key:           key,
		RecordID:      recordID,
		EventKind:     kind,
		EventTypeMask: eventTypeMask,
		Symbol:        symbol,
		Source:        source,
		status:        market.Unknown,
		clone:         record.Clone,
	}
}

// SetCloner overrides the record-cloning function, primarily for tests that
// need to exercise the InsufficientMemory failure path (spec.md §4.4).
func (s *State) SetCloner(fn func(record.Record) (record.Record, error)) {
	s.clone = fn
}

// Status returns the snapshot's current lifecycle state.
func (s *State) Status() market.Status {
	return s.status
}

// Records returns the live, sorted record buffer. Callers must treat it as
// read-only and must hold the owning registry's guard if the snapshot is
// still reachable from a registry.
func (s *State) Records() []record.Record {
	return s.records
}

// AddListener registers cb/ctx. See listenerset.Set.Insert.
func (s *State) AddListener(cb Listener, ctx any) bool {
	return s.listeners.Insert(cb, ctx)
}

// RemoveListener unregisters cb. See listenerset.Set.Remove.
func (s *State) RemoveListener(cb Listener) bool {
	return s.listeners.Remove(cb)
}

// Reset clears the record buffer and listener set and returns the snapshot
// to Unknown. Called by the registry on Close (spec.md §5's teardown order:
// listeners first, then records).
func (s *State) Reset() {
	s.listeners = listenerset.Set[View]{}
	s.freeRecords()
	s.pending = nil
	s.status = market.Unknown
}

// Absorb incorporates one event batch into the snapshot, driving the state
// machine per spec.md §4.4's transition table and dispatching listeners
// when a coherent view becomes available. The returned bool reports
// whether a dispatch occurred, for callers (registry.Registry.Absorb) that
// want to count dispatches without re-deriving it from state transitions.
func (s *State) Absorb(data []record.Record, flags market.Flags) (bool, error) {
	if s.status == market.Unknown && !flags.Has(market.SnapshotBegin) {
		log.Info().
			Str("symbol", s.Symbol).
			Str("event_kind", s.EventKind.String()).
			Msg("discarding batch absorbed from Unknown state without SNAPSHOT_BEGIN")
		return false, nil
	}

	if flags.Has(market.SnapshotBegin) {
		s.freeRecords()
		s.pending = nil
		if err := s.appendArrival(data); err != nil {
			s.markUnknown(err)
			return false, err
		}
		s.status = market.Begin

		// A single batch may carry both SNAPSHOT_BEGIN and SNAPSHOT_END
		// (a complete snapshot delivered in one message, spec.md scenario
		// 5) — finalize immediately rather than waiting for a second batch.
		if flags.Has(market.SnapshotEnd) {
			s.finalize()
			s.status = market.Full
			s.notify(true)
			return true, nil
		}
		return false, nil
	}

	switch s.status {
	case market.Begin:
		return s.absorbInBegin(data, flags)
	case market.Full:
		return s.absorbInFull(data, flags)
	case market.Pending:
		return s.absorbInPending(data, flags)
	default:
		return false, nil
	}
}

func (s *State) absorbInBegin(data []record.Record, flags market.Flags) (bool, error) {
	if flags.Has(market.SnapshotEnd) {
		if err := s.appendArrival(data); err != nil {
			s.markUnknown(err)
			return false, err
		}
		s.finalize()
		s.status = market.Full
		s.notify(true)
		return true, nil
	}

	if err := s.appendArrival(data); err != nil {
		s.markUnknown(err)
		return false, err
	}
	return false, nil
}

func (s *State) absorbInFull(data []record.Record, flags market.Flags) (bool, error) {
	if flags.Has(market.TxPending) {
		s.bufferPending(data, flags)
		s.status = market.Pending
		return false, nil
	}

	ops := toOps(data, flags)
	if err := s.applyOps(ops); err != nil {
		s.markUnknown(err)
		return false, err
	}
	s.notify(false)
	return true, nil
}

func (s *State) absorbInPending(data []record.Record, flags market.Flags) (bool, error) {
	if flags.Has(market.TxPending) {
		s.bufferPending(data, flags)
		return false, nil
	}

	// TX_PENDING has cleared: the clearing batch's own data extends the
	// delta one last time before it is applied atomically.
	s.bufferPending(data, flags)
	ops := s.pending
	s.pending = nil
	if err := s.applyOps(ops); err != nil {
		s.markUnknown(err)
		return false, err
	}
	s.status = market.Full
	s.notify(false)
	return true, nil
}

func toOps(data []record.Record, flags market.Flags) []pendingOp {
	ops := make([]pendingOp, len(data))
	for i, rec := range data {
		ops[i] = pendingOp{
			removal: flags.Has(market.RemoveEvent) || record.IsRemoval(rec),
			rec:     rec,
		}
	}
	return ops
}

func (s *State) bufferPending(data []record.Record, flags market.Flags) {
	s.pending = append(s.pending, toOps(data, flags)...)
}

// appendArrival clones and appends data in arrival order, without sorting —
// used while building up a snapshot in the Begin state.
func (s *State) appendArrival(data []record.Record) error {
	for _, rec := range data {
		cloned, err := s.clone(rec)
		if err != nil {
			return err
		}
		s.records = append(s.records, cloned)
	}
	return nil
}

// finalize sorts the arrival-order buffer by canonical key, drops
// removal-flagged records, and collapses duplicate keys keeping the
// last-arrived value (spec.md invariant I3, P2).
func (s *State) finalize() {
	sort.SliceStable(s.records, func(i, j int) bool {
		return record.Compare(s.records[i], s.records[j]) < 0
	})

	deduped := s.records[:0]
	for i := 0; i < len(s.records); i++ {
		if i+1 < len(s.records) && record.Compare(s.records[i], s.records[i+1]) == 0 {
			record.Free(s.records[i])
			continue
		}
		if record.IsRemoval(s.records[i]) {
			record.Free(s.records[i])
			continue
		}
		deduped = append(deduped, s.records[i])
	}
	s.records = deduped
}

// search returns the sorted position of rec's canonical key within the
// buffer, and whether a record with that exact key already exists.
func (s *State) search(rec record.Record) (int, bool) {
	lo, hi := 0, len(s.records)
	for lo < hi {
		mid := (lo + hi) / 2
		switch c := record.Compare(rec, s.records[mid]); {
		case c < 0:
			hi = mid
		case c > 0:
			lo = mid + 1
		default:
			return mid, true
		}
	}
	return lo, false
}

// applyOps applies a delta (insertions, replacements, removals) in arrival
// order onto the sorted buffer via binary search, preserving invariant I3.
// A removal of a non-existent key is a no-op, not an error.
func (s *State) applyOps(ops []pendingOp) error {
	for _, op := range ops {
		idx, found := s.search(op.rec)
		if op.removal {
			if found {
				record.Free(s.records[idx])
				s.records = append(s.records[:idx], s.records[idx+1:]...)
			}
			continue
		}

		cloned, err := s.clone(op.rec)
		if err != nil {
			return err
		}
		if found {
			record.Free(s.records[idx])
			s.records[idx] = cloned
			continue
		}
		s.records = append(s.records, nil)
		copy(s.records[idx+1:], s.records[idx:len(s.records)-1])
		s.records[idx] = cloned
	}
	return nil
}

func (s *State) freeRecords() {
	for _, r := range s.records {
		record.Free(r)
	}
	s.records = nil
}

// markUnknown implements spec.md §4.4's failure semantics: an allocation
// failure during absorb resets the snapshot to Unknown and clears its
// buffer so the next SNAPSHOT_BEGIN can resynchronize. No retries happen
// inside the core.
func (s *State) markUnknown(cause error) {
	log.Warn().
		Str("symbol", s.Symbol).
		Str("event_kind", s.EventKind.String()).
		Err(cause).
		Msg("absorb failed, resetting snapshot to Unknown")
	s.freeRecords()
	s.pending = nil
	s.status = market.Unknown
}

func (s *State) notify(isNew bool) {
	view := View{
		RecordID:      s.RecordID,
		EventKind:     s.EventKind,
		EventType:     s.EventTypeMask,
		Symbol:        s.Symbol,
		Source:        s.Source,
		Records:       s.records,
		RecordsCount:  len(s.records),
		IsNewSnapshot: isNew,
	}
	s.listeners.Each(func(cb Listener, ctx any) {
		cb(view, ctx)
	})
}
