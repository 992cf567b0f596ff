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

package audit

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"mdfeed-go/eventbus"
)

const createBatchesTable = `
CREATE TABLE IF NOT EXISTS audited_batches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	received_at TEXT NOT NULL,
	symbol TEXT NOT NULL,
	event_type INTEGER NOT NULL,
	flags INTEGER NOT NULL,
	record_count INTEGER NOT NULL
)`

const insertBatchQuery = `
INSERT INTO audited_batches (received_at, symbol, event_type, flags, record_count)
VALUES (?, ?, ?, ?, ?)`

// Log is the SQLite-backed audit trail, grounded on
// database/marketdata.go's prepared-statement-per-operation pattern: one
// statement, prepared once at construction, reused for every insert rather
// than reparsed per call. It also keeps an in-memory Ring of the same
// entries so a live REPL can answer "what have we seen lately" without a
// round trip to disk.
type Log struct {
	db       *sql.DB
	stmt     *sql.Stmt
	recent   *Ring
}

// Open initializes (creating if absent) a SQLite audit database at path and
// an in-memory ring buffer of ringSize recent entries. Mirrors
// database.NewMarketDataDb's WAL-mode open string — this is diagnostic
// write traffic, not the hot path, but WAL still avoids writer/reader lock
// contention against a concurrently tailing operator.
func Open(path string, ringSize int) (*Log, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}
	if _, err := db.Exec(createBatchesTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}
	stmt, err := db.Prepare(insertBatchQuery)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: prepare insert: %w", err)
	}
	return &Log{db: db, stmt: stmt, recent: NewRing(ringSize)}, nil
}

// Close releases the prepared statement and the underlying database handle.
func (l *Log) Close() error {
	_ = l.stmt.Close()
	return l.db.Close()
}

// Record persists one audit entry and mirrors it into the in-memory ring.
func (l *Log) Record(symbol string, eventType, flags, recordCount int) error {
	now := time.Now().UTC()
	if _, err := l.stmt.Exec(now.Format(time.RFC3339Nano), symbol, eventType, flags, recordCount); err != nil {
		return fmt.Errorf("audit: insert batch: %w", err)
	}
	l.recent.Add(Entry{Time: now, Symbol: symbol, EventType: eventType, Flags: flags, RecordCount: recordCount})
	return nil
}

// OnBatch adapts an eventbus.Batch into a Record call, so a Log can be
// subscribed directly to an eventbus.Bus alongside the registry's own
// subscription — auditing never needs to know about snapshot.State or
// registry.Registry.
func (l *Log) OnBatch(batch eventbus.Batch) {
	if err := l.Record(batch.Symbol, batch.EventType, int(batch.Flags), len(batch.Data)); err != nil {
		log.Error().Err(err).Str("symbol", batch.Symbol).Msg("audit: failed to record batch")
	}
}

// Recent returns the most recent ringSize-bounded entries for symbol from
// the in-memory ring, without touching SQLite.
func (l *Log) Recent(symbol string, limit int) []Entry {
	return l.recent.Recent(symbol, limit)
}
