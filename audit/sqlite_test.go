package audit

import (
	"path/filepath"
	"testing"

	"mdfeed-go/eventbus"
	"mdfeed-go/market"
	"mdfeed-go/record"
)

func TestLogRecordsBatchAndMirrorsToRing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	l, err := Open(dbPath, 10)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer l.Close()

	if err := l.Record("BTC-USD", market.Order.Mask(), int(market.SnapshotBegin|market.SnapshotEnd), 2); err != nil {
		t.Fatalf("record: %v", err)
	}

	recent := l.Recent("BTC-USD", 10)
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent entry, got %d", len(recent))
	}
	if recent[0].RecordCount != 2 {
		t.Fatalf("expected record count 2, got %d", recent[0].RecordCount)
	}
}

func TestLogOnBatchAdaptsEventbusBatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	l, err := Open(dbPath, 10)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer l.Close()

	l.OnBatch(eventbus.Batch{
		EventType: market.Order.Mask(),
		Symbol:    "IBM",
		Data:      []record.Record{&record.OrderRecord{Index: 1}},
		Flags:     market.SnapshotBegin | market.SnapshotEnd,
	})

	recent := l.Recent("IBM", 10)
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent entry for IBM, got %d", len(recent))
	}
	if recent[0].RecordCount != 1 {
		t.Fatalf("expected record count 1, got %d", recent[0].RecordCount)
	}
}
