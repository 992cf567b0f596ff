package registry

import (
	"testing"

	"github.com/shopspring/decimal"

	"mdfeed-go/errs"
	"mdfeed-go/eventbus"
	"mdfeed-go/market"
	"mdfeed-go/record"
	"mdfeed-go/snapshot"
)

func newTestRegistry() (*Registry, *eventbus.Local) {
	bus := eventbus.NewLocal()
	return New(bus, nil), bus
}

func sub() eventbus.Subscription {
	return eventbus.Subscription{ID: 1, EventType: 1}
}

func TestCreateRejectsZeroEventType(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.Create(eventbus.Subscription{ID: 1}, market.Order, 7, "IBM", "NTV")
	if !errs.Is(err, errs.InvalidSubscription) {
		t.Fatalf("expected InvalidSubscription, got %v", err)
	}
}

// Scenario 4: duplicate create returns AlreadyExists.
func TestCreateDuplicateReturnsAlreadyExists(t *testing.T) {
	r, _ := newTestRegistry()
	if _, err := r.Create(sub(), market.Order, 7, "IBM", "NTV"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := r.Create(sub(), market.Order, 7, "IBM", "NTV")
	if !errs.Is(err, errs.AlreadyExists) {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
}

func TestCreateAllowsDistinctTuplesSameSubscription(t *testing.T) {
	r, _ := newTestRegistry()
	if _, err := r.Create(sub(), market.Order, 7, "IBM", "NTV"); err != nil {
		t.Fatalf("create IBM: %v", err)
	}
	if _, err := r.Create(sub(), market.Order, 7, "AAPL", "NTV"); err != nil {
		t.Fatalf("create AAPL: %v", err)
	}
}

// P4: close_snapshot(h) followed by any operation on h returns InvalidHandle.
func TestCloseThenAnyOperationReturnsInvalidHandle(t *testing.T) {
	r, _ := newTestRegistry()
	h, err := r.Create(sub(), market.Order, 7, "IBM", "NTV")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Close(h); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(h); !errs.Is(err, errs.InvalidHandle) {
		t.Fatalf("expected InvalidHandle on double close, got %v", err)
	}
	if err := r.AddListener(h, func(snapshot.View, any) {}, nil); !errs.Is(err, errs.InvalidHandle) {
		t.Fatalf("expected InvalidHandle on AddListener, got %v", err)
	}
	if _, err := r.SubscriptionOf(h); !errs.Is(err, errs.InvalidHandle) {
		t.Fatalf("expected InvalidHandle on SubscriptionOf, got %v", err)
	}
	if _, err := r.Status(h); !errs.Is(err, errs.InvalidHandle) {
		t.Fatalf("expected InvalidHandle on Status, got %v", err)
	}
}

func TestAddListenerRejectsNilCallback(t *testing.T) {
	r, _ := newTestRegistry()
	h, _ := r.Create(sub(), market.Order, 7, "IBM", "NTV")
	if err := r.AddListener(h, nil, nil); !errs.Is(err, errs.InvalidListener) {
		t.Fatalf("expected InvalidListener, got %v", err)
	}
}

// Absorb routes a batch to the snapshot whose event-type mask and symbol
// match it, and not to a snapshot with a different symbol.
func TestAbsorbRoutesByEventTypeAndSymbol(t *testing.T) {
	r, bus := newTestRegistry()
	hIBM, _ := r.Create(sub(), market.Order, 7, "IBM", "NTV")
	hAAPL, err := r.Create(eventbus.Subscription{ID: 1, EventType: 1}, market.Order, 7, "AAPL", "NTV")
	if err != nil {
		t.Fatalf("create AAPL: %v", err)
	}

	rec := &record.OrderRecord{Index: 1, Price: decimal.NewFromInt(10), Size: decimal.NewFromInt(1)}
	bus.Publish(sub(), eventbus.Batch{
		EventType: 1,
		Symbol:    "IBM",
		Data:      []record.Record{rec},
		Flags:     market.SnapshotBegin | market.SnapshotEnd,
	})

	st, err := r.Status(hIBM)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st != market.Full {
		t.Fatalf("expected IBM snapshot to be Full, got %v", st)
	}

	recs, err := r.Records(hIBM)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	if st, _ := r.Status(hAAPL); st != market.Unknown {
		t.Fatalf("expected AAPL snapshot to stay Unknown, got %v", st)
	}
}

func TestAbsorbIgnoresNonMatchingEventType(t *testing.T) {
	r, bus := newTestRegistry()
	h, _ := r.Create(eventbus.Subscription{ID: 1, EventType: 2}, market.Order, 7, "IBM", "NTV")

	bus.Publish(eventbus.Subscription{ID: 1, EventType: 2}, eventbus.Batch{
		EventType: 1, // does not overlap mask 2
		Symbol:    "IBM",
		Flags:     market.SnapshotBegin | market.SnapshotEnd,
	})

	st, _ := r.Status(h)
	if st != market.Unknown {
		t.Fatalf("expected Unknown (batch should have been ignored), got %v", st)
	}
}
