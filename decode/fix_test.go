package decode

import (
	"testing"

	"mdfeed-go/market"
	"mdfeed-go/record"
)

func fixMsg(fields ...string) []byte {
	out := ""
	for _, f := range fields {
		out += f + "\x01"
	}
	return []byte(out)
}

func TestFIXDecoderFullRefresh(t *testing.T) {
	d := NewFIXDecoder(7, market.Order.Mask())
	frame := fixMsg(
		"35=W", "55=IBM", "262=req1", "268=2",
		"269=0", "278=1", "270=99.00", "271=2",
		"269=1", "278=2", "270=100.00", "271=5",
	)

	sub, batch, err := d.Decode(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if batch.Symbol != "IBM" {
		t.Fatalf("expected symbol IBM, got %q", batch.Symbol)
	}
	if !batch.Flags.Has(market.SnapshotBegin) || !batch.Flags.Has(market.SnapshotEnd) {
		t.Fatalf("expected SNAPSHOT_BEGIN|SNAPSHOT_END for full refresh, got %v", batch.Flags)
	}
	if len(batch.Data) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(batch.Data))
	}
	first := batch.Data[0].(*record.OrderRecord)
	if first.Index != 1 {
		t.Fatalf("expected first entry index 1, got %d", first.Index)
	}
	if sub.EventType != market.Order.Mask() {
		t.Fatalf("expected subscription event type %d, got %d", market.Order.Mask(), sub.EventType)
	}
}

func TestFIXDecoderIncrementalCarriesNoTransactionFlags(t *testing.T) {
	d := NewFIXDecoder(7, market.Order.Mask())
	frame := fixMsg("35=X", "55=IBM", "262=req1", "269=2", "278=1", "279=2")

	_, batch, err := d.Decode(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if batch.Flags != 0 {
		t.Fatalf("expected zero flags for incremental refresh, got %v", batch.Flags)
	}
	rec := batch.Data[0].(*record.OrderRecord)
	if !rec.Removed {
		t.Fatalf("expected MDUpdateAction=2 to mark the record removed")
	}
}

func TestFIXDecoderRejectsMissingSymbol(t *testing.T) {
	d := NewFIXDecoder(7, market.Order.Mask())
	frame := fixMsg("35=W", "262=req1")
	if _, _, err := d.Decode(frame); err == nil {
		t.Fatalf("expected error for missing symbol")
	}
}
