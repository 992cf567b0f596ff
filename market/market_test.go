package market

import "testing"

func TestFlagsHas(t *testing.T) {
	f := SnapshotBegin | TxPending
	if !f.Has(SnapshotBegin) {
		t.Fatalf("expected SnapshotBegin bit set")
	}
	if f.Has(SnapshotEnd) {
		t.Fatalf("expected SnapshotEnd bit clear")
	}
}

func TestEventKindMaskIsDistinctPerKind(t *testing.T) {
	seen := make(map[int]EventKind)
	for k := Trade; k <= Series; k++ {
		m := k.Mask()
		if other, ok := seen[m]; ok {
			t.Fatalf("kinds %v and %v share mask %d", k, other, m)
		}
		seen[m] = k
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{Unknown: "Unknown", Begin: "Begin", Full: "Full", Pending: "Pending"}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("status %d: got %q want %q", status, got, want)
		}
	}
}
