package transport

import (
	"bytes"
	"testing"

	"github.com/coder/websocket"
	"github.com/klauspost/compress/flate"
)

func TestInflateIfCompressedPassesTextFramesThrough(t *testing.T) {
	out, err := inflateIfCompressed(websocket.MessageText, []byte(`{"type":"update"}`))
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if string(out) != `{"type":"update"}` {
		t.Fatalf("expected text frame unchanged, got %q", out)
	}
}

func TestInflateIfCompressedExpandsBinaryFrames(t *testing.T) {
	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.DefaultCompression)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if _, err := w.Write([]byte(`{"type":"snapshot","symbol":"BTC-USD"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out, err := inflateIfCompressed(websocket.MessageBinary, compressed.Bytes())
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if string(out) != `{"type":"snapshot","symbol":"BTC-USD"}` {
		t.Fatalf("unexpected inflated payload: %q", out)
	}
}
