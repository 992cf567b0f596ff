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

package transport

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/coder/websocket"
	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"mdfeed-go/decode"
	"mdfeed-go/eventbus"
)

// WSDriver is the second TransportDriver leg (spec.md §6): a reconnecting
// WebSocket client that decodes JSON quote frames with decode.JSONDecoder
// and publishes them onto an eventbus.Bus. It has no teacher counterpart —
// fixclient only ever speaks FIX — so its shape is adapted from FIXDriver
// (Start/Stop over a context, decode-then-publish). The read loop decodes
// and publishes each frame synchronously; there is no buffering between
// reading a frame and publishing it.
type WSDriver struct {
	URL      string
	Decoder  *decode.JSONDecoder
	Bus      eventbus.Bus
	Limiter  *rate.Limiter
	Backoff  backoff.BackOff

	conn   *websocket.Conn
	cancel context.CancelFunc
}

// NewWSDriver constructs a driver dialing url, decoding with decoder, and
// publishing onto bus. limiter bounds the inbound message rate (nil
// disables limiting); the reconnect backoff defaults to backoff's
// exponential policy if bo is nil.
func NewWSDriver(url string, decoder *decode.JSONDecoder, bus eventbus.Bus, limiter *rate.Limiter, bo backoff.BackOff) *WSDriver {
	if bo == nil {
		bo = backoff.NewExponentialBackOff()
	}
	return &WSDriver{URL: url, Decoder: decoder, Bus: bus, Limiter: limiter, Backoff: bo}
}

// Start dials and reads until ctx is cancelled, reconnecting with backoff
// whenever the connection drops. runOnce only returns on a connection
// error, so wrapping it in backoff.Retry turns "dial, read until drop" into
// "dial, read, wait, redial" with no hand-rolled retry bookkeeping — the
// single entry point backoff/v5 is built around.
func (d *WSDriver) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	_, err := backoff.Retry(runCtx, func() (struct{}, error) {
		runErr := d.runOnce(runCtx)
		if runErr != nil {
			log.Warn().Err(runErr).Msg("transport: ws connection dropped, reconnecting")
		}
		return struct{}{}, runErr
	}, backoff.WithBackOff(d.Backoff), backoff.WithMaxElapsedTime(0))

	if runCtx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("transport: ws reconnect exhausted: %w", err)
	}
	return nil
}

// Stop cancels the active read loop and closes the socket.
func (d *WSDriver) Stop() error {
	if d.cancel != nil {
		d.cancel()
	}
	if d.conn != nil {
		return d.conn.Close(websocket.StatusNormalClosure, "driver stopped")
	}
	return nil
}

func (d *WSDriver) runOnce(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, d.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	d.conn = conn
	defer conn.CloseNow()

	for {
		if d.Limiter != nil {
			if err := d.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		frame, err := inflateIfCompressed(msgType, data)
		if err != nil {
			log.Error().Err(err).Msg("transport: decompress ws frame")
			continue
		}

		sub, batch, err := d.Decoder.Decode(frame)
		if err != nil {
			log.Error().Err(err).Msg("transport: decode ws frame")
			continue
		}
		d.Bus.Publish(sub, batch)
	}
}

// inflateIfCompressed expands DEFLATE-compressed binary frames. JSON text
// frames pass through unchanged; klauspost/compress's flate reader replaces
// the standard library's for the speed the hot read loop needs.
func inflateIfCompressed(msgType websocket.MessageType, data []byte) ([]byte, error) {
	if msgType == websocket.MessageText {
		return data, nil
	}
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return out.Bytes(), nil
}
