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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/quickfixgo/quickfix"
	"github.com/rs/zerolog/log"

	"mdfeed-go/decode"
	"mdfeed-go/eventbus"
)

// FIXDriver implements quickfix.Application, mirroring fixclient.FixApp's
// shape (Config/OnCreate/OnLogon/OnLogout/FromAdmin/ToAdmin/FromApp/ToApp)
// but routed at decoding market-data messages into eventbus.Batch values
// instead of into a TradeStore/database pair — persistence and display are
// this module's concern (audit, cmd/mdfeedcli), not the driver's.
type FIXDriver struct {
	Creds   Credentials
	Decoder *decode.FIXDecoder
	Bus     eventbus.Bus

	sessionID     quickfix.SessionID
	initiator     *quickfix.Initiator
	lastLogonTime time.Time
}

// NewFIXDriver constructs a driver that logs on with creds, decodes
// application messages with decoder, and publishes decoded batches onto
// bus.
func NewFIXDriver(creds Credentials, decoder *decode.FIXDecoder, bus eventbus.Bus) *FIXDriver {
	return &FIXDriver{Creds: creds, Decoder: decoder, Bus: bus}
}

// Start brings up the FIX initiator with session settings parsed from
// standard input, an in-memory message store and a screen log factory
// (quickfix.NewInitiator), generalized
// behind the Driver interface so transport.Driver callers don't need to
// know quickfixgo exists.
func (d *FIXDriver) Start(ctx context.Context) error {
	settings, err := quickfix.ParseSettings(os.Stdin)
	if err != nil {
		return fmt.Errorf("transport: parse FIX settings: %w", err)
	}
	logFactory := quickfix.NewScreenLogFactory()
	initiator, err := quickfix.NewInitiator(d, quickfix.NewMemoryStoreFactory(), settings, logFactory)
	if err != nil {
		return fmt.Errorf("transport: new initiator: %w", err)
	}
	if err := initiator.Start(); err != nil {
		return fmt.Errorf("transport: start initiator: %w", err)
	}
	d.initiator = initiator
	<-ctx.Done()
	return d.Stop()
}

// Stop tears down the FIX session.
func (d *FIXDriver) Stop() error {
	if d.initiator != nil {
		d.initiator.Stop()
	}
	return nil
}

// Subscribe sends a Market Data Request (V) for the given subscription over
// the current session. If req.MdReqID is empty, one is generated so callers
// don't need to manage a request-ID counter of their own.
func (d *FIXDriver) Subscribe(req SubscriptionRequest) error {
	if req.MdReqID == "" {
		req.MdReqID = uuid.NewString()
	}
	msg := buildMarketDataRequest(req, d.Creds.SenderCompID, d.Creds.TargetCompID)
	return quickfix.SendToTarget(msg, d.sessionID)
}

func (d *FIXDriver) OnCreate(sid quickfix.SessionID) {
	d.sessionID = sid
}

func (d *FIXDriver) OnLogon(sid quickfix.SessionID) {
	d.sessionID = sid
	d.lastLogonTime = time.Now()
	log.Info().Stringer("session", sid).Msg("transport: FIX logon")
}

func (d *FIXDriver) OnLogout(sid quickfix.SessionID) {
	log.Warn().Stringer("session", sid).Dur("uptime", time.Since(d.lastLogonTime)).Msg("transport: FIX logout")
}

func (d *FIXDriver) FromAdmin(_ *quickfix.Message, _ quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}

func (d *FIXDriver) ToApp(_ *quickfix.Message, _ quickfix.SessionID) error {
	return nil
}

func (d *FIXDriver) ToAdmin(msg *quickfix.Message, _ quickfix.SessionID) {
	if t, _ := msg.Header.GetString(tagMsgType); t == msgTypeLogon {
		ts := time.Now().UTC().Format(fixTimeFormat)
		buildLogon(&msg.Body, ts, d.Creds)
	}
}

// FromApp routes every incoming application message: market-data
// snapshot/incremental messages are decoded and published, rejects are
// logged, everything else is ignored. Mirrors FixApp.FromApp's routing by
// MsgType string comparison.
func (d *FIXDriver) FromApp(msg *quickfix.Message, _ quickfix.SessionID) quickfix.MessageRejectError {
	t, _ := msg.Header.GetString(tagMsgType)
	switch t {
	case msgTypeMarketDataSnapshot, msgTypeMarketDataIncremental:
		d.handleMarketData(msg)
	case msgTypeMarketDataReject:
		d.handleMarketDataReject(msg)
	default:
		log.Debug().Str("msgType", t).Msg("transport: unrouted application message")
	}
	return nil
}

func (d *FIXDriver) handleMarketData(msg *quickfix.Message) {
	sub, batch, err := d.Decoder.Decode([]byte(msg.String()))
	if err != nil {
		log.Error().Err(err).Msg("transport: decode market data message")
		return
	}
	d.Bus.Publish(sub, batch)
}

func (d *FIXDriver) handleMarketDataReject(msg *quickfix.Message) {
	mdReqID, _ := msg.Body.GetString(tagMdReqID)
	reason, _ := msg.Body.GetString(tagMdReqRejReason)
	log.Warn().Str("mdReqId", mdReqID).Str("reason", reason).Msg("transport: market data request rejected")
}
