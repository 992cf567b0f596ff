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

// Command mdfeedcli wires a transport.Driver, decode.Decoder, eventbus.Bus,
// registry.Registry, and audit.Log together end to end and exposes a
// readline REPL over them, adapted from fixclient/repl.go's command-loop
// shape (a readline.PrefixCompleter plus a switch over the first token) —
// trimmed to the market-data commands this module actually has (no
// order/RFQ commands: placing, cancelling, and quoting orders is out of
// scope here).
package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"mdfeed-go/audit"
	"mdfeed-go/decode"
	"mdfeed-go/dispatch"
	"mdfeed-go/eventbus"
	"mdfeed-go/market"
	"mdfeed-go/registry"
	"mdfeed-go/snapshot"
	"mdfeed-go/transport"
)

type app struct {
	cfg      *config
	bus      *eventbus.Local
	reg      *registry.Registry
	disp     *dispatch.Dispatch
	auditLog *audit.Log

	nextReqID int
	handles   map[string]registry.Handle // "symbol:kind" -> handle
}

func main() {
	configPath := flag.String("config", "", "path to mdfeedcli.yaml")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("mdfeedcli: load config")
	}

	auditLog, err := audit.Open(cfg.Audit.DBPath, cfg.Audit.RingSize)
	if err != nil {
		log.Fatal().Err(err).Msg("mdfeedcli: open audit log")
	}
	defer auditLog.Close()

	bus := eventbus.NewLocal()
	reg := registry.New(bus, prometheus.DefaultRegisterer)
	a := &app{
		cfg:      cfg,
		bus:      bus,
		reg:      reg,
		disp:     dispatch.New(reg),
		auditLog: auditLog,
		handles:  make(map[string]registry.Handle),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.startDrivers(ctx)

	a.repl()
}

// startDrivers brings up whichever transport legs config enables, each in
// its own goroutine, both publishing onto the same shared bus.
func (a *app) startDrivers(ctx context.Context) {
	if a.cfg.FIX.Enabled {
		decoder := decode.NewFIXDecoder(int64(market.Order), market.Order.Mask())
		driver := transport.NewFIXDriver(a.cfg.credentials(), decoder, a.bus)
		go func() {
			if err := driver.Start(ctx); err != nil {
				log.Error().Err(err).Msg("mdfeedcli: FIX driver stopped")
			}
		}()
	}
	if a.cfg.WS.Enabled {
		decoder := decode.NewJSONDecoder(int64(market.Quote), market.Quote.Mask())
		driver := transport.NewWSDriver(a.cfg.WS.URL, decoder, a.bus, nil, nil)
		go func() {
			if err := driver.Start(ctx); err != nil {
				log.Error().Err(err).Msg("mdfeedcli: WS driver stopped")
			}
		}()
	}
}

func (a *app) repl() {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("subscribe", readline.PcItem("order"), readline.PcItem("quote")),
		readline.PcItem("unsubscribe"),
		readline.PcItem("status"),
		readline.PcItem("records"),
		readline.PcItem("audit"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mdfeed> ",
		HistoryFile:     "/tmp/mdfeedcli_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mdfeedcli: readline")
	}
	defer rl.Close()

	a.displayHelp()
	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		switch strings.ToLower(parts[0]) {
		case "subscribe":
			a.handleSubscribe(parts)
		case "unsubscribe":
			a.handleUnsubscribe(parts)
		case "status":
			a.handleStatus(parts)
		case "records":
			a.handleRecords(parts)
		case "audit":
			a.handleAudit(parts)
		case "help":
			a.displayHelp()
		case "exit":
			return
		default:
			fmt.Println("Unknown command. Type 'help' for available commands.")
		}
	}
}

func (a *app) displayHelp() {
	fmt.Print(`Commands:
  subscribe <symbol> <order|quote>   - Open a snapshot for symbol/kind
  unsubscribe <symbol> <order|quote> - Close that snapshot
  status <symbol> <order|quote>      - Print current snapshot status
  records <symbol> <order|quote>     - Print current snapshot records
  audit <symbol>                     - Print recent audited batches
  help, exit
`)
}

func kindOf(s string) (market.EventKind, bool) {
	switch strings.ToLower(s) {
	case "order":
		return market.Order, true
	case "quote":
		return market.Quote, true
	default:
		return 0, false
	}
}

func (a *app) handleSubscribe(parts []string) {
	if len(parts) != 3 {
		fmt.Println("usage: subscribe <symbol> <order|quote>")
		return
	}
	symbol, kindStr := parts[1], parts[2]
	kind, ok := kindOf(kindStr)
	if !ok {
		fmt.Printf("unknown kind %q\n", kindStr)
		return
	}

	a.nextReqID++
	sub := eventbus.Subscription{ID: a.nextReqID, EventType: kind.Mask(), Symbol: symbol}
	h, err := a.reg.Create(sub, kind, int64(kind), symbol, "mdfeedcli")
	if err != nil {
		fmt.Printf("subscribe failed: %v\n", err)
		return
	}
	a.reg.AddListener(h, a.onSnapshot, symbol)
	a.handles[symbol+":"+kindStr] = h

	// audit.Log is a second, independent subscriber on the same
	// subscription: every batch that reaches the registry's Absorb also
	// reaches the audited_batches log, with no coupling between the two.
	if err := a.bus.Subscribe(sub, a.auditLog.OnBatch); err != nil {
		fmt.Printf("audit subscribe failed: %v\n", err)
	}
	fmt.Printf("subscribed %s %s\n", symbol, kindStr)
}

func (a *app) onSnapshot(view snapshot.View, ctx any) {
	symbol, _ := ctx.(string)
	fmt.Printf("[%s] snapshot update: %d records, new=%v\n", symbol, view.RecordsCount, view.IsNewSnapshot)
}

func (a *app) handleUnsubscribe(parts []string) {
	if len(parts) != 3 {
		fmt.Println("usage: unsubscribe <symbol> <order|quote>")
		return
	}
	key := parts[1] + ":" + parts[2]
	h, ok := a.handles[key]
	if !ok {
		fmt.Println("no such subscription")
		return
	}
	if err := a.reg.Close(h); err != nil {
		fmt.Printf("unsubscribe failed: %v\n", err)
		return
	}
	delete(a.handles, key)
	fmt.Println("unsubscribed")
}

func (a *app) handleStatus(parts []string) {
	if len(parts) != 3 {
		fmt.Println("usage: status <symbol> <order|quote>")
		return
	}
	h, ok := a.handles[parts[1]+":"+parts[2]]
	if !ok {
		fmt.Println("no such subscription")
		return
	}
	status, err := a.reg.Status(h)
	if err != nil {
		fmt.Printf("status failed: %v\n", err)
		return
	}
	fmt.Println(status.String())
}

func (a *app) handleRecords(parts []string) {
	if len(parts) != 3 {
		fmt.Println("usage: records <symbol> <order|quote>")
		return
	}
	h, ok := a.handles[parts[1]+":"+parts[2]]
	if !ok {
		fmt.Println("no such subscription")
		return
	}
	records, err := a.reg.Records(h)
	if err != nil {
		fmt.Printf("records failed: %v\n", err)
		return
	}
	fmt.Printf("%d records\n", len(records))
	for _, r := range records {
		fmt.Printf("  %+v\n", r)
	}
}

func (a *app) handleAudit(parts []string) {
	if len(parts) != 2 {
		fmt.Println("usage: audit <symbol>")
		return
	}
	entries := a.auditLog.Recent(parts[1], 20)
	for _, e := range entries {
		fmt.Printf("  %s  flags=%s  records=%s\n", e.Time.Format("15:04:05"), strconv.Itoa(e.Flags), strconv.Itoa(e.RecordCount))
	}
}
