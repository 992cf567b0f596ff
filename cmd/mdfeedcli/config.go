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

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"mdfeed-go/transport"
)

// config is the command's top-level configuration, loaded from
// mdfeedcli.yaml (or MDFEED_-prefixed environment variables) via viper —
// the fixclient binary this is adapted from read its credentials straight
// from flags/env; viper gives the same env-override behavior plus an
// optional config file, which a long-running feed process benefits from.
type config struct {
	FIX struct {
		Enabled      bool
		SenderCompID string
		TargetCompID string
		APIKey       string
		APISecret    string
		Passphrase   string
		PortfolioID  string
	}
	WS struct {
		Enabled bool
		URL     string
	}
	Audit struct {
		DBPath   string
		RingSize int
	}
}

func loadConfig(path string) (*config, error) {
	v := viper.New()
	v.SetConfigName("mdfeedcli")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("MDFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows, so bind the ones that
	// have no default; e.g. fix.apikey is read from MDFEED_FIX_APIKEY.
	for _, key := range []string{
		"fix.enabled", "fix.sendercompid", "fix.targetcompid", "fix.apikey",
		"fix.apisecret", "fix.passphrase", "fix.portfolioid", "ws.enabled", "ws.url",
	} {
		_ = v.BindEnv(key)
	}

	v.SetDefault("audit.dbpath", "mdfeed-audit.db")
	v.SetDefault("audit.ringsize", 1000)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	var c config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &c, nil
}

func (c *config) credentials() transport.Credentials {
	return transport.Credentials{
		APIKey:       c.FIX.APIKey,
		APISecret:    c.FIX.APISecret,
		Passphrase:   c.FIX.Passphrase,
		SenderCompID: c.FIX.SenderCompID,
		TargetCompID: c.FIX.TargetCompID,
		PortfolioID:  c.FIX.PortfolioID,
	}
}
