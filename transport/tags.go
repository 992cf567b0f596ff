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

import "github.com/quickfixgo/quickfix"

// FIX tags and enumerations this driver needs: session/admin plus
// market-data request/response. Order-entry tags (ClOrdID, OrdType, Side,
// TimeInForce, TargetStrategy, QuoteID, ...) are intentionally not carried
// over from constants/constants.go — order entry is out of scope here (see
// DESIGN.md).
const (
	tagBeginString    = quickfix.Tag(8)
	tagMsgType        = quickfix.Tag(35)
	tagSenderCompID   = quickfix.Tag(49)
	tagSendingTime    = quickfix.Tag(52)
	tagSymbol         = quickfix.Tag(55)
	tagTargetCompID   = quickfix.Tag(56)
	tagHmac           = quickfix.Tag(96)
	tagEncryptMethod  = quickfix.Tag(98)
	tagHeartBtInt     = quickfix.Tag(108)
	tagNoRelatedSym   = quickfix.Tag(146)
	tagText           = quickfix.Tag(58)
	tagPassword       = quickfix.Tag(554)
	tagAccount        = quickfix.Tag(1)

	tagMdReqID                 = quickfix.Tag(262)
	tagSubscriptionRequestType = quickfix.Tag(263)
	tagMarketDepth             = quickfix.Tag(264)
	tagMdUpdateType            = quickfix.Tag(265)
	tagNoMdEntryTypes          = quickfix.Tag(267)
	tagMdEntryType             = quickfix.Tag(269)
	tagMdReqRejReason          = quickfix.Tag(281)

	tagDropCopyFlag = quickfix.Tag(9406)
	tagAccessKey    = quickfix.Tag(9407)
)

const (
	msgTypeLogon                 = "A"
	msgTypeMarketDataRequest     = "V"
	msgTypeMarketDataSnapshot    = "W"
	msgTypeMarketDataIncremental = "X"
	msgTypeMarketDataReject      = "Y"

	fixBeginString    = "FIXT.1.1"
	fixTimeFormat     = "20060102-15:04:05.000"
	encryptMethodNone = "0"
	heartBtInterval   = "30"
	dropCopyFlagYes   = "Y"

	subscriptionRequestTypeSubscribe = "1"
	mdUpdateTypeIncremental          = "1"
)
