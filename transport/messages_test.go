package transport

import "testing"

func TestBuildMarketDataRequestSetsSubscriptionFields(t *testing.T) {
	req := SubscriptionRequest{
		MdReqID:                 "req-1",
		Symbols:                 []string{"BTC-USD", "ETH-USD"},
		SubscriptionRequestType: subscriptionRequestTypeSubscribe,
		MarketDepth:             "0",
		MdEntryTypes:            []string{"0", "1"},
	}

	msg := buildMarketDataRequest(req, "SENDER", "TARGET")

	if mt, _ := msg.Header.GetString(tagMsgType); mt != msgTypeMarketDataRequest {
		t.Fatalf("expected MsgType %q, got %q", msgTypeMarketDataRequest, mt)
	}
	if got, _ := msg.Body.GetString(tagMdReqID); got != "req-1" {
		t.Fatalf("expected MdReqID req-1, got %q", got)
	}
	if got, _ := msg.Body.GetString(tagMdUpdateType); got != mdUpdateTypeIncremental {
		t.Fatalf("expected MdUpdateType set for a subscribe request, got %q", got)
	}
}

func TestBuildMarketDataRequestOmitsUpdateTypeForSnapshotOnly(t *testing.T) {
	req := SubscriptionRequest{
		MdReqID:                 "req-2",
		Symbols:                 []string{"BTC-USD"},
		SubscriptionRequestType: "0",
		MarketDepth:             "0",
		MdEntryTypes:            []string{"0"},
	}

	msg := buildMarketDataRequest(req, "SENDER", "TARGET")

	if got, _ := msg.Body.GetString(tagMdUpdateType); got != "" {
		t.Fatalf("expected no MdUpdateType for a snapshot-only request, got %q", got)
	}
}

func TestSignLogonIsDeterministic(t *testing.T) {
	a := signLogon("20260101-00:00:00", msgTypeLogon, "1", "key", "TARGET", "pass", "secret")
	b := signLogon("20260101-00:00:00", msgTypeLogon, "1", "key", "TARGET", "pass", "secret")
	if a != b {
		t.Fatalf("expected identical input to produce identical signature")
	}

	c := signLogon("20260101-00:00:00", msgTypeLogon, "1", "key", "TARGET", "pass", "different-secret")
	if a == c {
		t.Fatalf("expected a different secret to change the signature")
	}
}

func TestBuildLogonPopulatesCredentials(t *testing.T) {
	msg := buildMarketDataRequest(SubscriptionRequest{MdReqID: "x", Symbols: []string{"BTC-USD"}}, "SENDER", "TARGET")
	buildLogon(&msg.Body, "20260101-00:00:00", Credentials{
		APIKey:      "key",
		APISecret:   "secret",
		Passphrase:  "pass",
		PortfolioID: "portfolio-1",
	})

	if got, _ := msg.Body.GetString(tagAccessKey); got != "key" {
		t.Fatalf("expected AccessKey key, got %q", got)
	}
	if got, _ := msg.Body.GetString(tagAccount); got != "portfolio-1" {
		t.Fatalf("expected Account portfolio-1, got %q", got)
	}
	if got, _ := msg.Body.GetString(tagHmac); got == "" {
		t.Fatalf("expected Hmac field to be set")
	}
}
