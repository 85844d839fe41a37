package venue

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"trade-gateway/internal/config"
	"trade-gateway/internal/order"
)

func newTestBitget(t *testing.T, baseURL string) *Bitget {
	t.Helper()
	adapter, err := NewBitget(config.BitgetConfig{
		APIKey:     "test-api-key",
		APISecret:  "test-secret",
		Passphrase: "test-pass",
		BaseURL:    baseURL,
		RateLimit:  config.RateLimitConfig{PerSecond: 1000, Burst: 100},
	}, nil)
	if err != nil {
		t.Fatalf("NewBitget returned error: %v", err)
	}
	adapter.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return adapter
}

func TestBitgetPlaceOrderAccepted(t *testing.T) {
	var gotBody []byte
	var gotHeaders http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeaders = r.Header.Clone()
		_, _ = w.Write([]byte(`{"code":"00000","msg":"success","data":{"orderId":"802733391","clientOid":"co-1"}}`))
	}))
	defer srv.Close()

	adapter := newTestBitget(t, srv.URL)
	req := PlacementRequest{
		NativeSymbol:  "BTCUSDT_UMCBL",
		Side:          order.SideBuy,
		Type:          order.TypeLimit,
		Quantity:      decimal.RequireFromString("1"),
		Price:         decimal.RequireFromString("55000"),
		ClientOrderID: "co-1",
	}
	res := adapter.PlaceOrder(context.Background(), req)

	if res.Status != order.StatusAccepted {
		t.Fatalf("expected accepted, got %s (err=%v)", res.Status, res.Err)
	}
	if res.VenueOrderID != "802733391" {
		t.Errorf("unexpected venue order id: %q", res.VenueOrderID)
	}

	for _, header := range []string{"ACCESS-KEY", "ACCESS-SIGN", "ACCESS-TIMESTAMP", "ACCESS-PASSPHRASE"} {
		if gotHeaders.Get(header) == "" {
			t.Errorf("missing auth header %s", header)
		}
	}
	if gotHeaders.Get("ACCESS-TIMESTAMP") != "1700000000000" {
		t.Errorf("unexpected ACCESS-TIMESTAMP: %q", gotHeaders.Get("ACCESS-TIMESTAMP"))
	}

	var sent bitgetOrderRequest
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if sent.Symbol != "BTCUSDT_UMCBL" || sent.MarginCoin != "USDT" {
		t.Errorf("unexpected symbol/marginCoin: %q/%q", sent.Symbol, sent.MarginCoin)
	}
	if sent.Side != "open_long" {
		t.Errorf("expected buy to map to open_long, got %q", sent.Side)
	}
	if sent.OrderType != "limit" || sent.Price != "55000" || sent.Size != "1" {
		t.Errorf("unexpected order fields: %+v", sent)
	}
	if sent.TimeInForceValue != "normal" {
		t.Errorf("unexpected timeInForceValue: %q", sent.TimeInForceValue)
	}
	if sent.ClientOid != "co-1" {
		t.Errorf("unexpected clientOid: %q", sent.ClientOid)
	}
}

func TestBitgetSellMapsToCloseLong(t *testing.T) {
	var sent bitgetOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &sent)
		_, _ = w.Write([]byte(`{"code":"00000","msg":"success","data":{"orderId":"1"}}`))
	}))
	defer srv.Close()

	adapter := newTestBitget(t, srv.URL)
	req := PlacementRequest{
		NativeSymbol: "BTCUSDT_UMCBL",
		Side:         order.SideSell,
		Type:         order.TypeLimit,
		Quantity:     decimal.RequireFromString("2"),
		Price:        decimal.RequireFromString("60000"),
	}
	if res := adapter.PlaceOrder(context.Background(), req); res.Status != order.StatusAccepted {
		t.Fatalf("expected accepted, got %s", res.Status)
	}
	if sent.Side != "close_long" {
		t.Errorf("expected sell to map to close_long, got %q", sent.Side)
	}
}

func TestBitgetPlaceOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"40757","msg":"Order price exceeds limit","data":null}`))
	}))
	defer srv.Close()

	adapter := newTestBitget(t, srv.URL)
	req := PlacementRequest{
		NativeSymbol: "BTCUSDT_UMCBL",
		Side:         order.SideBuy,
		Type:         order.TypeLimit,
		Quantity:     decimal.RequireFromString("1"),
		Price:        decimal.RequireFromString("55000"),
	}
	res := adapter.PlaceOrder(context.Background(), req)

	if res.Status != order.StatusRejected {
		t.Fatalf("expected rejected, got %s", res.Status)
	}
	if res.Err == nil {
		t.Error("expected rejection error detail")
	}
	if res.RawResponse == "" {
		t.Error("expected raw response attached")
	}
}

func TestBitgetPlaceOrderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	adapter := newTestBitget(t, srv.URL)
	req := PlacementRequest{
		NativeSymbol: "BTCUSDT_UMCBL",
		Side:         order.SideBuy,
		Type:         order.TypeLimit,
		Quantity:     decimal.RequireFromString("1"),
		Price:        decimal.RequireFromString("55000"),
	}
	res := adapter.PlaceOrder(context.Background(), req)

	if res.Status != order.StatusTransportError {
		t.Fatalf("expected transport error, got %s", res.Status)
	}
}

func TestBitgetInvalidSide(t *testing.T) {
	adapter := newTestBitget(t, "http://127.0.0.1:0")
	req := PlacementRequest{
		NativeSymbol: "BTCUSDT_UMCBL",
		Side:         order.Side("hold"),
		Type:         order.TypeLimit,
		Quantity:     decimal.RequireFromString("1"),
		Price:        decimal.RequireFromString("55000"),
	}
	if res := adapter.PlaceOrder(context.Background(), req); res.Status != order.StatusRejected {
		t.Fatalf("expected rejected for invalid side, got %s", res.Status)
	}
}
