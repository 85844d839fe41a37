package venue

import (
	"context"
	"errors"
	"testing"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"github.com/shopspring/decimal"

	"trade-gateway/internal/order"
)

type mockOKXClient struct {
	calls  []string
	order  ccxt.Order
	err    error
	symbol string
	side   string
	amount float64
	price  float64
}

func (m *mockOKXClient) CreateMarketOrder(symbol string, side string, amount float64, options ...ccxt.CreateMarketOrderOptions) (ccxt.Order, error) {
	m.calls = append(m.calls, "CreateMarketOrder")
	m.symbol, m.side, m.amount = symbol, side, amount
	return m.order, m.err
}

func (m *mockOKXClient) CreateLimitOrder(symbol string, side string, amount float64, price float64, options ...ccxt.CreateLimitOrderOptions) (ccxt.Order, error) {
	m.calls = append(m.calls, "CreateLimitOrder")
	m.symbol, m.side, m.amount, m.price = symbol, side, amount, price
	return m.order, m.err
}

func TestOKXPlaceLimitOrderAccepted(t *testing.T) {
	orderID := "okx-123"
	client := &mockOKXClient{order: ccxt.Order{Id: &orderID}}
	adapter := newOKXWithClient(client, nil)

	req := PlacementRequest{
		NativeSymbol:  "BTC/USDT",
		Side:          order.SideBuy,
		Type:          order.TypeLimit,
		Quantity:      decimal.RequireFromString("1"),
		Price:         decimal.RequireFromString("50000"),
		ClientOrderID: "co-okx-1",
	}
	res := adapter.PlaceOrder(context.Background(), req)

	if res.Status != order.StatusAccepted {
		t.Fatalf("expected accepted, got %s (err=%v)", res.Status, res.Err)
	}
	if res.VenueOrderID != "okx-123" {
		t.Errorf("unexpected venue order id: %q", res.VenueOrderID)
	}
	if len(client.calls) != 1 || client.calls[0] != "CreateLimitOrder" {
		t.Errorf("unexpected calls: %v", client.calls)
	}
	if client.symbol != "BTC/USDT" || client.side != "buy" {
		t.Errorf("unexpected symbol/side: %q/%q", client.symbol, client.side)
	}
	if client.amount != 1 || client.price != 50000 {
		t.Errorf("unexpected amount/price: %v/%v", client.amount, client.price)
	}
}

func TestOKXPlaceMarketOrder(t *testing.T) {
	client := &mockOKXClient{}
	adapter := newOKXWithClient(client, nil)

	req := PlacementRequest{
		NativeSymbol: "ETH/USDT",
		Side:         order.SideSell,
		Type:         order.TypeMarket,
		Quantity:     decimal.RequireFromString("2"),
	}
	res := adapter.PlaceOrder(context.Background(), req)

	if res.Status != order.StatusAccepted {
		t.Fatalf("expected accepted, got %s", res.Status)
	}
	if len(client.calls) != 1 || client.calls[0] != "CreateMarketOrder" {
		t.Errorf("unexpected calls: %v", client.calls)
	}
}

func TestOKXVenueRejection(t *testing.T) {
	client := &mockOKXClient{err: &ccxt.Error{
		Type:    ccxt.InsufficientFundsErrType,
		Message: "insufficient balance",
	}}
	adapter := newOKXWithClient(client, nil)

	req := PlacementRequest{
		NativeSymbol: "BTC/USDT",
		Side:         order.SideBuy,
		Type:         order.TypeLimit,
		Quantity:     decimal.RequireFromString("1"),
		Price:        decimal.RequireFromString("50000"),
	}
	res := adapter.PlaceOrder(context.Background(), req)

	if res.Status != order.StatusRejected {
		t.Fatalf("expected rejected, got %s", res.Status)
	}
	if res.RawResponse != "insufficient balance" {
		t.Errorf("expected library message attached, got %q", res.RawResponse)
	}
}

func TestOKXNetworkErrorIsTransport(t *testing.T) {
	client := &mockOKXClient{err: &ccxt.Error{
		Type:    ccxt.NetworkErrorErrType,
		Message: "connection reset",
	}}
	adapter := newOKXWithClient(client, nil)

	req := PlacementRequest{
		NativeSymbol: "BTC/USDT",
		Side:         order.SideBuy,
		Type:         order.TypeLimit,
		Quantity:     decimal.RequireFromString("1"),
		Price:        decimal.RequireFromString("50000"),
	}
	res := adapter.PlaceOrder(context.Background(), req)

	if res.Status != order.StatusTransportError {
		t.Fatalf("expected transport error, got %s", res.Status)
	}
	if res.OutcomeUnknown {
		t.Error("network error without timeout should not mark outcome unknown")
	}
}

func TestOKXTimeoutMarksOutcomeUnknown(t *testing.T) {
	client := &mockOKXClient{err: &ccxt.Error{
		Type:    ccxt.RequestTimeoutErrType,
		Message: "request timed out",
	}}
	adapter := newOKXWithClient(client, nil)

	req := PlacementRequest{
		NativeSymbol: "BTC/USDT",
		Side:         order.SideBuy,
		Type:         order.TypeLimit,
		Quantity:     decimal.RequireFromString("1"),
		Price:        decimal.RequireFromString("50000"),
	}
	res := adapter.PlaceOrder(context.Background(), req)

	if res.Status != order.StatusTransportError {
		t.Fatalf("expected transport error, got %s", res.Status)
	}
	if !res.OutcomeUnknown {
		t.Error("timeout must mark outcome unknown")
	}
	if !errors.Is(res.Err, order.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", res.Err)
	}
}
