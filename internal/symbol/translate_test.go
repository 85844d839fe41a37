package symbol

import (
	"errors"
	"testing"

	"trade-gateway/internal/order"
)

func TestTranslateOKX(t *testing.T) {
	cases := map[string]string{
		"BTC-USDT-OKX": "BTC/USDT",
		"ETH-USDC-OKX": "ETH/USDC",
		"BTC-USDT":     "BTC/USDT",
		"BTC/USDT":     "BTC/USDT",
	}
	for input, want := range cases {
		got, err := Translate(input, order.VenueOKX)
		if err != nil {
			t.Errorf("Translate(%q) returned error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("Translate(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTranslatePrefixVenues(t *testing.T) {
	cases := []struct {
		input string
		venue order.Venue
		want  string
	}{
		{"BTCUSDT_UMCBL-Bitget", order.VenueBitget, "BTCUSDT_UMCBL"},
		{"ETHUSDT_UMCBL-Bitget", order.VenueBitget, "ETHUSDT_UMCBL"},
		{"BTCUSDT-Bitflex", order.VenueBitflex, "BTCUSDT"},
		{"BTCUSDT", order.VenueBitflex, "BTCUSDT"},
	}
	for _, tc := range cases {
		got, err := Translate(tc.input, tc.venue)
		if err != nil {
			t.Errorf("Translate(%q, %s) returned error: %v", tc.input, tc.venue, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Translate(%q, %s) = %q, want %q", tc.input, tc.venue, got, tc.want)
		}
	}
}

func TestTranslateMalformed(t *testing.T) {
	cases := []struct {
		input string
		venue order.Venue
	}{
		{"", order.VenueOKX},
		{"BTCUSDT", order.VenueOKX},
		{"-USDT-OKX", order.VenueOKX},
		{"BTC--OKX", order.VenueOKX},
		{"/USDT", order.VenueOKX},
		{"", order.VenueBitget},
		{"-Bitget", order.VenueBitget},
		{"-Bitflex", order.VenueBitflex},
	}
	for _, tc := range cases {
		if _, err := Translate(tc.input, tc.venue); !errors.Is(err, order.ErrInvalidSymbolFormat) {
			t.Errorf("Translate(%q, %s) = %v, want ErrInvalidSymbolFormat", tc.input, tc.venue, err)
		}
	}
}

func TestTranslateUnsupportedVenue(t *testing.T) {
	if _, err := Translate("BTC-USDT", order.Venue("kraken")); !errors.Is(err, order.ErrUnsupportedVenue) {
		t.Fatalf("expected ErrUnsupportedVenue, got %v", err)
	}
}

func TestVenueFromSymbol(t *testing.T) {
	cases := map[string]order.Venue{
		"BTC-USDT-OKX":         order.VenueOKX,
		"BTCUSDT_UMCBL-Bitget": order.VenueBitget,
		"BTCUSDT-Bitflex":      order.VenueBitflex,
	}
	for input, want := range cases {
		got, err := VenueFromSymbol(input)
		if err != nil {
			t.Errorf("VenueFromSymbol(%q) returned error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("VenueFromSymbol(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestVenueFromSymbolUnknownTag(t *testing.T) {
	// 子串包含交易所名称不应触发匹配，标签必须位于尾段。
	for _, input := range []string{"BTCUSDT", "OKXBTC-USDT", "BTC-USDT-Kraken", "BTC-USDT-"} {
		if _, err := VenueFromSymbol(input); !errors.Is(err, order.ErrUnsupportedVenue) {
			t.Errorf("VenueFromSymbol(%q) = %v, want ErrUnsupportedVenue", input, err)
		}
	}
}
