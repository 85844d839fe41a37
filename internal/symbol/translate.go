// Package symbol 负责把网关内部的交易对表示翻译为各交易所的原生格式。
// 所有函数均为纯函数，不产生任何 I/O。
package symbol

import (
	"fmt"
	"strings"

	"trade-gateway/internal/order"
)

// 符号尾部的交易所标签采用显式枚举匹配，
// 避免旧版子串匹配在符号恰好包含其他交易所名称时误路由。
var venueTags = map[string]order.Venue{
	"OKX":     order.VenueOKX,
	"Bitget":  order.VenueBitget,
	"Bitflex": order.VenueBitflex,
}

// VenueFromSymbol 解析符号尾部的交易所标签，例如 "BTC-USDT-OKX"。
// 符号未携带标签或标签未知时返回 ErrUnsupportedVenue。
func VenueFromSymbol(raw string) (order.Venue, error) {
	idx := strings.LastIndex(raw, "-")
	if idx < 0 || idx == len(raw)-1 {
		return "", fmt.Errorf("%w: 符号 %q 未携带交易所标签", order.ErrUnsupportedVenue, raw)
	}
	tag := raw[idx+1:]
	venue, ok := venueTags[tag]
	if !ok {
		return "", fmt.Errorf("%w: 未知的交易所标签 %q", order.ErrUnsupportedVenue, tag)
	}
	return venue, nil
}

// Translate 把内部符号翻译为目标交易所的原生符号。
//
// 规则按交易所各不相同：
//   - OKX: "BTC-USDT-OKX" → "BTC/USDT"（前两段以 "/" 连接，丢弃标签）。
//   - Bitget: "BTCUSDT_UMCBL-Bitget" → "BTCUSDT_UMCBL"（取第一个 "-" 之前的部分）。
//   - Bitflex: "BTCUSDT-Bitflex" → "BTCUSDT"（同上）。
//
// 未携带标签的符号视为已是原生格式。格式残缺时返回 ErrInvalidSymbolFormat，
// 翻译器从不猜测。
func Translate(raw string, venue order.Venue) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: 符号为空", order.ErrInvalidSymbolFormat)
	}

	switch venue {
	case order.VenueOKX:
		return translateOKX(raw)
	case order.VenueBitget, order.VenueBitflex:
		return translatePrefix(raw)
	default:
		return "", fmt.Errorf("%w: %q", order.ErrUnsupportedVenue, venue)
	}
}

func translateOKX(raw string) (string, error) {
	// 已是 "BASE/QUOTE" 原生格式时直接透传。
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", fmt.Errorf("%w: %q", order.ErrInvalidSymbolFormat, raw)
		}
		return raw, nil
	}

	parts := strings.Split(raw, "-")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: %q 缺少 BASE-QUOTE 分隔符", order.ErrInvalidSymbolFormat, raw)
	}
	return parts[0] + "/" + parts[1], nil
}

func translatePrefix(raw string) (string, error) {
	native, _, found := strings.Cut(raw, "-")
	if !found {
		// 无标签，整个符号即原生符号。
		native = raw
	}
	if native == "" {
		return "", fmt.Errorf("%w: %q 标签前缀为空", order.ErrInvalidSymbolFormat, raw)
	}
	return native, nil
}
