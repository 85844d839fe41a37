// Package venue 将统一的下单请求翻译为各交易所的原生协议。
//
// 每个适配器只负责单次下单尝试的 构造 → 签名 → 发送 → 归一化，
// 不做任何重试；重试与并发策略属于上层执行引擎。
package venue

import (
	"context"

	"github.com/shopspring/decimal"

	"trade-gateway/internal/order"
)

// PlacementRequest 为已完成符号翻译、可直接发往交易所的下单请求。
type PlacementRequest struct {
	// NativeSymbol 为目标交易所的原生交易对符号。
	NativeSymbol string
	Side         order.Side
	Type         order.Type
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	// ClientOrderID 由网关生成，随请求发往交易所，
	// 用于在结果未知时对账，避免重复下单。
	ClientOrderID string
}

// Adapter 抽象单个交易所的下单能力。
// 实现必须可被多个在途请求并发使用；
// 任何失败都以 ExecutionResult 表达，不向上抛出。
type Adapter interface {
	Name() order.Venue
	PlaceOrder(ctx context.Context, req PlacementRequest) order.ExecutionResult
}
