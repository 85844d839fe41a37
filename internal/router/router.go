// Package router 负责把交易意图分发给对应的交易所适配器。
package router

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trade-gateway/internal/order"
	"trade-gateway/internal/symbol"
	"trade-gateway/internal/venue"
)

// Router 按交易所标识选择适配器并完成符号翻译。
type Router struct {
	adapters map[order.Venue]venue.Adapter
	logger   *zap.Logger
}

// New 注册一组适配器并创建路由器。
func New(logger *zap.Logger, adapters ...venue.Adapter) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := make(map[order.Venue]venue.Adapter, len(adapters))
	for _, adapter := range adapters {
		registry[adapter.Name()] = adapter
	}

	return &Router{
		adapters: registry,
		logger:   logger,
	}
}

// Supports 报告目标交易所是否已注册。
func (r *Router) Supports(v order.Venue) bool {
	_, ok := r.adapters[v]
	return ok
}

// Route 执行单次下单尝试：选择适配器、翻译符号、转发请求。
// 任何本地失败（未注册交易所、符号格式无效）都以 Rejected 结果返回，
// 不中断批次内后续意图。
func (r *Router) Route(ctx context.Context, intent order.TradeIntent) order.ExecutionResult {
	res := order.ExecutionResult{
		Venue:  intent.Venue,
		Symbol: intent.Symbol,
		Side:   intent.Side,
		Status: order.StatusRejected,
	}

	if err := intent.Validate(); err != nil {
		res.Err = err
		return res
	}

	// 意图未显式指定交易所时，回退到符号尾部的枚举标签。
	target := intent.Venue
	if target == "" {
		inferred, err := symbol.VenueFromSymbol(intent.Symbol)
		if err != nil {
			res.Err = err
			return res
		}
		target = inferred
		res.Venue = target
	}

	adapter, ok := r.adapters[target]
	if !ok {
		res.Err = fmt.Errorf("%w: %q", order.ErrUnsupportedVenue, target)
		r.logger.Warn("意图指向未注册的交易所",
			zap.String("venue", string(target)),
			zap.String("symbol", intent.Symbol),
		)
		return res
	}

	native, err := symbol.Translate(intent.Symbol, target)
	if err != nil {
		res.Err = err
		return res
	}

	return adapter.PlaceOrder(ctx, venue.PlacementRequest{
		NativeSymbol:  native,
		Side:          intent.Side,
		Type:          intent.Type,
		Quantity:      intent.Quantity,
		Price:         intent.Price,
		ClientOrderID: uuid.NewString(),
	})
}
