package order

import (
	"errors"
	"fmt"
)

// Normalize 填充意图的缺省字段。
func (t *TradeIntent) Normalize() {
	if t.Type == "" {
		t.Type = TypeLimit
	}
	if t.RepeatCount < 1 {
		t.RepeatCount = 1
	}
}

// Validate 校验意图自身的不变量，不触发任何交易所调用。
func (t TradeIntent) Validate() error {
	if t.Symbol == "" {
		return errors.New("order: 交易对符号不能为空")
	}
	if t.Side != SideBuy && t.Side != SideSell {
		return fmt.Errorf("order: 无效的下单方向 %q", t.Side)
	}
	if t.Type != TypeLimit && t.Type != TypeMarket {
		return fmt.Errorf("order: 无效的订单类型 %q", t.Type)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("order: 下单数量必须为正, got %s", t.Quantity)
	}
	if t.Type == TypeLimit && !t.Price.IsPositive() {
		return fmt.Errorf("order: 限价单价格必须为正, got %s", t.Price)
	}
	if t.Type == TypeMarket && !t.Price.IsZero() {
		return errors.New("order: 市价单不应携带价格")
	}
	return nil
}
