package order

import (
	"github.com/shopspring/decimal"
)

// Venue 标识一个受支持的交易所。
type Venue string

const (
	VenueOKX     Venue = "okx"
	VenueBitget  Venue = "bitget"
	VenueBitflex Venue = "bitflex"
)

// Side 表示下单方向。
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Type 表示订单类型。
type Type string

const (
	TypeLimit  Type = "limit"
	TypeMarket Type = "market"
)

// Status 为单次下单尝试的统一结果状态。
type Status string

const (
	// StatusAccepted 表示交易所已接受委托。
	StatusAccepted Status = "accepted"
	// StatusRejected 表示交易所或本地校验明确拒绝了委托。
	StatusRejected Status = "rejected"
	// StatusTransportError 表示网络或序列化层面失败，委托结果未知或未发出。
	StatusTransportError Status = "transport_error"
)

// TradeIntent 描述一笔与交易所无关的交易意图。
type TradeIntent struct {
	Venue       Venue
	Symbol      string
	Side        Side
	Type        Type
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	RepeatCount int
}

// ExecutionResult 为单次下单尝试的统一结果。
type ExecutionResult struct {
	Venue         Venue
	Symbol        string
	Side          Side
	Status        Status
	VenueOrderID  string
	ClientOrderID string
	RawResponse   string
	Err           error
	// OutcomeUnknown 表示请求已发出但结果无法确认，
	// 交易所侧可能已经成交，不允许静默丢弃。
	OutcomeUnknown bool
	IntentIndex    int
	Attempt        int
}

// BatchResult 按提交顺序聚合一个批次内全部尝试的结果。
type BatchResult struct {
	Results []ExecutionResult
}

// Accepted 统计批次中被接受的尝试数。
func (b BatchResult) Accepted() int {
	return b.countStatus(StatusAccepted)
}

// Rejected 统计批次中被拒绝的尝试数。
func (b BatchResult) Rejected() int {
	return b.countStatus(StatusRejected)
}

// TransportErrors 统计批次中传输层失败的尝试数。
func (b BatchResult) TransportErrors() int {
	return b.countStatus(StatusTransportError)
}

func (b BatchResult) countStatus(status Status) int {
	count := 0
	for _, res := range b.Results {
		if res.Status == status {
			count++
		}
	}
	return count
}
