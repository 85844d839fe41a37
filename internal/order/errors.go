package order

import "errors"

var (
	// ErrInvalidSymbolFormat 表示交易对符号不满足目标交易所的格式约定。
	ErrInvalidSymbolFormat = errors.New("order: 交易对符号格式无效")
	// ErrMissingCredential 表示目标交易所缺少必要的 API 凭证。
	ErrMissingCredential = errors.New("order: 缺少交易所凭证")
	// ErrUnsupportedVenue 表示意图指向了未注册的交易所。
	ErrUnsupportedVenue = errors.New("order: 不支持的交易所")
	// ErrTimeout 表示尝试在截止时间内未能完成，委托结果未知。
	ErrTimeout = errors.New("order: 下单超时，委托结果未知")
)
