package venue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"trade-gateway/internal/config"
	"trade-gateway/internal/order"
)

type okxOrderClient interface {
	CreateMarketOrder(symbol string, side string, amount float64, options ...ccxt.CreateMarketOrderOptions) (ccxt.Order, error)
	CreateLimitOrder(symbol string, side string, amount float64, price float64, options ...ccxt.CreateLimitOrderOptions) (ccxt.Order, error)
}

// OKX 通过 ccxt 库下单，限频由库内部处理。
type OKX struct {
	client okxOrderClient
	logger *zap.Logger
}

// NewOKX 根据配置构造 OKX 适配器。
func NewOKX(cfg config.OKXConfig, logger *zap.Logger) (*OKX, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" || cfg.Passphrase == "" {
		return nil, fmt.Errorf("%w: okx 需要 api_key、api_secret 与 passphrase", order.ErrMissingCredential)
	}

	userConfig := map[string]interface{}{
		"apiKey":          cfg.APIKey,
		"secret":          cfg.APISecret,
		"password":        cfg.Passphrase,
		"enableRateLimit": true,
	}

	ex := ccxt.NewOkx(userConfig)
	if cfg.UseSandbox {
		ex.SetSandboxMode(true)
	}

	return newOKXWithClient(ex, logger), nil
}

func newOKXWithClient(client okxOrderClient, logger *zap.Logger) *OKX {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OKX{
		client: client,
		logger: logger,
	}
}

// Name 返回交易所标识。
func (o *OKX) Name() order.Venue {
	return order.VenueOKX
}

// PlaceOrder 提交单次委托。方向与类型词汇与 ccxt 一致，无需映射。
func (o *OKX) PlaceOrder(ctx context.Context, req PlacementRequest) order.ExecutionResult {
	res := order.ExecutionResult{
		Venue:         order.VenueOKX,
		Symbol:        req.NativeSymbol,
		Side:          req.Side,
		ClientOrderID: req.ClientOrderID,
	}

	if err := ctx.Err(); err != nil {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("%w: %v", order.ErrTimeout, err)
		return res
	}

	params := map[string]interface{}{}
	if req.ClientOrderID != "" {
		params["clientOrderId"] = req.ClientOrderID
	}

	var (
		placed ccxt.Order
		err    error
	)
	switch req.Type {
	case order.TypeMarket:
		placed, err = o.client.CreateMarketOrder(
			req.NativeSymbol,
			string(req.Side),
			req.Quantity.InexactFloat64(),
			ccxt.WithCreateMarketOrderParams(params),
		)
	case order.TypeLimit:
		placed, err = o.client.CreateLimitOrder(
			req.NativeSymbol,
			string(req.Side),
			req.Quantity.InexactFloat64(),
			req.Price.InexactFloat64(),
			ccxt.WithCreateLimitOrderParams(params),
		)
	default:
		res.Status = order.StatusRejected
		res.Err = fmt.Errorf("venue: 不支持的订单类型 %q", req.Type)
		return res
	}

	if err != nil {
		o.classify(err, &res)
		o.logger.Warn("okx 下单失败",
			zap.String("symbol", req.NativeSymbol),
			zap.String("status", string(res.Status)),
			zap.Error(err),
		)
		return res
	}

	res.Status = order.StatusAccepted
	if placed.Id != nil {
		res.VenueOrderID = *placed.Id
	}
	return res
}

// classify 把 ccxt 错误归一化为统一结果状态。
// 网络类错误视为传输失败，超时额外标记结果未知；
// 其余交易所错误视为明确拒绝。
func (o *OKX) classify(err error, res *order.ExecutionResult) {
	res.Err = err

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		res.Status = order.StatusTransportError
		res.OutcomeUnknown = true
		res.Err = fmt.Errorf("%w: %v", order.ErrTimeout, err)
		return
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.RequestTimeoutErrType:
			res.Status = order.StatusTransportError
			res.OutcomeUnknown = true
			res.Err = fmt.Errorf("%w: %s", order.ErrTimeout, strings.TrimSpace(ccxtErr.Message))
		case ccxt.NetworkErrorErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			res.Status = order.StatusTransportError
		default:
			res.Status = order.StatusRejected
			res.RawResponse = ccxtErr.Message
		}
		return
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		res.Status = order.StatusTransportError
		if netErr.Timeout() {
			res.OutcomeUnknown = true
			res.Err = fmt.Errorf("%w: %v", order.ErrTimeout, err)
		}
		return
	}

	res.Status = order.StatusTransportError
}
