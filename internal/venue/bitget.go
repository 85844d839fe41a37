package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trade-gateway/internal/config"
	"trade-gateway/internal/order"
	"trade-gateway/internal/sign"
)

const bitgetPlaceOrderPath = "/api/mix/v1/order/placeOrder"

// bitgetOrderRequest 为 Bitget 合约下单的请求体。
// 字段顺序即序列化顺序，签名覆盖序列化后的完整字节串。
type bitgetOrderRequest struct {
	Symbol           string `json:"symbol"`
	MarginCoin       string `json:"marginCoin"`
	Side             string `json:"side"`
	OrderType        string `json:"orderType"`
	Price            string `json:"price,omitempty"`
	Size             string `json:"size"`
	TimeInForceValue string `json:"timeInForceValue"`
	ClientOid        string `json:"clientOid,omitempty"`
}

type bitgetOrderResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		OrderID   string `json:"orderId"`
		ClientOid string `json:"clientOid"`
	} `json:"data"`
}

// Bitget 通过签名 REST 调用 Bitget 合约下单接口。
type Bitget struct {
	signer      *sign.PrehashSigner
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
	baseURL     string
	marginCoin  string
	timeInForce string
	now         func() time.Time
}

// NewBitget 根据配置构造 Bitget 适配器。
func NewBitget(cfg config.BitgetConfig, logger *zap.Logger) (*Bitget, error) {
	signer, err := sign.NewPrehashSigner(cfg.APIKey, cfg.APISecret, cfg.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("venue: 初始化 bitget 签名器失败: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.bitget.com"
	}
	marginCoin := cfg.MarginCoin
	if marginCoin == "" {
		marginCoin = "USDT"
	}
	timeInForce := cfg.TimeInForce
	if timeInForce == "" {
		timeInForce = "normal" // GTC
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Bitget{
		signer:      signer,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     newVenueLimiter(cfg.RateLimit),
		logger:      logger,
		baseURL:     baseURL,
		marginCoin:  marginCoin,
		timeInForce: timeInForce,
		now:         time.Now,
	}, nil
}

// Name 返回交易所标识。
func (b *Bitget) Name() order.Venue {
	return order.VenueBitget
}

// PlaceOrder 提交单次合约委托。
//
// 方向映射为 buy→open_long、sell→close_long，只覆盖纯多头流程；
// 开空/平空不在当前映射范围内。
func (b *Bitget) PlaceOrder(ctx context.Context, req PlacementRequest) order.ExecutionResult {
	res := order.ExecutionResult{
		Venue:         order.VenueBitget,
		Symbol:        req.NativeSymbol,
		Side:          req.Side,
		ClientOrderID: req.ClientOrderID,
	}

	if err := b.limiter.Wait(ctx); err != nil {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("%w: %v", order.ErrTimeout, err)
		return res
	}

	venueSide, err := bitgetSide(req.Side)
	if err != nil {
		res.Status = order.StatusRejected
		res.Err = err
		return res
	}

	body := bitgetOrderRequest{
		Symbol:           req.NativeSymbol,
		MarginCoin:       b.marginCoin,
		Side:             venueSide,
		OrderType:        string(req.Type),
		Size:             req.Quantity.String(),
		TimeInForceValue: b.timeInForce,
		ClientOid:        req.ClientOrderID,
	}
	if req.Type == order.TypeLimit {
		body.Price = req.Price.String()
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("venue: 序列化 bitget 请求失败: %w", err)
		return res
	}

	headers := b.signer.Headers(http.MethodPost, bitgetPlaceOrderPath, string(encoded), b.now())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+bitgetPlaceOrderPath, bytes.NewReader(encoded))
	if err != nil {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("venue: 构造 bitget 请求失败: %w", err)
		return res
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		classifyTransportError(err, &res)
		b.logger.Warn("bitget 请求发送失败",
			zap.String("symbol", req.NativeSymbol),
			zap.Bool("outcome_unknown", res.OutcomeUnknown),
			zap.Error(err),
		)
		return res
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Status = order.StatusTransportError
		res.OutcomeUnknown = true
		res.Err = fmt.Errorf("venue: 读取 bitget 响应失败: %w", err)
		return res
	}
	res.RawResponse = string(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("venue: bitget 返回 HTTP %d", resp.StatusCode)
		return res
	}

	var parsed bitgetOrderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("venue: 解析 bitget 响应失败: %w", err)
		return res
	}

	if parsed.Code != "00000" {
		res.Status = order.StatusRejected
		res.Err = fmt.Errorf("venue: bitget 拒绝委托 code=%s msg=%s", parsed.Code, parsed.Msg)
		return res
	}

	res.Status = order.StatusAccepted
	res.VenueOrderID = parsed.Data.OrderID
	return res
}

func bitgetSide(side order.Side) (string, error) {
	switch side {
	case order.SideBuy:
		return "open_long", nil
	case order.SideSell:
		return "close_long", nil
	default:
		return "", fmt.Errorf("venue: 无效的下单方向 %q", side)
	}
}

func newVenueLimiter(cfg config.RateLimitConfig) *rate.Limiter {
	perSecond := cfg.PerSecond
	if perSecond <= 0 {
		perSecond = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// classifyTransportError 区分请求从未发出与结果未知两种传输失败。
// 超时意味着请求可能已抵达交易所，必须标记结果未知。
func classifyTransportError(err error, res *order.ExecutionResult) {
	res.Status = order.StatusTransportError
	res.Err = err

	if errors.Is(err, context.DeadlineExceeded) {
		res.OutcomeUnknown = true
		res.Err = fmt.Errorf("%w: %v", order.ErrTimeout, err)
		return
	}

	var urlTimeout interface{ Timeout() bool }
	if errors.As(err, &urlTimeout) && urlTimeout.Timeout() {
		res.OutcomeUnknown = true
		res.Err = fmt.Errorf("%w: %v", order.ErrTimeout, err)
	}
}
