package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trade-gateway/internal/config"
	"trade-gateway/internal/order"
	"trade-gateway/internal/sign"
)

const restOrderPath = "/openapi/v1/order"

// REST 直连 Bitflex 风格的自签名交易所：
// 表单编码参数，HMAC 十六进制签名随请求头发送。
type REST struct {
	signer       *sign.QuerySigner
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *zap.Logger
	venue        order.Venue
	baseURL      string
	apiKey       string
	apiKeyHeader string
	now          func() time.Time
}

// NewREST 根据配置构造通用 REST 适配器。
func NewREST(cfg config.BitflexConfig, logger *zap.Logger) (*REST, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: bitflex 需要 api_key", order.ErrMissingCredential)
	}
	signer, err := sign.NewQuerySigner(cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("venue: 初始化 bitflex 签名器失败: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.bitflex.com"
	}
	apiKeyHeader := cfg.APIKeyHeader
	if apiKeyHeader == "" {
		apiKeyHeader = "X-Venue-APIKEY"
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &REST{
		signer:       signer,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      newVenueLimiter(cfg.RateLimit),
		logger:       logger,
		venue:        order.VenueBitflex,
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		apiKeyHeader: apiKeyHeader,
		now:          time.Now,
	}, nil
}

// Name 返回交易所标识。
func (r *REST) Name() order.Venue {
	return r.venue
}

// PlaceOrder 提交单次委托：构造参数 → 签名 → 发送 → 解析。
// 交易所按字节校验签名，签名覆盖与请求体完全一致的编码串。
func (r *REST) PlaceOrder(ctx context.Context, req PlacementRequest) order.ExecutionResult {
	res := order.ExecutionResult{
		Venue:         r.venue,
		Symbol:        req.NativeSymbol,
		Side:          req.Side,
		ClientOrderID: req.ClientOrderID,
	}

	if err := r.limiter.Wait(ctx); err != nil {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("%w: %v", order.ErrTimeout, err)
		return res
	}

	params := url.Values{}
	params.Set("symbol", req.NativeSymbol)
	params.Set("side", strings.ToUpper(string(req.Side)))
	params.Set("type", strings.ToUpper(string(req.Type)))
	params.Set("quantity", req.Quantity.String())
	if req.Type == order.TypeLimit {
		params.Set("price", req.Price.String())
	}
	params.Set("timestamp", strconv.FormatInt(r.now().UnixMilli(), 10))
	if req.ClientOrderID != "" {
		params.Set("newClientOrderId", req.ClientOrderID)
	}

	encoded := params.Encode()
	signature := r.signer.Sign(encoded)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+restOrderPath, strings.NewReader(encoded))
	if err != nil {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("venue: 构造 %s 请求失败: %w", r.venue, err)
		return res
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set(r.apiKeyHeader, r.apiKey)
	httpReq.Header.Set("signature", signature)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		classifyTransportError(err, &res)
		r.logger.Warn("rest 请求发送失败",
			zap.String("venue", string(r.venue)),
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
		res.Err = fmt.Errorf("venue: 读取 %s 响应失败: %w", r.venue, err)
		return res
	}
	res.RawResponse = string(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("venue: %s 返回 HTTP %d", r.venue, resp.StatusCode)
		return res
	}

	// 响应体按宽松方式解析：任何携带 orderId 的 2xx 均视为已接受。
	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		res.Status = order.StatusTransportError
		res.Err = fmt.Errorf("venue: 解析 %s 响应失败: %w", r.venue, err)
		return res
	}

	orderID, ok := parsed["orderId"]
	if !ok || orderID == nil {
		res.Status = order.StatusRejected
		res.Err = fmt.Errorf("venue: %s 响应缺少 orderId", r.venue)
		return res
	}

	res.Status = order.StatusAccepted
	res.VenueOrderID = stringifyOrderID(orderID)
	return res
}

// stringifyOrderID 兼容字符串与数值两种 orderId 表示。
func stringifyOrderID(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
