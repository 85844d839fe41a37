// Package sign 提供 REST 直连交易所所需的请求签名。
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"trade-gateway/internal/order"
)

// QuerySigner 对 URL 编码后的参数串做 HMAC-SHA256 签名，输出十六进制摘要。
// 参数的顺序与编码由调用方负责：交易所按字节精确校验签名，
// 签名器不会重排或二次编码。
type QuerySigner struct {
	secret []byte
}

// NewQuerySigner 创建签名器，secret 为空时返回 ErrMissingCredential。
func NewQuerySigner(secret string) (*QuerySigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: secret 为空", order.ErrMissingCredential)
	}
	return &QuerySigner{secret: []byte(secret)}, nil
}

// Sign 返回编码后参数串的十六进制 HMAC-SHA256 摘要。
func (s *QuerySigner) Sign(encodedQuery string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encodedQuery))
	return hex.EncodeToString(mac.Sum(nil))
}

// PrehashSigner 实现 Bitget 风格的预哈希签名：
// 对 timestamp + method + path + body 做 HMAC-SHA256 并以 Base64 输出，
// 连同 API Key、时间戳、口令一起放入请求头。
type PrehashSigner struct {
	apiKey     []byte
	secret     []byte
	passphrase []byte
}

// NewPrehashSigner 创建签名器，apiKey 或 secret 为空时返回 ErrMissingCredential。
func NewPrehashSigner(apiKey, secret, passphrase string) (*PrehashSigner, error) {
	if apiKey == "" || secret == "" {
		return nil, fmt.Errorf("%w: apiKey 或 secret 为空", order.ErrMissingCredential)
	}
	return &PrehashSigner{
		apiKey:     []byte(apiKey),
		secret:     []byte(secret),
		passphrase: []byte(passphrase),
	}, nil
}

// Headers 生成一次请求所需的全部认证头。
// 签名覆盖 timestamp + method + path + body，时间戳为毫秒。
func (s *PrehashSigner) Headers(method, path, body string, at time.Time) map[string]string {
	timestamp := strconv.FormatInt(at.UnixMilli(), 10)
	payload := timestamp + method + path + body

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"ACCESS-KEY":        string(s.apiKey),
		"ACCESS-SIGN":       signature,
		"ACCESS-TIMESTAMP":  timestamp,
		"ACCESS-PASSPHRASE": string(s.passphrase),
		"Content-Type":      "application/json",
		"locale":            "en-US",
	}
}
