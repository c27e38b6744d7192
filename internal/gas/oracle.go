package gas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Insula-Crypto/bot/internal/config"
)

// ErrOracleUnavailable 表示 gas 价格数据源不可达或返回非法数据。
var ErrOracleUnavailable = errors.New("gas price oracle unavailable")

// stationPayload 为 ethgasstation 风格的响应，价格单位是 0.1 gwei。
type stationPayload struct {
	SafeLow float64 `json:"safeLow"`
	Average float64 `json:"average"`
	Fast    float64 `json:"fast"`
	Fastest float64 `json:"fastest"`
}

// Oracle 查询外部 gas 价格数据源，不做缓存：过期的 gas 数据不可静默复用。
type Oracle struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewOracle 创建 gas 价格查询客户端。
func NewOracle(cfg config.GasOracleConfig, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Oracle{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Fetch 按分位数取一次当前 gas 价格，返回单位为 wei。
// 结果只在获取的瞬间有效，每次提交前都必须重新查询。
func (o *Oracle) Fetch(ctx context.Context, percentile decimal.Decimal) (*big.Int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: 数据源返回状态 %d", ErrOracleUnavailable, resp.StatusCode)
	}

	var payload stationPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: 解码响应失败: %v", ErrOracleUnavailable, err)
	}

	tier := selectTier(payload, percentile)
	if tier <= 0 {
		return nil, fmt.Errorf("%w: 数据源返回非正价格", ErrOracleUnavailable)
	}

	// 0.1 gwei -> wei，即乘以 1e8。
	price := decimal.NewFromFloat(tier).Shift(8).Floor().BigInt()

	o.logger.Debug("已获取 gas 价格",
		zap.String("percentile", percentile.String()),
		zap.String("price_wei", price.String()),
	)

	return price, nil
}

// selectTier 将分位数映射到数据源的四档价格。
func selectTier(payload stationPayload, percentile decimal.Decimal) float64 {
	switch {
	case percentile.LessThanOrEqual(decimal.RequireFromString("0.25")):
		return payload.SafeLow
	case percentile.LessThanOrEqual(decimal.RequireFromString("0.5")):
		return payload.Average
	case percentile.LessThanOrEqual(decimal.RequireFromString("0.75")):
		return payload.Fast
	default:
		return payload.Fastest
	}
}
