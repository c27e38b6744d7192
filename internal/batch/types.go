package batch

import (
	"errors"
	"math/big"

	"github.com/google/uuid"

	"github.com/Insula-Crypto/bot/internal/asset"
	"github.com/Insula-Crypto/bot/internal/executor"
	"github.com/Insula-Crypto/bot/internal/venue"
)

// ErrUnexpectedFailure 兜底未分类的失败，必须携带底层原因以便诊断。
var ErrUnexpectedFailure = errors.New("unexpected failure")

// TradeRequest 描述一笔期望的交易。Quantity 以卖出资产的链上最小单位计，
// 由调用方在进入核心前完成换算。
type TradeRequest struct {
	Buy      asset.Asset
	Sell     asset.Asset
	Quantity *big.Int
}

// TradeOutcome 为单笔交易的归档结果，失败原因可归属到具体请求。
type TradeOutcome struct {
	ID      uuid.UUID
	Request TradeRequest
	Quote   *venue.Quote
	Skipped bool
	Result  executor.Outcome
	Err     error
}

// Result 汇总一次批处理的执行情况，仅存活于单次运行。
type Result struct {
	Total      int
	ErrorCount int
	Outcomes   []TradeOutcome
}

// Clean 表示本次批处理没有任何失败。
func (r Result) Clean() bool {
	return r.ErrorCount == 0
}
