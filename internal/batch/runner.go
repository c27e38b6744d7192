package batch

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Insula-Crypto/bot/internal/asset"
	"github.com/Insula-Crypto/bot/internal/executor"
	"github.com/Insula-Crypto/bot/internal/gas"
	"github.com/Insula-Crypto/bot/internal/order"
	"github.com/Insula-Crypto/bot/internal/selector"
	"github.com/Insula-Crypto/bot/internal/strategy"
	"github.com/Insula-Crypto/bot/internal/venue"
)

type bestQuoter interface {
	SelectBest(ctx context.Context, buy, sell asset.Asset, quantity *big.Int) (venue.Quote, venue.Venue, error)
}

type orderExecutor interface {
	Execute(ctx context.Context, order venue.PreparedOrder) (executor.Outcome, error)
}

// Runner 逐笔驱动交易请求走完 选择 → 构单 → 执行 的完整链路。
// 批内严格串行：同一签名账户共享一条 nonce 序列，并发提交会互相冲突。
// 单笔失败只记录计数，绝不中断批处理。
type Runner struct {
	selector bestQuoter
	executor orderExecutor
	policy   strategy.Policy
	slippage decimal.Decimal
	account  common.Address
	logger   *zap.Logger
}

// NewRunner 创建批处理执行器。
func NewRunner(sel bestQuoter, exec orderExecutor, policy strategy.Policy, slippage decimal.Decimal, account common.Address, logger *zap.Logger) *Runner {
	if policy == nil {
		policy = strategy.AlwaysTrade
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		selector: sel,
		executor: exec,
		policy:   policy,
		slippage: slippage,
		account:  account,
		logger:   logger,
	}
}

// Run 按输入顺序处理全部请求并返回汇总结果。
func (r *Runner) Run(ctx context.Context, requests []TradeRequest) Result {
	result := Result{
		Total:    len(requests),
		Outcomes: make([]TradeOutcome, 0, len(requests)),
	}

	for i, request := range requests {
		r.logger.Info("处理交易请求",
			zap.Int("index", i),
			zap.String("buy", request.Buy.Symbol),
			zap.String("sell", request.Sell.Symbol),
			zap.String("quantity", request.Quantity.String()),
		)

		outcome := r.runOne(ctx, request)
		if outcome.Err != nil {
			result.ErrorCount++
			r.logger.Error("交易执行失败",
				zap.Int("index", i),
				zap.String("trade_id", outcome.ID.String()),
				zap.Error(outcome.Err),
			)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if result.Clean() {
		r.logger.Info("交易全部完成，未发生错误", zap.Int("total", result.Total))
	} else {
		r.logger.Warn("批处理存在失败，详情见错误日志文件",
			zap.Int("total", result.Total),
			zap.Int("errors", result.ErrorCount),
		)
	}

	return result
}

func (r *Runner) runOne(ctx context.Context, request TradeRequest) TradeOutcome {
	outcome := TradeOutcome{
		ID:      uuid.New(),
		Request: request,
	}

	quote, winner, err := r.selector.SelectBest(ctx, request.Buy, request.Sell, request.Quantity)
	if err != nil {
		outcome.Err = classify(err)
		return outcome
	}
	outcome.Quote = &quote

	if !r.policy(quote) {
		r.logger.Info("策略判定跳过本笔交易", zap.String("venue", quote.VenueID))
		outcome.Skipped = true
		return outcome
	}

	args, err := order.Build(quote, r.slippage)
	if err != nil {
		outcome.Err = classify(err)
		return outcome
	}

	prepared, err := winner.TakeOrder(ctx, r.account, args)
	if err != nil {
		outcome.Err = classify(err)
		return outcome
	}

	execResult, err := r.executor.Execute(ctx, prepared)
	outcome.Result = execResult
	if err != nil {
		outcome.Err = classify(err)
	}

	return outcome
}

// classify 将已知分类错误原样透传，其余包装为兜底失败。
func classify(err error) error {
	if err == nil {
		return nil
	}

	known := []error{
		venue.ErrInvalidPair,
		venue.ErrVenueUnavailable,
		selector.ErrNoViableQuote,
		gas.ErrOracleUnavailable,
		executor.ErrValidationRejected,
		executor.ErrGasPriceUnavailable,
		executor.ErrPreparationFailed,
		executor.ErrSubmissionFailed,
	}
	for _, candidate := range known {
		if errors.Is(err, candidate) {
			return err
		}
	}

	return fmt.Errorf("%w: %v", ErrUnexpectedFailure, err)
}
