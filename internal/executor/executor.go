package executor

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Insula-Crypto/bot/internal/venue"
)

type priceSource interface {
	Fetch(ctx context.Context, percentile decimal.Decimal) (*big.Int, error)
}

type confirmer interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Executor 驱动单笔订单的提交生命周期：
// Built → Validated → Priced → Prepared → Submitted → {Confirmed | Failed}。
// 任何终态失败原样上报，链上交易重复提交有双花语义，重试策略留给调用方。
type Executor struct {
	oracle         priceSource
	confirmer      confirmer
	percentile     decimal.Decimal
	confirmTimeout time.Duration
	logger         *zap.Logger
}

// NewExecutor 创建交易执行器。confirmTimeout 为 0 表示无限等待确认。
func NewExecutor(oracle priceSource, confirmer confirmer, percentile decimal.Decimal, confirmTimeout time.Duration, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		oracle:         oracle,
		confirmer:      confirmer,
		percentile:     percentile,
		confirmTimeout: confirmTimeout,
		logger:         logger,
	}
}

// Execute 将预备订单驱动到确认或终态失败。
func (e *Executor) Execute(ctx context.Context, order venue.PreparedOrder) (Outcome, error) {
	state := StateBuilt

	e.logger.Info("校验订单", zap.String("state", state.String()))
	if err := order.Validate(ctx); err != nil {
		return Outcome{State: StateFailed}, fmt.Errorf("%w: %v", ErrValidationRejected, err)
	}
	state = StateValidated

	e.logger.Info("获取当前 gas 价格", zap.String("state", state.String()))
	gasPrice, err := e.oracle.Fetch(ctx, e.percentile)
	if err != nil {
		return Outcome{State: StateFailed}, fmt.Errorf("%w: %v", ErrGasPriceUnavailable, err)
	}
	state = StatePriced

	e.logger.Info("估算交易 gas 开销",
		zap.String("state", state.String()),
		zap.String("gas_price", gasPrice.String()),
	)
	opts, err := order.Prepare(ctx, venue.TxOptions{GasPrice: gasPrice})
	if err != nil {
		return Outcome{State: StateFailed}, fmt.Errorf("%w: %v", ErrPreparationFailed, err)
	}
	state = StatePrepared

	e.logger.Info("发送交易",
		zap.String("state", state.String()),
		zap.Uint64("gas_limit", opts.GasLimit),
		zap.Uint64("nonce", opts.Nonce),
	)
	tx, err := order.Send(ctx, opts)
	if err != nil {
		return Outcome{State: StateFailed}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	state = StateSubmitted

	e.logger.Info("交易待确认",
		zap.String("state", state.String()),
		zap.String("url", fmt.Sprintf("https://etherscan.io/tx/%s", tx.Hash().Hex())),
	)

	waitCtx := ctx
	if e.confirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, e.confirmTimeout)
		defer cancel()
	}

	receipt, err := e.confirmer.WaitMined(waitCtx, tx)
	if err != nil {
		return Outcome{State: StateFailed, TxHash: tx.Hash()}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return Outcome{State: StateFailed, TxHash: tx.Hash()}, fmt.Errorf("%w: 交易上链后回滚", ErrSubmissionFailed)
	}

	e.logger.Info("交易已确认",
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("gas_used", receipt.GasUsed),
	)

	return Outcome{
		State:   StateConfirmed,
		TxHash:  tx.Hash(),
		GasUsed: receipt.GasUsed,
		Receipt: receipt,
	}, nil
}
