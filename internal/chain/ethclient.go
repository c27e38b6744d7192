package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/Insula-Crypto/bot/internal/config"
)

// EthClient 在 *ethclient.Client 之上补充回执轮询，实现 Client 接口。
type EthClient struct {
	*ethclient.Client

	pollInterval time.Duration
	logger       *zap.Logger
}

var _ Client = (*EthClient)(nil)

// Dial 连接以太坊节点。
func Dial(ctx context.Context, cfg config.ChainConfig, logger *zap.Logger) (*EthClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rpc, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("连接节点失败: %w", err)
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 4 * time.Second
	}

	return &EthClient{
		Client:       rpc,
		pollInterval: interval,
		logger:       logger,
	}, nil
}

// WaitMined 轮询交易回执直至上链或上下文结束。核心不设超时，调用方通过 ctx 控制。
func (c *EthClient) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.TransactionReceipt(ctx, tx.Hash())
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.logger.Warn("查询交易回执失败", zap.String("tx", tx.Hash().Hex()), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
