package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Caller 提供只读合约调用能力，*ethclient.Client 天然满足。
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Sender 提供交易准备、广播与确认能力。
// 原始的 hash/receipt/error 三事件在这里收敛为一次阻塞的 WaitMined 调用。
type Sender interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Client 聚合核心消费的全部链上能力。
type Client interface {
	Caller
	Sender
}
