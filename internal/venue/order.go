package venue

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Insula-Crypto/bot/internal/chain"
)

const tradingABIJSON = `[
  {"inputs":[
    {"name":"adapter","type":"address"},
    {"name":"targetExchange","type":"address"},
    {"name":"makerAsset","type":"address"},
    {"name":"takerAsset","type":"address"},
    {"name":"makerQuantity","type":"uint256"},
    {"name":"takerQuantity","type":"uint256"}
  ],"name":"takeOrder","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

var tradingABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(tradingABIJSON))
	if err != nil {
		panic(fmt.Sprintf("venue: 解析 trading ABI 失败: %v", err))
	}
	tradingABI = parsed
}

// takeOrderData 编码基金 trading 合约的下单调用。
func takeOrderData(adapter, targetExchange common.Address, order OrderArgs) ([]byte, error) {
	data, err := tradingABI.Pack("takeOrder",
		adapter,
		targetExchange,
		order.MakerAsset,
		order.TakerAsset,
		order.MakerQuantity,
		order.TakerQuantity,
	)
	if err != nil {
		return nil, fmt.Errorf("编码 takeOrder 失败: %w", err)
	}
	return data, nil
}

// preparedOrder 是两个场所家族共用的预备交易实现，
// 生命周期（校验、准备、发送）完全由执行器驱动。
type preparedOrder struct {
	client chain.Client
	signer chain.Signer
	from   common.Address
	to     common.Address
	data   []byte
}

func newPreparedOrder(client chain.Client, signer chain.Signer, from, to common.Address, data []byte) *preparedOrder {
	return &preparedOrder{
		client: client,
		signer: signer,
		from:   from,
		to:     to,
		data:   data,
	}
}

// Validate 以 eth_call 模拟执行，场所侧校验失败会在此回滚。
func (p *preparedOrder) Validate(ctx context.Context) error {
	_, err := p.client.CallContract(ctx, ethereum.CallMsg{
		From: p.from,
		To:   &p.to,
		Data: p.data,
	}, nil)
	if err != nil {
		return fmt.Errorf("场所校验拒绝订单: %w", err)
	}
	return nil
}

// Prepare 在给定 gas 价格的基础上补全 gas 上限估算与账户 nonce。
func (p *preparedOrder) Prepare(ctx context.Context, opts TxOptions) (TxOptions, error) {
	if opts.GasPrice == nil || opts.GasPrice.Sign() <= 0 {
		return TxOptions{}, fmt.Errorf("gas 价格缺失，无法准备交易")
	}

	gasLimit, err := p.client.EstimateGas(ctx, ethereum.CallMsg{
		From:     p.from,
		To:       &p.to,
		GasPrice: opts.GasPrice,
		Data:     p.data,
	})
	if err != nil {
		return TxOptions{}, fmt.Errorf("估算 gas 失败: %w", err)
	}

	nonce, err := p.client.PendingNonceAt(ctx, p.from)
	if err != nil {
		return TxOptions{}, fmt.Errorf("查询 nonce 失败: %w", err)
	}

	opts.GasLimit = gasLimit
	opts.Nonce = nonce
	return opts, nil
}

// Send 签名并广播交易，返回已提交的交易句柄。
func (p *preparedOrder) Send(ctx context.Context, opts TxOptions) (*types.Transaction, error) {
	tx := types.NewTransaction(opts.Nonce, p.to, big.NewInt(0), opts.GasLimit, opts.GasPrice, p.data)

	signed, err := p.signer.SignTx(tx)
	if err != nil {
		return nil, err
	}

	if err := p.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("广播交易失败: %w", err)
	}

	return signed, nil
}
