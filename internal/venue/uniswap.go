package venue

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Insula-Crypto/bot/internal/asset"
	"github.com/Insula-Crypto/bot/internal/chain"
	"github.com/Insula-Crypto/bot/internal/config"
)

const (
	uniswapID = "uniswap"

	uniswapFactoryABIJSON = `[
  {"constant":true,"inputs":[{"name":"token","type":"address"}],"name":"getExchange","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

	uniswapExchangeABIJSON = `[
  {"constant":true,"inputs":[{"name":"eth_sold","type":"uint256"}],"name":"getEthToTokenInputPrice","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[{"name":"tokens_sold","type":"uint256"}],"name":"getTokenToEthInputPrice","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`
)

var (
	uniswapFactoryABI  abi.ABI
	uniswapExchangeABI abi.ABI
)

func init() {
	factory, err := abi.JSON(strings.NewReader(uniswapFactoryABIJSON))
	if err != nil {
		panic(fmt.Sprintf("venue: 解析 uniswap factory ABI 失败: %v", err))
	}
	exchange, err := abi.JSON(strings.NewReader(uniswapExchangeABIJSON))
	if err != nil {
		panic(fmt.Sprintf("venue: 解析 uniswap exchange ABI 失败: %v", err))
	}
	uniswapFactoryABI = factory
	uniswapExchangeABI = exchange
}

// Uniswap 为 AMM 家族场所。每个交易池都是 WETH/token，由非 WETH 一侧定位，
// 询价方向取决于付出的是否为计价资产。
type Uniswap struct {
	client   chain.Client
	signer   chain.Signer
	registry *asset.Registry
	factory  common.Address
	adapter  common.Address
	trading  common.Address
	logger   *zap.Logger
}

var _ Venue = (*Uniswap)(nil)

// NewUniswap 创建 AMM 场所适配器。trading 为基金的下单入口合约。
func NewUniswap(client chain.Client, signer chain.Signer, registry *asset.Registry, cfg config.UniswapConfig, trading common.Address, logger *zap.Logger) *Uniswap {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Uniswap{
		client:   client,
		signer:   signer,
		registry: registry,
		factory:  common.HexToAddress(cfg.FactoryAddress),
		adapter:  common.HexToAddress(cfg.AdapterAddress),
		trading:  trading,
		logger:   logger,
	}
}

// ID 返回场所标识。
func (u *Uniswap) ID() string {
	return uniswapID
}

// Quote 解析交易池地址后按方向询价。方向分发是正确性要求：
// 调错方向会静默返回反向交易对的价格。
func (u *Uniswap) Quote(ctx context.Context, base, quote asset.Asset, baseQuantity *big.Int) (Quote, error) {
	if base.Address == quote.Address {
		return Quote{}, fmt.Errorf("%w: %s/%s", ErrInvalidPair, base.Symbol, quote.Symbol)
	}
	if !u.registry.IsNumeraire(base) && !u.registry.IsNumeraire(quote) {
		return Quote{}, fmt.Errorf("%w: %s/%s 两侧均非计价资产，无单跳路径", ErrInvalidPair, base.Symbol, quote.Symbol)
	}

	exchangeToken := base
	if u.registry.IsNumeraire(base) {
		exchangeToken = quote
	}

	exchangeAddress, err := u.resolveExchange(ctx, exchangeToken)
	if err != nil {
		return Quote{}, err
	}

	method := "getTokenToEthInputPrice"
	if u.registry.IsNumeraire(base) {
		method = "getEthToTokenInputPrice"
	}

	data, err := uniswapExchangeABI.Pack(method, baseQuantity)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: 编码 %s 失败: %v", ErrVenueUnavailable, method, err)
	}

	out, err := u.client.CallContract(ctx, ethereum.CallMsg{To: &exchangeAddress, Data: data}, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: 询价调用失败: %v", ErrVenueUnavailable, err)
	}

	values, err := uniswapExchangeABI.Unpack(method, out)
	if err != nil || len(values) != 1 {
		return Quote{}, fmt.Errorf("%w: 解码询价结果失败: %v", ErrVenueUnavailable, err)
	}

	// AMM 直接返回整数输出数量，无需单位换算。
	sizeInQuote := values[0].(*big.Int)

	return newQuote(uniswapID, base, quote, baseQuantity, sizeInQuote, exchangeAddress)
}

// TakeOrder 构造经由基金 trading 合约的下单交易。
func (u *Uniswap) TakeOrder(ctx context.Context, account common.Address, order OrderArgs) (PreparedOrder, error) {
	data, err := takeOrderData(u.adapter, u.factory, order)
	if err != nil {
		return nil, err
	}

	u.logger.Info("已构造 AMM 订单",
		zap.String("maker_asset", order.MakerAsset.Hex()),
		zap.String("taker_asset", order.TakerAsset.Hex()),
		zap.String("maker_quantity", order.MakerQuantity.String()),
		zap.String("taker_quantity", order.TakerQuantity.String()),
	)

	return newPreparedOrder(u.client, u.signer, account, u.trading, data), nil
}

func (u *Uniswap) resolveExchange(ctx context.Context, token asset.Asset) (common.Address, error) {
	data, err := uniswapFactoryABI.Pack("getExchange", token.Address)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: 编码 getExchange 失败: %v", ErrVenueUnavailable, err)
	}

	out, err := u.client.CallContract(ctx, ethereum.CallMsg{To: &u.factory, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: 查询交易池失败: %v", ErrVenueUnavailable, err)
	}

	values, err := uniswapFactoryABI.Unpack("getExchange", out)
	if err != nil || len(values) != 1 {
		return common.Address{}, fmt.Errorf("%w: 解码交易池地址失败: %v", ErrVenueUnavailable, err)
	}

	exchangeAddress := values[0].(common.Address)
	if exchangeAddress == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s 无对应交易池", ErrInvalidPair, token.Symbol)
	}

	return exchangeAddress, nil
}
