package venue

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"

	"github.com/Insula-Crypto/bot/internal/asset"
	"github.com/Insula-Crypto/bot/internal/chain"
	"github.com/Insula-Crypto/bot/internal/config"
)

const (
	kyberID = "kyber"

	kyberProxyABIJSON = `[
  {"constant":true,"inputs":[
    {"name":"src","type":"address"},
    {"name":"dest","type":"address"},
    {"name":"srcQty","type":"uint256"}
  ],"name":"getExpectedRate","outputs":[
    {"name":"expectedRate","type":"uint256"},
    {"name":"slippageRate","type":"uint256"}
  ],"stateMutability":"view","type":"function"}
]`
)

var kyberProxyABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(kyberProxyABIJSON))
	if err != nil {
		panic(fmt.Sprintf("venue: 解析 kyber proxy ABI 失败: %v", err))
	}
	kyberProxyABI = parsed
}

// Kyber 为聚合器家族场所。单个方向无关的询价入口，
// 返回的是按 1e18 缩放的兑换率而非直接的输出数量。
type Kyber struct {
	client  chain.Client
	signer  chain.Signer
	proxy   common.Address
	adapter common.Address
	trading common.Address
	logger  *zap.Logger
}

var _ Venue = (*Kyber)(nil)

// NewKyber 创建聚合器场所适配器。
func NewKyber(client chain.Client, signer chain.Signer, cfg config.KyberConfig, trading common.Address, logger *zap.Logger) *Kyber {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Kyber{
		client:  client,
		signer:  signer,
		proxy:   common.HexToAddress(cfg.ProxyAddress),
		adapter: common.HexToAddress(cfg.AdapterAddress),
		trading: trading,
		logger:  logger,
	}
}

// ID 返回场所标识。
func (k *Kyber) ID() string {
	return kyberID
}

// Quote 调用方向无关的 getExpectedRate。兑换率需要显式乘以输入数量并
// 除以 1e18 才是输出数量，这一步换算与 AMM 的直接数量输出不同。
func (k *Kyber) Quote(ctx context.Context, base, quote asset.Asset, baseQuantity *big.Int) (Quote, error) {
	if base.Address == quote.Address {
		return Quote{}, fmt.Errorf("%w: %s/%s", ErrInvalidPair, base.Symbol, quote.Symbol)
	}

	data, err := kyberProxyABI.Pack("getExpectedRate", base.Address, quote.Address, baseQuantity)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: 编码 getExpectedRate 失败: %v", ErrVenueUnavailable, err)
	}

	out, err := k.client.CallContract(ctx, ethereum.CallMsg{To: &k.proxy, Data: data}, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: 询价调用失败: %v", ErrVenueUnavailable, err)
	}

	values, err := kyberProxyABI.Unpack("getExpectedRate", out)
	if err != nil || len(values) != 2 {
		return Quote{}, fmt.Errorf("%w: 解码兑换率失败: %v", ErrVenueUnavailable, err)
	}

	expectedRate := values[0].(*big.Int)
	if expectedRate.Sign() <= 0 {
		return Quote{}, fmt.Errorf("%w: %s/%s 无可用报价", ErrInvalidPair, base.Symbol, quote.Symbol)
	}

	// sizeInQuote = rate × qty / 1e18，整数除法即向下取整。
	sizeInQuote := new(big.Int).Mul(expectedRate, baseQuantity)
	sizeInQuote.Div(sizeInQuote, big.NewInt(params.Ether))

	return newQuote(kyberID, base, quote, baseQuantity, sizeInQuote, k.proxy)
}

// TakeOrder 构造经由基金 trading 合约的下单交易。
func (k *Kyber) TakeOrder(ctx context.Context, account common.Address, order OrderArgs) (PreparedOrder, error) {
	data, err := takeOrderData(k.adapter, k.proxy, order)
	if err != nil {
		return nil, err
	}

	k.logger.Info("已构造聚合器订单",
		zap.String("maker_asset", order.MakerAsset.Hex()),
		zap.String("taker_asset", order.TakerAsset.Hex()),
		zap.String("maker_quantity", order.MakerQuantity.String()),
		zap.String("taker_quantity", order.TakerQuantity.String()),
	)

	return newPreparedOrder(k.client, k.signer, account, k.trading, data), nil
}
