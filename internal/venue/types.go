package venue

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/Insula-Crypto/bot/internal/asset"
)

// Quote 为一次询价的归一化结果。SizeInBase/SizeInQuote 是精确的链上整数数量，
// 价格用高精度小数表示，禁止浮点。报价随区块变化，逐笔新取、从不缓存。
type Quote struct {
	VenueID      string
	BaseAsset    asset.Asset
	QuoteAsset   asset.Asset
	PriceInBase  decimal.Decimal
	PriceInQuote decimal.Decimal
	SizeInBase   *big.Int
	SizeInQuote  *big.Int
	VenueAddress common.Address
}

// OrderArgs 为场所下单参数。maker 是基金收到的资产，taker 是基金付出的资产。
// 两个数量必须源自同一份 Quote，不允许事后重新询价计算。
type OrderArgs struct {
	MakerAsset    common.Address
	TakerAsset    common.Address
	MakerQuantity *big.Int
	TakerQuantity *big.Int
}

// TxOptions 为一次链上提交的交易参数。
type TxOptions struct {
	GasPrice *big.Int
	GasLimit uint64
	Nonce    uint64
}

// Quoter 抽象异构场所的询价接口。base 是付出的资产，quote 是买入的资产，
// baseQuantity 为链上最小单位的付出数量。
type Quoter interface {
	Quote(ctx context.Context, base, quote asset.Asset, baseQuantity *big.Int) (Quote, error)
}

// Submitter 抽象场所的下单入口，返回可驱动生命周期的预备交易。
type Submitter interface {
	TakeOrder(ctx context.Context, account common.Address, order OrderArgs) (PreparedOrder, error)
}

// Venue 为单个交易场所的完整能力：询价加下单。
type Venue interface {
	ID() string
	Quoter
	Submitter
}

// PreparedOrder 表示一笔待提交的场所订单，由执行器独占驱动。
type PreparedOrder interface {
	// Validate 做场所侧前置校验（余额、授权、交易对仍可交易）。
	Validate(ctx context.Context) error
	// Prepare 基于给定 gas 价格补全 gas 上限与 nonce。
	Prepare(ctx context.Context, opts TxOptions) (TxOptions, error)
	// Send 签名并广播交易。
	Send(ctx context.Context, opts TxOptions) (*types.Transaction, error)
}

// newQuote 由整数数量派生价格。priceInBase = sizeInQuote / sizeInBase，
// priceInQuote 为其倒数。
func newQuote(venueID string, base, quote asset.Asset, sizeInBase, sizeInQuote *big.Int, venueAddress common.Address) (Quote, error) {
	if sizeInBase == nil || sizeInBase.Sign() <= 0 {
		return Quote{}, fmt.Errorf("%w: 付出数量必须大于0", ErrInvalidPair)
	}
	if sizeInQuote == nil || sizeInQuote.Sign() <= 0 {
		return Quote{}, fmt.Errorf("%w: %s 对 %s/%s 无可用流动性", ErrVenueUnavailable, venueID, base.Symbol, quote.Symbol)
	}

	priceInBase := decimal.NewFromBigInt(sizeInQuote, 0).Div(decimal.NewFromBigInt(sizeInBase, 0))
	priceInQuote := decimal.New(1, 0).Div(priceInBase)

	return Quote{
		VenueID:      venueID,
		BaseAsset:    base,
		QuoteAsset:   quote,
		PriceInBase:  priceInBase,
		PriceInQuote: priceInQuote,
		SizeInBase:   new(big.Int).Set(sizeInBase),
		SizeInQuote:  new(big.Int).Set(sizeInQuote),
		VenueAddress: venueAddress,
	}, nil
}
