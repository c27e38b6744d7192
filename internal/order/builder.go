package order

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/Insula-Crypto/bot/internal/venue"
)

// Build 将选定的报价转换为场所下单参数。maker 数量按滑点折减后向下取整，
// 即容忍询价与成交之间不利价格波动的最低收到数量；taker 数量固定不调整。
// 零滑点合法，表示只接受精确报价数额。
func Build(quote venue.Quote, slippage decimal.Decimal) (venue.OrderArgs, error) {
	if slippage.IsNegative() || slippage.GreaterThan(decimal.New(1, 0)) {
		return venue.OrderArgs{}, fmt.Errorf("滑点容忍度必须位于[0,1]: %s", slippage)
	}
	if quote.SizeInBase == nil || quote.SizeInQuote == nil {
		return venue.OrderArgs{}, fmt.Errorf("报价缺少数量信息")
	}

	factor := decimal.New(1, 0).Sub(slippage)
	makerQuantity := decimal.NewFromBigInt(quote.SizeInQuote, 0).Mul(factor).Floor().BigInt()

	return venue.OrderArgs{
		MakerAsset:    quote.QuoteAsset.Address,
		TakerAsset:    quote.BaseAsset.Address,
		MakerQuantity: makerQuantity,
		TakerQuantity: new(big.Int).Set(quote.SizeInBase),
	}, nil
}
