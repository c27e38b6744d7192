package asset

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/Insula-Crypto/bot/internal/config"
)

// ErrUnknownAsset 表示注册表中不存在请求的资产符号。
var ErrUnknownAsset = errors.New("unknown asset symbol")

// Asset 描述一个链上资产，构造后不可变。
type Asset struct {
	Address  common.Address
	Symbol   string
	Decimals int32
}

// Scale 将人类可读数量换算为链上最小单位，向下取整。
func (a Asset) Scale(quantity decimal.Decimal) *big.Int {
	return quantity.Shift(a.Decimals).Floor().BigInt()
}

// Registry 为符号到资产的静态查找表。
type Registry struct {
	bySymbol  map[string]Asset
	numeraire string
}

// NewRegistry 根据配置构建资产注册表。
func NewRegistry(cfg config.AssetsConfig) (*Registry, error) {
	if len(cfg.Tokens) == 0 {
		return nil, errors.New("资产注册表不能为空")
	}

	bySymbol := make(map[string]Asset, len(cfg.Tokens))
	for _, token := range cfg.Tokens {
		symbol := strings.ToUpper(strings.TrimSpace(token.Symbol))
		if symbol == "" {
			return nil, errors.New("资产符号不能为空")
		}
		if _, exists := bySymbol[symbol]; exists {
			return nil, fmt.Errorf("资产符号重复: %s", symbol)
		}
		if !common.IsHexAddress(token.Address) {
			return nil, fmt.Errorf("资产 %s 地址非法: %s", symbol, token.Address)
		}
		bySymbol[symbol] = Asset{
			Address:  common.HexToAddress(token.Address),
			Symbol:   symbol,
			Decimals: token.Decimals,
		}
	}

	numeraire := strings.ToUpper(strings.TrimSpace(cfg.Numeraire))
	if _, ok := bySymbol[numeraire]; !ok {
		return nil, fmt.Errorf("计价资产 %s 未在注册表中定义", numeraire)
	}

	return &Registry{
		bySymbol:  bySymbol,
		numeraire: numeraire,
	}, nil
}

// Lookup 按符号查找资产。
func (r *Registry) Lookup(symbol string) (Asset, error) {
	asset, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	return asset, nil
}

// IsNumeraire 判断资产是否为参考计价资产（通常为 WETH）。
func (r *Registry) IsNumeraire(a Asset) bool {
	return a.Symbol == r.numeraire
}

// Numeraire 返回参考计价资产。
func (r *Registry) Numeraire() Asset {
	return r.bySymbol[r.numeraire]
}
