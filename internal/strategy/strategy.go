package strategy

import (
	"fmt"

	"github.com/Insula-Crypto/bot/internal/venue"
)

// Policy 是"是否交易"的判定钩子，对选定报价做一次布尔裁决。
// 它只是一个可注入的谓词，不承载任何研究逻辑。
type Policy func(quote venue.Quote) bool

// AlwaysTrade 为默认策略：见价即交易。
func AlwaysTrade(venue.Quote) bool {
	return true
}

// NeverTrade 跳过全部交易，用于演练配置与报价链路。
func NeverTrade(venue.Quote) bool {
	return false
}

// FromName 按配置名解析策略。
func FromName(name string) (Policy, error) {
	switch name {
	case "always", "":
		return AlwaysTrade, nil
	case "never":
		return NeverTrade, nil
	default:
		return nil, fmt.Errorf("未知策略: %s", name)
	}
}
