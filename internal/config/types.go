package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Fund      FundConfig      `mapstructure:"fund"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Assets    AssetsConfig    `mapstructure:"assets"`
	Venues    VenuesConfig    `mapstructure:"venues"`
	GasOracle GasOracleConfig `mapstructure:"gas_oracle"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Trades    []TradeConfig   `mapstructure:"trades"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// ChainConfig 描述以太坊节点连接信息。
type ChainConfig struct {
	RPCURL       string        `mapstructure:"rpc_url"`
	ChainID      int64         `mapstructure:"chain_id"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// FundConfig 描述目标基金的入口地址。
type FundConfig struct {
	HubAddress string `mapstructure:"hub_address"`
}

// WalletConfig 管理签名账户。
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
}

// AssetsConfig 描述静态资产注册表。
type AssetsConfig struct {
	Numeraire string        `mapstructure:"numeraire"`
	Tokens    []TokenConfig `mapstructure:"tokens"`
}

// TokenConfig 为单个资产的链上定义。
type TokenConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Address  string `mapstructure:"address"`
	Decimals int32  `mapstructure:"decimals"`
}

// VenuesConfig 汇总各交易场所的开关与地址。
type VenuesConfig struct {
	Uniswap UniswapConfig `mapstructure:"uniswap"`
	Kyber   KyberConfig   `mapstructure:"kyber"`
}

// UniswapConfig 描述 AMM 场所的链上入口。
type UniswapConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	FactoryAddress string `mapstructure:"factory_address"`
	AdapterAddress string `mapstructure:"adapter_address"`
}

// KyberConfig 描述聚合器场所的链上入口。
type KyberConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ProxyAddress   string `mapstructure:"proxy_address"`
	AdapterAddress string `mapstructure:"adapter_address"`
}

// GasOracleConfig 控制 gas 价格查询。
type GasOracleConfig struct {
	URL        string        `mapstructure:"url"`
	Percentile string        `mapstructure:"percentile"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ExecutionConfig 控制下单行为。
type ExecutionConfig struct {
	Slippage       string        `mapstructure:"slippage"`
	Strategy       string        `mapstructure:"strategy"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
}

// TradeConfig 描述批处理中的单笔交易请求。
type TradeConfig struct {
	Buy      string `mapstructure:"buy"`
	Sell     string `mapstructure:"sell"`
	Quantity string `mapstructure:"quantity"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Chain.RPCURL == "" {
		err = multierr.Append(err, errors.New("chain.rpc_url 不能为空"))
	}
	if c.Chain.ChainID <= 0 {
		err = multierr.Append(err, errors.New("chain.chain_id 必须大于0"))
	}
	if c.Chain.PollInterval <= 0 {
		err = multierr.Append(err, errors.New("chain.poll_interval 必须大于0"))
	}
	if !common.IsHexAddress(c.Fund.HubAddress) {
		err = multierr.Append(err, errors.New("fund.hub_address 不是合法地址"))
	}
	if c.Wallet.PrivateKey == "" {
		err = multierr.Append(err, errors.New("wallet.private_key 不能为空"))
	}
	if c.Assets.Numeraire == "" {
		err = multierr.Append(err, errors.New("assets.numeraire 不能为空"))
	}
	if len(c.Assets.Tokens) == 0 {
		err = multierr.Append(err, errors.New("assets.tokens 至少包含一个资产"))
	}
	for _, token := range c.Assets.Tokens {
		if token.Symbol == "" {
			err = multierr.Append(err, errors.New("assets.tokens[].symbol 不能为空"))
			continue
		}
		if !common.IsHexAddress(token.Address) {
			err = multierr.Append(err, fmt.Errorf("assets.tokens[%s].address 不是合法地址", token.Symbol))
		}
		if token.Decimals < 0 || token.Decimals > 36 {
			err = multierr.Append(err, fmt.Errorf("assets.tokens[%s].decimals 必须位于[0,36]", token.Symbol))
		}
	}
	if !c.Venues.Uniswap.Enabled && !c.Venues.Kyber.Enabled {
		err = multierr.Append(err, errors.New("venues 至少启用一个交易场所"))
	}
	if c.Venues.Uniswap.Enabled {
		if !common.IsHexAddress(c.Venues.Uniswap.FactoryAddress) {
			err = multierr.Append(err, errors.New("venues.uniswap.factory_address 不是合法地址"))
		}
		if !common.IsHexAddress(c.Venues.Uniswap.AdapterAddress) {
			err = multierr.Append(err, errors.New("venues.uniswap.adapter_address 不是合法地址"))
		}
	}
	if c.Venues.Kyber.Enabled {
		if !common.IsHexAddress(c.Venues.Kyber.ProxyAddress) {
			err = multierr.Append(err, errors.New("venues.kyber.proxy_address 不是合法地址"))
		}
		if !common.IsHexAddress(c.Venues.Kyber.AdapterAddress) {
			err = multierr.Append(err, errors.New("venues.kyber.adapter_address 不是合法地址"))
		}
	}
	if c.GasOracle.URL == "" {
		err = multierr.Append(err, errors.New("gas_oracle.url 不能为空"))
	}
	if percentile, perr := decimal.NewFromString(c.GasOracle.Percentile); perr != nil {
		err = multierr.Append(err, fmt.Errorf("gas_oracle.percentile 解析失败: %w", perr))
	} else if percentile.IsNegative() || percentile.GreaterThan(decimal.New(1, 0)) {
		err = multierr.Append(err, errors.New("gas_oracle.percentile 必须位于[0,1]"))
	}
	if c.GasOracle.Timeout <= 0 {
		err = multierr.Append(err, errors.New("gas_oracle.timeout 必须大于0"))
	}
	if slippage, serr := decimal.NewFromString(c.Execution.Slippage); serr != nil {
		err = multierr.Append(err, fmt.Errorf("execution.slippage 解析失败: %w", serr))
	} else if slippage.IsNegative() || slippage.GreaterThan(decimal.New(1, 0)) {
		err = multierr.Append(err, errors.New("execution.slippage 必须位于[0,1]"))
	}
	if c.Execution.Strategy != "always" && c.Execution.Strategy != "never" {
		err = multierr.Append(err, errors.New("execution.strategy 仅支持 always 或 never"))
	}
	if c.Execution.ConfirmTimeout < 0 {
		err = multierr.Append(err, errors.New("execution.confirm_timeout 不能为负"))
	}
	if len(c.Trades) == 0 {
		err = multierr.Append(err, errors.New("trades 至少包含一笔交易"))
	}
	for i, trade := range c.Trades {
		if trade.Buy == "" || trade.Sell == "" {
			err = multierr.Append(err, fmt.Errorf("trades[%d] 必须同时指定 buy 与 sell", i))
		}
		if trade.Buy != "" && trade.Buy == trade.Sell {
			err = multierr.Append(err, fmt.Errorf("trades[%d] buy 与 sell 不能相同", i))
		}
		if quantity, qerr := decimal.NewFromString(trade.Quantity); qerr != nil {
			err = multierr.Append(err, fmt.Errorf("trades[%d].quantity 解析失败: %w", i, qerr))
		} else if !quantity.IsPositive() {
			err = multierr.Append(err, fmt.Errorf("trades[%d].quantity 必须大于0", i))
		}
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
