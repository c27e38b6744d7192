package app

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Insula-Crypto/bot/internal/asset"
	"github.com/Insula-Crypto/bot/internal/batch"
	"github.com/Insula-Crypto/bot/internal/chain"
	"github.com/Insula-Crypto/bot/internal/config"
	"github.com/Insula-Crypto/bot/internal/executor"
	"github.com/Insula-Crypto/bot/internal/fund"
	"github.com/Insula-Crypto/bot/internal/gas"
	"github.com/Insula-Crypto/bot/internal/selector"
	"github.com/Insula-Crypto/bot/internal/strategy"
	"github.com/Insula-Crypto/bot/internal/venue"
)

// App 聚合核心依赖并驱动一次批处理运行。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run 完成全部装配后执行配置中的交易清单，批处理结束即返回。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("交易系统已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("hub", a.cfg.Fund.HubAddress),
		zap.Int("trades", len(a.cfg.Trades)),
	)

	client, err := chain.Dial(ctx, a.cfg.Chain, a.logger)
	if err != nil {
		return err
	}
	defer client.Close()

	signer, err := chain.NewPrivateKeySigner(a.cfg.Wallet.PrivateKey, big.NewInt(a.cfg.Chain.ChainID))
	if err != nil {
		return err
	}

	registry, err := asset.NewRegistry(a.cfg.Assets)
	if err != nil {
		return fmt.Errorf("构建资产注册表失败: %w", err)
	}

	fundInfo, err := fund.Resolve(ctx, client, common.HexToAddress(a.cfg.Fund.HubAddress))
	if err != nil {
		return fmt.Errorf("解析基金失败: %w", err)
	}
	if err := fundInfo.Authorize(signer.Address()); err != nil {
		return err
	}

	a.logger.Info("基金已解析",
		zap.String("trading", fundInfo.Trading.Hex()),
		zap.String("accounting", fundInfo.Accounting.Hex()),
		zap.String("manager", fundInfo.Manager.Hex()),
	)

	venues := a.buildVenues(client, signer, registry, fundInfo.Trading)
	sel := selector.New(venues, a.logger)

	oracle := gas.NewOracle(a.cfg.GasOracle, a.logger)
	percentile, err := decimal.NewFromString(a.cfg.GasOracle.Percentile)
	if err != nil {
		return fmt.Errorf("解析 gas 分位数失败: %w", err)
	}

	exec := executor.NewExecutor(oracle, client, percentile, a.cfg.Execution.ConfirmTimeout, a.logger)

	policy, err := strategy.FromName(a.cfg.Execution.Strategy)
	if err != nil {
		return err
	}

	slippage, err := decimal.NewFromString(a.cfg.Execution.Slippage)
	if err != nil {
		return fmt.Errorf("解析滑点容忍度失败: %w", err)
	}

	requests, err := buildRequests(registry, a.cfg.Trades)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(sel, exec, policy, slippage, signer.Address(), a.logger)
	result := runner.Run(ctx, requests)

	a.logger.Info("批处理结束",
		zap.Int("total", result.Total),
		zap.Int("errors", result.ErrorCount),
		zap.Bool("clean", result.Clean()),
	)

	return nil
}

func (a *App) buildVenues(client chain.Client, signer chain.Signer, registry *asset.Registry, trading common.Address) []venue.Venue {
	venues := make([]venue.Venue, 0, 2)
	if a.cfg.Venues.Uniswap.Enabled {
		venues = append(venues, venue.NewUniswap(client, signer, registry, a.cfg.Venues.Uniswap, trading, a.logger))
	}
	if a.cfg.Venues.Kyber.Enabled {
		venues = append(venues, venue.NewKyber(client, signer, a.cfg.Venues.Kyber, trading, a.logger))
	}
	return venues
}

// buildRequests 将配置中的人类可读数量换算为卖出资产最小单位。
func buildRequests(registry *asset.Registry, trades []config.TradeConfig) ([]batch.TradeRequest, error) {
	requests := make([]batch.TradeRequest, 0, len(trades))
	for i, trade := range trades {
		buy, err := registry.Lookup(trade.Buy)
		if err != nil {
			return nil, fmt.Errorf("trades[%d].buy: %w", i, err)
		}
		sell, err := registry.Lookup(trade.Sell)
		if err != nil {
			return nil, fmt.Errorf("trades[%d].sell: %w", i, err)
		}
		quantity, err := decimal.NewFromString(trade.Quantity)
		if err != nil {
			return nil, fmt.Errorf("trades[%d].quantity 解析失败: %w", i, err)
		}
		requests = append(requests, batch.TradeRequest{
			Buy:      buy,
			Sell:     sell,
			Quantity: sell.Scale(quantity),
		})
	}
	return requests, nil
}
