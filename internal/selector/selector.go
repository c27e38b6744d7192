package selector

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Insula-Crypto/bot/internal/asset"
	"github.com/Insula-Crypto/bot/internal/venue"
)

// ErrNoViableQuote 表示全部场所询价失败。
var ErrNoViableQuote = errors.New("no viable quote from any venue")

// Selector 并发向全部场所询价，取收到数量最大的一家。
type Selector struct {
	venues []venue.Venue
	logger *zap.Logger
}

// New 创建最优执行选择器。场所顺序即注册优先级，打平时先注册者胜出。
func New(venues []venue.Venue, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Selector{
		venues: venues,
		logger: logger,
	}
}

// SelectBest 以同一组 (buy, sell, quantity) 并发询价。单个场所失败只记录
// 不中断其余询价；全部失败时返回 ErrNoViableQuote 并携带各场所原因。
// 胜出标准是 SizeInQuote 最大：同样付出下收到的买入资产最多。
func (s *Selector) SelectBest(ctx context.Context, buy, sell asset.Asset, quantity *big.Int) (venue.Quote, venue.Venue, error) {
	if len(s.venues) == 0 {
		return venue.Quote{}, nil, fmt.Errorf("%w: 未配置任何场所", ErrNoViableQuote)
	}

	quotes := make([]venue.Quote, len(s.venues))
	failures := make([]error, len(s.venues))

	var wg sync.WaitGroup
	for i, v := range s.venues {
		wg.Add(1)
		go func(i int, v venue.Venue) {
			defer wg.Done()
			quote, err := v.Quote(ctx, sell, buy, quantity)
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", v.ID(), err)
				return
			}
			quotes[i] = quote
		}(i, v)
	}
	wg.Wait()

	bestIndex := -1
	for i := range s.venues {
		if failures[i] != nil {
			s.logger.Warn("场所询价失败",
				zap.String("venue", s.venues[i].ID()),
				zap.Error(failures[i]),
			)
			continue
		}
		// 严格大于才替换，保证打平时保留先注册的场所。
		if bestIndex < 0 || quotes[i].SizeInQuote.Cmp(quotes[bestIndex].SizeInQuote) > 0 {
			bestIndex = i
		}
	}

	if bestIndex < 0 {
		var causes error
		for _, failure := range failures {
			causes = multierr.Append(causes, failure)
		}
		return venue.Quote{}, nil, fmt.Errorf("%w: %v", ErrNoViableQuote, causes)
	}

	best := quotes[bestIndex]
	s.logger.Info("已选定最优场所",
		zap.String("venue", best.VenueID),
		zap.String("size_in_quote", best.SizeInQuote.String()),
		zap.String("price_in_base", best.PriceInBase.String()),
	)

	return best, s.venues[bestIndex], nil
}
