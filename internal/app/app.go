package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trade-gateway/internal/config"
	"trade-gateway/internal/engine"
	"trade-gateway/internal/order"
	"trade-gateway/internal/router"
	"trade-gateway/internal/venue"
)

// App 聚合核心依赖并驱动一次批次执行。
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	journal engine.Journal
}

// New 创建 App 实例，journal 可以为 nil。
func New(cfg *config.Config, logger *zap.Logger, journal engine.Journal) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		journal: journal,
	}
}

// Run 装配适配器与路由，执行配置中声明的交易批次。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("订单网关已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.Bool("okx", a.cfg.Venues.OKX.Enabled),
		zap.Bool("bitget", a.cfg.Venues.Bitget.Enabled),
		zap.Bool("bitflex", a.cfg.Venues.Bitflex.Enabled),
	)

	adapters, err := buildAdapters(a.cfg.Venues, a.logger)
	if err != nil {
		return err
	}

	intents, err := buildIntents(a.cfg.Trades)
	if err != nil {
		return err
	}
	if len(intents) == 0 {
		a.logger.Info("配置中没有待执行的交易，退出")
		return nil
	}

	exec := engine.New(router.New(a.logger, adapters...), a.cfg.Engine, a.journal, a.logger)

	if a.cfg.Engine.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Engine.BatchTimeout)
		defer cancel()
	}

	batch := exec.Execute(ctx, intents)

	for _, res := range batch.Results {
		if res.Status == order.StatusAccepted {
			continue
		}
		a.logger.Warn("尝试未被接受",
			zap.Int("intent", res.IntentIndex),
			zap.Int("attempt", res.Attempt),
			zap.String("venue", string(res.Venue)),
			zap.String("symbol", res.Symbol),
			zap.String("status", string(res.Status)),
			zap.Bool("outcome_unknown", res.OutcomeUnknown),
			zap.Error(res.Err),
		)
	}

	return nil
}

// buildAdapters 只为启用的交易所构造适配器；
// 指向未启用交易所的意图由路由器以 Rejected 拒绝。
func buildAdapters(cfg config.VenuesConfig, logger *zap.Logger) ([]venue.Adapter, error) {
	var adapters []venue.Adapter

	if cfg.OKX.Enabled {
		adapter, err := venue.NewOKX(cfg.OKX, logger)
		if err != nil {
			return nil, fmt.Errorf("app: 初始化 okx 适配器失败: %w", err)
		}
		adapters = append(adapters, adapter)
	}
	if cfg.Bitget.Enabled {
		adapter, err := venue.NewBitget(cfg.Bitget, logger)
		if err != nil {
			return nil, fmt.Errorf("app: 初始化 bitget 适配器失败: %w", err)
		}
		adapters = append(adapters, adapter)
	}
	if cfg.Bitflex.Enabled {
		adapter, err := venue.NewREST(cfg.Bitflex, logger)
		if err != nil {
			return nil, fmt.Errorf("app: 初始化 bitflex 适配器失败: %w", err)
		}
		adapters = append(adapters, adapter)
	}

	return adapters, nil
}

func buildIntents(trades []config.TradeConfig) ([]order.TradeIntent, error) {
	intents := make([]order.TradeIntent, 0, len(trades))
	for i, trade := range trades {
		quantity, err := decimal.NewFromString(trade.Quantity)
		if err != nil {
			return nil, fmt.Errorf("app: trades[%d].quantity 无效: %w", i, err)
		}

		price := decimal.Zero
		if trade.Price != "" {
			price, err = decimal.NewFromString(trade.Price)
			if err != nil {
				return nil, fmt.Errorf("app: trades[%d].price 无效: %w", i, err)
			}
		}

		intent := order.TradeIntent{
			Venue:       order.Venue(trade.Venue),
			Symbol:      trade.Symbol,
			Side:        order.Side(trade.Side),
			Type:        order.Type(trade.Type),
			Quantity:    quantity,
			Price:       price,
			RepeatCount: trade.Repeat,
		}
		intent.Normalize()
		intents = append(intents, intent)
	}
	return intents, nil
}
