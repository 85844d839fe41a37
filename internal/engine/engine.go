// Package engine 驱动批次执行：重复次数展开、并发调度与结果重组。
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"trade-gateway/internal/config"
	"trade-gateway/internal/order"
	"trade-gateway/internal/symbol"
)

type intentRouter interface {
	Route(ctx context.Context, intent order.TradeIntent) order.ExecutionResult
}

// Journal 记录每次下单尝试，供结果未知时对账。
type Journal interface {
	RecordAttempt(ctx context.Context, res order.ExecutionResult) error
}

// Engine 接收一批交易意图并逐一执行。
// 单个意图或单次尝试的失败不会中断批次内的其余部分。
type Engine struct {
	router        intentRouter
	journal       Journal
	logger        *zap.Logger
	maxConcurrent int
	perVenueLimit int64

	semsMu sync.Mutex
	sems   map[order.Venue]*semaphore.Weighted
}

// New 创建执行引擎，journal 可以为 nil。
func New(router intentRouter, cfg config.EngineConfig, journal Journal, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	perVenueLimit := cfg.MaxInFlightPerVenue
	if perVenueLimit <= 0 {
		perVenueLimit = 4
	}

	return &Engine{
		router:        router,
		journal:       journal,
		logger:        logger,
		maxConcurrent: maxConcurrent,
		perVenueLimit: perVenueLimit,
		sems:          make(map[order.Venue]*semaphore.Weighted),
	}
}

// Execute 展开每个意图的重复次数并发执行，
// 结果按提交顺序（意图序 × 重复序）重组，与完成顺序无关。
//
// ctx 的截止时间作用于整个批次：已发出的请求允许完成，
// 尚未调度的尝试以超时的传输失败入账，绝不静默丢弃。
func (e *Engine) Execute(ctx context.Context, intents []order.TradeIntent) order.BatchResult {
	normalized := make([]order.TradeIntent, len(intents))
	offsets := make([]int, len(intents))
	total := 0
	for i, intent := range intents {
		intent.Normalize()
		normalized[i] = intent
		offsets[i] = total
		total += intent.RepeatCount
	}

	results := make([]order.ExecutionResult, total)

	// 已调度的请求脱离批次取消信号：交易所侧可能已经受理，
	// 强行中断只会让结果变成未知。请求自身的超时由适配器控制。
	sendCtx := context.WithoutCancel(ctx)

	var group errgroup.Group
	group.SetLimit(e.maxConcurrent)

	for i, intent := range normalized {
		for j := 0; j < intent.RepeatCount; j++ {
			idx := offsets[i] + j
			intentIndex, attempt := i, j+1

			group.Go(func() error {
				res := e.runAttempt(ctx, sendCtx, intent)
				res.IntentIndex = intentIndex
				res.Attempt = attempt
				results[idx] = res
				e.record(sendCtx, res)
				return nil
			})
		}
	}

	_ = group.Wait()

	batch := order.BatchResult{Results: results}
	e.logger.Info("批次执行完成",
		zap.Int("intents", len(intents)),
		zap.Int("attempts", total),
		zap.Int("accepted", batch.Accepted()),
		zap.Int("rejected", batch.Rejected()),
		zap.Int("transport_errors", batch.TransportErrors()),
	)
	return batch
}

func (e *Engine) runAttempt(ctx, sendCtx context.Context, intent order.TradeIntent) order.ExecutionResult {
	// 批次截止后不再调度新的尝试。
	if err := ctx.Err(); err != nil {
		return e.timeoutResult(intent, err)
	}

	if sem := e.venueSemaphore(intent); sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			// 排队等待中的尝试尚未发出，结果是确定的。
			return e.timeoutResult(intent, err)
		}
		defer sem.Release(1)
	}

	return e.router.Route(sendCtx, intent)
}

func (e *Engine) timeoutResult(intent order.TradeIntent, cause error) order.ExecutionResult {
	return order.ExecutionResult{
		Venue:  intent.Venue,
		Symbol: intent.Symbol,
		Side:   intent.Side,
		Status: order.StatusTransportError,
		Err:    fmt.Errorf("%w: %v", order.ErrTimeout, cause),
	}
}

// venueSemaphore 返回目标交易所的在途请求信号量。
// 交易所无法确定时返回 nil，由路由器以 Rejected 拒绝。
func (e *Engine) venueSemaphore(intent order.TradeIntent) *semaphore.Weighted {
	target := intent.Venue
	if target == "" {
		inferred, err := symbol.VenueFromSymbol(intent.Symbol)
		if err != nil {
			return nil
		}
		target = inferred
	}

	e.semsMu.Lock()
	defer e.semsMu.Unlock()

	sem, ok := e.sems[target]
	if !ok {
		sem = semaphore.NewWeighted(e.perVenueLimit)
		e.sems[target] = sem
	}
	return sem
}

func (e *Engine) record(ctx context.Context, res order.ExecutionResult) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordAttempt(ctx, res); err != nil {
		e.logger.Warn("记录下单尝试失败",
			zap.String("venue", string(res.Venue)),
			zap.String("client_order_id", res.ClientOrderID),
			zap.Error(err),
		)
	}
}
