package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"trade-gateway/internal/app"
	"trade-gateway/internal/config"
	"trade-gateway/internal/engine"
	"trade-gateway/internal/journal"
	"trade-gateway/internal/log"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	flag.Parse()

	// 本地开发时从 .env 注入交易所凭证，文件不存在则忽略。
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	var attemptJournal engine.Journal
	if cfg.Journal.Enabled {
		sqliteJournal, err := journal.Open(cfg.Journal)
		if err != nil {
			logger.Error("初始化下单流水失败", zap.Error(err))
			os.Exit(1)
		}
		defer func() {
			if closeErr := sqliteJournal.Close(); closeErr != nil {
				logger.Warn("关闭下单流水失败", zap.Error(closeErr))
			}
		}()
		attemptJournal = sqliteJournal
	}

	gateway := app.New(cfg, logger, attemptJournal)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gateway.Run(ctx); err != nil {
		logger.Error("网关运行异常", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("批次已处理完毕，网关退出")
}
