// Package app はプロセス全体の組み立てを担う
//
// 設定の読み込み、ロガーの作成、アセットバックエンドの選択、
// ルーターとサーバーの作成を順に行い、終了コードを返す。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"ploscaru/internal/assets"
	"ploscaru/internal/config"
	"ploscaru/internal/logging"
	"ploscaru/internal/server"
	"ploscaru/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

// 終了コード
const (
	ExitOK    = 0 // 正常終了
	ExitError = 1 // 起動・実行・停止の失敗
	ExitUsage = 2 // 引数や設定の誤り
)

// Run は args を解釈してサーバーを起動し、終了コードを返す
func Run(ctx context.Context, args []string, stderr io.Writer) int {
	// 設定を読み込む
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stderr)
			return ExitOK
		}
		fmt.Fprintf(stderr, "ploscaru: %v\n", err)
		if errors.Is(err, config.ErrInvalidConfig) {
			printUsage(stderr)
			return ExitUsage
		}
		return ExitError
	}

	logger := logging.New(cfg.Log, stderr)
	slog.SetDefault(logger)

	if logging.ParseLevel(cfg.Log.Level) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	backend := NewBackend(cfg, logger)
	router := server.NewRouter(backend, stats.NewRuntimeCollector(), logger)
	srv := server.New(cfg, router, logger)

	logger.Info("starting webapp",
		"address", cfg.ServerAddress(),
		"asset_mode", cfg.Assets.Mode,
		"static_dir", cfg.Assets.StaticDir,
		"shutdown_timeout_seconds", cfg.Server.ShutdownTimeoutSeconds,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server exited with error", "error", err, "state", srv.State())
		return ExitError
	}

	return ExitOK
}

// NewBackend は設定に従ってアセットバックエンドを選択する
// 選択は起動時の一度だけ
func NewBackend(cfg *config.Config, logger *slog.Logger) assets.Backend {
	if cfg.Assets.Mode == config.AssetModeDisk {
		return assets.NewDisk(cfg.Assets.StaticDir, logger)
	}
	return assets.NewEmbedded(nil)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `plosca.ru static site server

Usage:
  ploscaru [serve] [flags]

Flags:
%s`, config.Usage())
}
